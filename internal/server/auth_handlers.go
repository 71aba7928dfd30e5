package server

import (
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"
	"yatube/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type signupFormView struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// SignupForm handles GET /auth/signup/
func (s *Server) SignupForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "users/signup", fiber.Map{
		"Title": "Sign up",
		"Form":  signupFormView{},
	})
}

// Signup handles POST /auth/signup/. A new account is logged in straight away.
func (s *Server) Signup(c *fiber.Ctx) error {
	form := signupFormView{
		Username:  c.FormValue("username"),
		Email:     c.FormValue("email"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
	}
	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Username:  form.Username,
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Password1: c.FormValue("password1"),
		Password2: c.FormValue("password2"),
	})
	if fields := formErrors(err); fields != nil {
		return s.render(c, fiber.StatusBadRequest, "users/signup", fiber.Map{
			"Title":  "Sign up",
			"Form":   form,
			"Errors": fields,
		})
	}
	if err != nil {
		return err
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect("/")
}

// LoginForm handles GET /auth/login/
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "users/login", fiber.Map{
		"Title":    "Log in",
		"Next":     c.Query("next"),
		"Username": "",
	})
}

// Login handles POST /auth/login/ and redirects to a local ?next= target.
func (s *Server) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := c.FormValue("next", c.Query("next"))

	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		if models.ErrorCode(err) != models.CodeUnauthorized {
			return err
		}
		return s.render(c, fiber.StatusBadRequest, "users/login", fiber.Map{
			"Title":    "Log in",
			"Next":     next,
			"Username": username,
			"Errors":   models.FormErrors{"__all__": service.ErrInvalidCredentials.Message},
		})
	}

	if err := s.startSession(c, user); err != nil {
		return err
	}
	return c.Redirect(validation.SafeRedirect(next, "/"))
}

// Logout handles GET and POST /auth/logout/. The session id is revoked for
// the rest of its lifetime so a copied cookie stops working too.
func (s *Server) Logout(c *fiber.Ctx) error {
	if jti, ok := c.Locals(localJTI).(string); ok && jti != "" {
		ttl := time.Until(s.sessionExpiry(c))
		if err := s.store.Revoke(c.UserContext(), jti, ttl); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session revocation failed", "error", err)
		}
	}
	s.clearSessionCookie(c)
	c.Locals(localUserID, nil)
	c.Locals(localUser, nil)
	return s.render(c, fiber.StatusOK, "users/logged_out", fiber.Map{
		"Title": "Logged out",
	})
}

func (s *Server) sessionExpiry(c *fiber.Ctx) time.Time {
	if exp, ok := c.Locals(localExpiry).(time.Time); ok {
		return exp
	}
	return time.Now().Add(s.sessionTTL())
}

func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	token, expires, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.setSessionCookie(c, token, expires)
	return nil
}
