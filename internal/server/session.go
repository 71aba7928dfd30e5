package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "session"
	tokenIssuer       = "yatube"
	tokenAudience     = "yatube-web"
	loginURL          = "/auth/login/"
)

// Locals keys set by Authenticate.
const (
	localUserID = "userID"
	localUser   = "user"
	localJTI    = "jti"
	localExpiry = "sessionExpiry"
)

func (s *Server) sessionTTL() time.Duration {
	if s.config.SessionTTLHours > 0 {
		return time.Duration(s.config.SessionTTLHours) * time.Hour
	}
	return 14 * 24 * time.Hour
}

// generateToken creates a signed session token for the user.
func (s *Server) generateToken(userID uint, username string) (string, time.Time, error) {
	if s.config.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	expires := now.Add(s.sessionTTL())
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      expires.Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	return signed, expires, err
}

type sessionClaims struct {
	userID  uint
	jti     string
	expires time.Time
}

// parseToken validates signature, issuer, audience and expiry.
func (s *Server) parseToken(tokenString string) (*sessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("invalid subject %q", sub)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("missing expiry")
	}
	jti, _ := claims["jti"].(string)

	return &sessionClaims{userID: uint(userID), jti: jti, expires: exp.Time}, nil
}

// sessionToken reads the session cookie, falling back to a Bearer header.
func sessionToken(c *fiber.Ctx) string {
	if v := c.Cookies(sessionCookieName); v != "" {
		return v
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	if scheme, token, ok := strings.Cut(authHeader, " "); ok && scheme == "Bearer" {
		return strings.TrimSpace(token)
	}
	return ""
}

// Authenticate resolves the session into an explicit identity. Requests
// without a valid, unrevoked session continue anonymously.
func (s *Server) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := sessionToken(c)
		if tokenString == "" {
			return c.Next()
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			s.clearSessionCookie(c)
			return c.Next()
		}
		if s.store.IsRevoked(c.UserContext(), claims.jti) {
			s.clearSessionCookie(c)
			return c.Next()
		}

		user, err := s.userRepo.GetByID(c.UserContext(), claims.userID)
		if err != nil {
			if models.IsNotFound(err) {
				s.clearSessionCookie(c)
				return c.Next()
			}
			return err
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localUser, user)
		c.Locals(localJTI, claims.jti)
		c.Locals(localExpiry, claims.expires)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

// LoginRequired redirects anonymous visitors to the login page, carrying
// the requested path in ?next=.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) != 0 {
			return c.Next()
		}
		return c.Redirect(loginRedirectURL(c.OriginalURL()))
	}
}

func loginRedirectURL(next string) string {
	return loginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// currentUserID is the authenticated user id, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(localUserID).(uint); ok {
		return id
	}
	return 0
}

func currentUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(localUser).(*models.User); ok {
		return u
	}
	return nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
