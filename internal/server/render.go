package server

import (
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"yatube/internal/featureflags"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

const baseLayout = "layouts/base"

func newViewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(template.FuncMap{
		"media":        mediaURL,
		"webp":         func(rel string) string { return mediaURL(service.WebPPath(rel)) },
		"excerpt":      func(p models.Post, n int) string { return p.Excerpt(n) },
		"date":         func(t time.Time) string { return t.Format("2 January 2006") },
		"linebreaksbr": linebreaksbr,
	})
	return engine, nil
}

func mediaURL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/media/" + strings.TrimPrefix(rel, "/")
}

// linebreaksbr escapes s and turns newlines into <br>.
func linebreaksbr(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// wantsJSON reports whether the client asked for JSON instead of HTML.
func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// render writes the named page inside the base layout. JSON clients get the
// page data instead.
func (s *Server) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if wantsJSON(c) {
		return c.Status(status).JSON(data)
	}

	user := currentUser(c)
	data["CurrentUser"] = user
	data["Path"] = c.Path()
	data["ImagesEnabled"] = s.featureFlags.Enabled(featureflags.PostImages, currentUserID(c))
	data["Year"] = time.Now().Year()
	return c.Status(status).Render(name, data, baseLayout)
}

// NotFound is the fallback handler for unmatched routes.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return s.renderNotFound(c)
}

func (s *Server) renderNotFound(c *fiber.Ctx) error {
	if wantsJSON(c) {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("page", c.Path()))
	}
	return s.render(c, fiber.StatusNotFound, "core/404", fiber.Map{
		"Title": "Page not found",
	})
}

// errorHandler maps errors returned by handlers onto pages.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusNotFound {
			return s.renderNotFound(c)
		}
		if fiberErr.Code >= fiber.StatusInternalServerError && fiberErr.Code != fiber.StatusServiceUnavailable {
			middleware.Logger.ErrorContext(c.UserContext(), "request error", "error", err, "path", c.Path())
		}
		return c.Status(fiberErr.Code).SendString(fiberErr.Message)
	}

	switch models.ErrorCode(err) {
	case models.CodeNotFound:
		return s.renderNotFound(c)
	case models.CodeUnauthorized:
		return c.Redirect(loginRedirectURL(c.OriginalURL()))
	case models.CodeForbidden, models.CodeValidation:
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err, "path", c.Path())
	if wantsJSON(c) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	if renderErr := s.render(c, fiber.StatusInternalServerError, "core/500", fiber.Map{
		"Title": "Server error",
	}); renderErr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
	return nil
}
