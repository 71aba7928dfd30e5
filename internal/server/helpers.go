package server

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a route parameter as a positive uint. Anything else is
// a page that cannot exist.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError(param, c.Params(param))
	}
	return uint(id), nil
}

// parseGroupID reads the optional "group" select. An empty choice means no
// group; a malformed one is reported as an invalid choice.
func parseGroupID(c *fiber.Ctx) (*uint, error) {
	raw := strings.TrimSpace(c.FormValue("group"))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewFieldError("group", "Select a valid choice. That choice is not one of the available choices.")
	}
	v := uint(id)
	return &v, nil
}

// formImage reads the optional "image" upload; nil when no file was sent
// or the body is not multipart.
func formImage(c *fiber.Ctx) (*service.UploadImageInput, error) {
	fh, err := c.FormFile("image")
	if err != nil || (fh.Size == 0 && fh.Filename == "") {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("open upload: %w", err))
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("read upload: %w", err))
	}
	return &service.UploadImageInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}

// formErrors extracts field messages from a validation error, or nil.
func formErrors(err error) models.FormErrors {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == models.CodeValidation {
		if appErr.Fields != nil {
			return appErr.Fields
		}
		return models.FormErrors{"__all__": appErr.Message}
	}
	return nil
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
