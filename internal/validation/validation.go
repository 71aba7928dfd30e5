// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxPostTextLength bounds the body of a post, in characters.
	MaxPostTextLength = 50000
	// MaxCommentTextLength bounds the body of a comment, in characters.
	MaxCommentTextLength = 10000
	// MaxUsernameLength matches the users.username column.
	MaxUsernameLength = 150
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 8
	// MaxPasswordLength keeps bcrypt input within its 72 byte limit.
	MaxPasswordLength = 72
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRegex     = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	digitsRegex   = regexp.MustCompile(`^[0-9]+$`)
)

// ErrRequired is returned for blank required input.
var ErrRequired = errors.New("This field is required.")

// ValidateText trims s and checks it is non-empty and at most max characters.
func ValidateText(s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrRequired
	}
	if n := utf8.RuneCountInString(s); n > max {
		return "", fmt.Errorf("Ensure this value has at most %d characters (it has %d).", max, n)
	}
	return s, nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if username == "" {
		return ErrRequired
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("Ensure this value has at most %d characters.", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return nil
}

// ValidateEmail accepts a bare address of at most 254 characters.
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return errors.New("Enter a valid email address.")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return errors.New("Enter a valid email address.")
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" || !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return errors.New("Enter a valid email address.")
	}
	return nil
}

// ValidatePassword checks length and rejects passwords that are entirely
// numeric or equal to the username.
func ValidatePassword(password, username string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("This password is too short. It must contain at least %d characters.", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("This password is too long. It must contain at most %d bytes.", MaxPasswordLength)
	}
	if digitsRegex.MatchString(password) {
		return errors.New("This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		return errors.New("The password is too similar to the username.")
	}
	return nil
}

// ValidateSlug checks a group slug: lowercase letters and digits separated by single hyphens or underscores.
func ValidateSlug(slug string) error {
	if len(slug) == 0 || len(slug) > 100 {
		return errors.New("slug must be 1-100 characters")
	}
	if !slugRegex.MatchString(slug) {
		return errors.New("slug may contain only lowercase letters, numbers, hyphens and underscores")
	}
	return nil
}

// SafeRedirect returns next when it is a local absolute path, fallback otherwise.
func SafeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	if strings.ContainsAny(next, "\r\n") {
		return fallback
	}
	return next
}
