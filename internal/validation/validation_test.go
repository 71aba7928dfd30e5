package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateText(t *testing.T) {
	got, err := ValidateText("  hello  ", 10)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = ValidateText("   \n\t", 10)
	assert.ErrorIs(t, err, ErrRequired)

	_, err = ValidateText(strings.Repeat("я", 11), 10)
	assert.Error(t, err)

	_, err = ValidateText(strings.Repeat("я", 10), 10)
	assert.NoError(t, err, "length counts characters, not bytes")
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"leo", "leo.tolstoy", "a@b", "x+y", "under_score", "dash-ed"}
	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}

	invalid := []string{"", "with space", "semi;colon", strings.Repeat("a", 151)}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), u)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		username string
		wantErr  bool
	}{
		{"valid", "correct-horse", "leo", false},
		{"too short", "short", "leo", true},
		{"too long", strings.Repeat("a", 73), "leo", true},
		{"numeric", "1234567890", "leo", true},
		{"same as username", "LeoTolstoy", "leotolstoy", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("cats"))
	assert.NoError(t, ValidateSlug("test-group_2"))
	assert.Error(t, ValidateSlug(""))
	assert.Error(t, ValidateSlug("Cats"))
	assert.Error(t, ValidateSlug("-cats"))
	assert.Error(t, ValidateSlug("cats--dogs"))
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/create/", SafeRedirect("/create/", "/"))
	assert.Equal(t, "/posts/1/?page=2", SafeRedirect("/posts/1/?page=2", "/"))
	assert.Equal(t, "/", SafeRedirect("", "/"))
	assert.Equal(t, "/", SafeRedirect("https://evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("//evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("/\\evil.example", "/"))
	assert.Equal(t, "/", SafeRedirect("/ok\r\nSet-Cookie: x", "/"))
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Display Name", "Leo <leo@example.com>", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
