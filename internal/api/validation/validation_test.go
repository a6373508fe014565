package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		valid bool
	}{
		{"valid_simple", "user@example.com", true},
		{"valid_subdomain", "user@mail.example.com", true},
		{"valid_plus", "user+tag@example.com", true},
		{"valid_dash", "user-name@example.com", true},
		{"valid_dot", "user.name@example.com", true},
		{"valid_numbers", "user123@example456.com", true},
		{"invalid_no_at", "userexample.com", false},
		{"invalid_no_domain", "user@", false},
		{"invalid_no_user", "@example.com", false},
		{"invalid_double_at", "user@@example.com", false},
		{"invalid_spaces", "user @example.com", false},
		{"invalid_no_tld", "user@example", false},
		{"too_long", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidEmail(tt.email)
			assert.Equal(t, tt.valid, result, "Email: %s", tt.email)
		})
	}
}

func TestIsValidUUID(t *testing.T) {
	tests := []struct {
		name  string
		uuid  string
		valid bool
	}{
		{"valid_uuid", "550e8400-e29b-41d4-a716-446655440000", true},
		{"valid_uppercase", "550E8400-E29B-41D4-A716-446655440000", true},
		{"invalid_short", "550e8400-e29b-41d4-a716", false},
		{"invalid_no_dashes", "550e8400e29b41d4a716446655440000", false},
		{"invalid_letters", "ggge8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUUID(tt.uuid))
		})
	}
}

func TestIsValidWebsite(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"https", "https://acme.example.com", true},
		{"http_with_path", "http://acme.example.com/about", true},
		{"no_scheme", "acme.example.com", false},
		{"ftp", "ftp://acme.example.com", false},
		{"no_host", "https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidWebsite(tt.url))
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+1 (604) 555-0199"))
	assert.True(t, IsValidPhone("604.555.0199"))
	assert.False(t, IsValidPhone("call me"))
	assert.False(t, IsValidPhone("123"))
}

func TestTooLong(t *testing.T) {
	assert.False(t, TooLong("héllo", 5))
	assert.True(t, TooLong("héllo!", 5))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeString("hello\x00 world"))
	assert.Equal(t, "line1\nline2\ttab", SanitizeString("line1\nline2\ttab\x07"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "tru", TruncateString("truncate", 3))
	assert.Equal(t, "ñañ", TruncateString("ñañaña", 3))
}
