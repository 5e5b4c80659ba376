package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCookieToken(t *testing.T) {
	assert.Equal(t, "abc123", extractCookieToken("auth_token=abc123", "auth_token"))
	assert.Equal(t, "abc123", extractCookieToken("auth_token=abc123; other=1", "auth_token"))
	assert.Equal(t, "abc123", extractCookieToken("other=1; auth_token=abc123", "auth_token"))
	assert.Equal(t, "", extractCookieToken("other=1", "auth_token"))
	assert.Equal(t, "", extractCookieToken("", "auth_token"))
}
