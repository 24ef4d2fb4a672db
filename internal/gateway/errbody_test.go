package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractReason(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			"status line prefix with quotes",
			`401 UNAUTHORIZED "Bad credentials"`,
			"Bad credentials",
		},
		{
			"json message field",
			`{"message":"Invalid credentials!"}`,
			"Invalid credentials!",
		},
		{
			"json message with embedded status line",
			`{"timestamp":"2026-08-28T10:00:00Z","status":401,"message":"401 UNAUTHORIZED \"Invalid credentials!\""}`,
			"Invalid credentials!",
		},
		{
			"json error field fallback",
			`{"error":"Unauthorized"}`,
			"Unauthorized",
		},
		{
			"json detail field fallback",
			`{"detail":"account pending approval"}`,
			"account pending approval",
		},
		{
			"plain text passthrough",
			"service temporarily unavailable",
			"service temporarily unavailable",
		},
		{"empty body", "", ""},
		{"whitespace body", "  \n ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractReason(tc.raw))
		})
	}
}

func TestCleanMessage_PrefixRequiresUpperStatusWord(t *testing.T) {
	// A message that merely starts with digits is not a status line.
	assert.Equal(t, "2 users rejected", cleanMessage("2 users rejected"))
	assert.Equal(t, "Forbidden", cleanMessage(`403 FORBIDDEN "Forbidden"`))
}
