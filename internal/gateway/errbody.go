package gateway

import (
	"encoding/json"
	"regexp"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// reasonExpr probes the fields the identity service is known to put its
// human-readable message under, in order of preference.
const reasonExpr = "message || error || detail"

// statusPrefixRE matches the defective status-line prefix some service
// errors carry, e.g. `401 UNAUTHORIZED "Bad credentials"`.
var statusPrefixRE = regexp.MustCompile(`^\d+\s+[A-Z_]+\s+`)

// extractReason turns a raw error payload into a display-ready reason.
// JSON bodies are probed for a message field; anything else is treated as
// the message itself. Returns "" when nothing usable is present.
func extractReason(raw string) string {
	msg := strings.TrimSpace(raw)
	if msg == "" {
		return ""
	}

	var payload any
	if err := json.Unmarshal([]byte(msg), &payload); err == nil {
		found, searchErr := jmespath.Search(reasonExpr, payload)
		if searchErr == nil {
			if s, ok := found.(string); ok && s != "" {
				msg = s
			}
		}
	}

	return cleanMessage(msg)
}

// cleanMessage strips the service's status-line prefix and any wrapping
// quote characters.
func cleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	msg = statusPrefixRE.ReplaceAllString(msg, "")
	msg = strings.TrimPrefix(msg, `"`)
	msg = strings.TrimSuffix(msg, `"`)
	return strings.TrimSpace(msg)
}
