package config

import (
	"strings"
	"time"
)

// APIConfig configures the remote identity/portal service endpoint.
type APIConfig struct {
	// BaseURL is the service root all paths are resolved against.
	BaseURL string `env:"API_URL" envDefault:"http://localhost:8080"`

	// Timeout bounds each outbound request.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
}

const minAPITimeout = time.Second

// Sanitize applies guardrails to endpoint configuration.
func (c *APIConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Timeout < minAPITimeout {
		c.Timeout = minAPITimeout
	}
}
