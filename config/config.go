package config

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config files for
// details on available environment variables:
//   - api.go: portal service endpoint configuration
//   - storage.go: durable session storage configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging).
	IsDev bool `env:"DEV" envDefault:"false"`

	// API is the remote identity/portal service endpoint configuration.
	API APIConfig `envPrefix:"PORTAL_"`

	// Storage is the durable session mirror configuration.
	Storage StorageConfig `envPrefix:"SESSION_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Storage.Sanitize()
}
