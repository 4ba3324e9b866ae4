package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - http.go: HTTP server configuration
//   - services.go: Service mode, enrollment, janitor, and roster configuration
//   - observability.go: Metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (verbose logging and the like).
	// Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Services is a comma-delimited list of enabled services.
	// Valid values: http, janitor, roster-sync
	Services string `env:"SERVICES" envDefault:"http,janitor,roster-sync"`

	// Enrollment pipeline configuration
	Enrollment EnrollmentConfig

	// Janitor configuration
	Janitor JanitorConfig

	// Roster sync configuration
	Roster RosterConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Enrollment.Sanitize()
	c.Janitor.Sanitize()
	c.Roster.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks the APP_ENV environment variable as a fallback so that
// APP_ENV=development behaves like DEV=true.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsJanitorEnabled returns true if the janitor service is enabled.
func (c *AppConfig) IsJanitorEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeJanitor]
}

// IsRosterSyncEnabled returns true if the roster sync service is enabled.
func (c *AppConfig) IsRosterSyncEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeRosterSync]
}
