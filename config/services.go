package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeJanitor runs the expired-job janitor.
	ServiceModeJanitor ServiceMode = "janitor"
	// ServiceModeRosterSync runs the scheduled course roster sync.
	ServiceModeRosterSync ServiceMode = "roster-sync"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeJanitor,
		ServiceModeRosterSync,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeJanitor, ServiceModeRosterSync:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, janitor, roster-sync)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// EnrollmentConfig contains enrollment pipeline configuration.
type EnrollmentConfig struct {
	// WorkerCommand is the executable invoked to perform one enrollment.
	// It receives <username> <unique_id> <device_port> as arguments.
	WorkerCommand string `env:"ENROLL_WORKER_CMD" envDefault:"serial_enroll"`

	// DevicePort is the serial port passed to the worker.
	DevicePort string `env:"ENROLL_DEVICE_PORT" envDefault:"/dev/ttyUSB0"`

	// ConnectDelay is the pause between the connecting and waiting phases,
	// giving the terminal time to settle before the worker opens the port.
	ConnectDelay time.Duration `env:"ENROLL_CONNECT_DELAY" envDefault:"500ms"`

	// WorkerTimeout bounds a single worker run. Zero means no limit; the
	// worker blocks until a card is presented or it exits on its own.
	WorkerTimeout time.Duration `env:"ENROLL_WORKER_TIMEOUT" envDefault:"0"`
}

// Sanitize applies guardrails to enrollment configuration values.
func (e *EnrollmentConfig) Sanitize() {
	e.WorkerCommand = strings.TrimSpace(e.WorkerCommand)
	e.DevicePort = strings.TrimSpace(e.DevicePort)
	if e.ConnectDelay < 0 {
		e.ConnectDelay = 0
	}
	if e.WorkerTimeout < 0 {
		e.WorkerTimeout = 0
	}
}

// JanitorConfig contains expired-job janitor configuration.
type JanitorConfig struct {
	// Interval is the janitor tick interval.
	Interval time.Duration `env:"JANITOR_INTERVAL" envDefault:"5m"`

	// MaxAge is the maximum age of a job record before it is removed,
	// measured from creation regardless of status.
	MaxAge time.Duration `env:"JANITOR_MAX_AGE" envDefault:"1h"`
}

// Sanitize applies guardrails to janitor configuration values.
func (j *JanitorConfig) Sanitize() {
	if j.Interval < 30*time.Second {
		j.Interval = 30 * time.Second
	}
	if j.MaxAge < 5*time.Minute {
		j.MaxAge = 5 * time.Minute
	}
}

// RosterConfig contains course roster sync configuration.
type RosterConfig struct {
	// CloudBaseURL is the base URL of the central attendance service.
	CloudBaseURL string `env:"CLOUD_BASE_URL" envDefault:"http://localhost:8080"`

	// Courses is a comma-delimited list of course codes to sync.
	Courses string `env:"ROSTER_COURSES" envDefault:"EEE508"`

	// SyncSchedule is the cron expression for the periodic sync.
	// Accepts standard cron syntax plus @every descriptors.
	SyncSchedule string `env:"ROSTER_SYNC_SCHEDULE" envDefault:"@every 30m"`

	// RequestTimeout bounds each HTTP request to the central service.
	RequestTimeout time.Duration `env:"ROSTER_REQUEST_TIMEOUT" envDefault:"10s"`

	// SyncConcurrency is the maximum number of courses fetched in parallel.
	SyncConcurrency int `env:"ROSTER_SYNC_CONCURRENCY" envDefault:"4"`
}

// Sanitize applies guardrails to roster configuration values.
func (r *RosterConfig) Sanitize() {
	r.CloudBaseURL = strings.TrimRight(strings.TrimSpace(r.CloudBaseURL), "/")
	r.SyncSchedule = strings.TrimSpace(r.SyncSchedule)
	if r.SyncSchedule == "" {
		r.SyncSchedule = "@every 30m"
	}
	if r.RequestTimeout <= 0 {
		r.RequestTimeout = 10 * time.Second
	}
	if r.SyncConcurrency < 1 {
		r.SyncConcurrency = 1
	}
}

// CourseCodes returns the configured course codes with whitespace and empty
// entries removed.
func (r *RosterConfig) CourseCodes() []string {
	var codes []string
	for _, part := range strings.Split(r.Courses, ",") {
		if code := strings.TrimSpace(part); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
