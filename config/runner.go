package config

import "time"

// RunnerConfig contains analysis runner configuration.
type RunnerConfig struct {
	// Interval is how often the runner polls the registry for running jobs.
	Interval time.Duration `env:"RUNNER_INTERVAL" envDefault:"5s"`

	// BatchSize is the maximum number of jobs processed per poll.
	BatchSize int `env:"RUNNER_BATCH_SIZE" envDefault:"10"`

	// BackendURL is the insights analysis backend endpoint. When empty the
	// runner cannot start.
	BackendURL string `env:"RUNNER_BACKEND_URL" envDefault:""`

	// RequestTimeout bounds a single analysis backend call.
	RequestTimeout time.Duration `env:"RUNNER_REQUEST_TIMEOUT" envDefault:"120s"`
}

// Sanitize applies guardrails to runner configuration values.
func (r *RunnerConfig) Sanitize() {
	if r.Interval <= 0 {
		r.Interval = 5 * time.Second
	}
	if r.BatchSize <= 0 {
		r.BatchSize = 10
	}
	if r.RequestTimeout <= 0 {
		r.RequestTimeout = 120 * time.Second
	}
}

// SweeperConfig contains retention sweeper configuration.
type SweeperConfig struct {
	// Interval is how often the sweeper runs.
	Interval time.Duration `env:"SWEEPER_INTERVAL" envDefault:"10m"`

	// RetentionMaxAge is how long completed and failed jobs are kept before
	// deletion.
	RetentionMaxAge time.Duration `env:"SWEEPER_RETENTION_MAX_AGE" envDefault:"168h"`
}

// Sanitize applies guardrails to sweeper configuration values.
func (s *SweeperConfig) Sanitize() {
	if s.Interval <= 0 {
		s.Interval = 10 * time.Minute
	}
	if s.RetentionMaxAge <= 0 {
		s.RetentionMaxAge = 168 * time.Hour
	}
}
