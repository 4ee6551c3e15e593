package config

import (
	"fmt"
	"math"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
		RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Solver struct {
		MaxError           float64 `env:"SOLVER_MAX_ERROR" envDefault:"1e-6"`
		MaxIterations      int     `env:"SOLVER_MAX_ITERATIONS" envDefault:"500"`
		MaxIterationsLimit int     `env:"SOLVER_MAX_ITERATIONS_LIMIT" envDefault:"100000"`
	}
	Scan struct {
		Segments    int `env:"SCAN_SEGMENTS" envDefault:"500"`
		MaxSegments int `env:"SCAN_MAX_SEGMENTS" envDefault:"1000000"`
	}
	Runs struct {
		MaxStored int `env:"RUNS_MAX_STORED" envDefault:"1000"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the solver and scan limits for consistency.
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if math.IsNaN(c.Solver.MaxError) || c.Solver.MaxError < 0 {
		return fmt.Errorf("SOLVER_MAX_ERROR must be a non-negative number, got %g", c.Solver.MaxError)
	}
	if c.Solver.MaxIterations < 1 {
		return fmt.Errorf("SOLVER_MAX_ITERATIONS must be positive, got %d", c.Solver.MaxIterations)
	}
	if c.Solver.MaxIterationsLimit < c.Solver.MaxIterations {
		return fmt.Errorf("SOLVER_MAX_ITERATIONS_LIMIT (%d) must be at least SOLVER_MAX_ITERATIONS (%d)",
			c.Solver.MaxIterationsLimit, c.Solver.MaxIterations)
	}
	if c.Scan.Segments < 1 {
		return fmt.Errorf("SCAN_SEGMENTS must be positive, got %d", c.Scan.Segments)
	}
	if c.Scan.MaxSegments < c.Scan.Segments {
		return fmt.Errorf("SCAN_MAX_SEGMENTS (%d) must be at least SCAN_SEGMENTS (%d)",
			c.Scan.MaxSegments, c.Scan.Segments)
	}
	if c.Runs.MaxStored < 1 {
		return fmt.Errorf("RUNS_MAX_STORED must be positive, got %d", c.Runs.MaxStored)
	}
	return nil
}
