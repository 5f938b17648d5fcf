package app

import (
	"errors"
	"time"

	"github.com/specialistvlad/pullgridgo/internal/config"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath   string // hcl files
	ModulesPath string // additional hcl files, merged into the graph
	StatePath   string // presentation state, loaded on start and saved on close

	Frames      int // 0 runs until the context is cancelled
	Interval    time.Duration
	WorkerCount int
	Overrides   []config.Override
	RemoteURL   string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.Frames < 0 {
		return nil, errors.New("Frames must not be negative")
	}
	if cfg.Interval < 0 {
		return nil, errors.New("Interval must not be negative")
	}
	if cfg.WorkerCount < 1 {
		return nil, errors.New("WorkerCount must be at least 1")
	}
	cfg.Overrides = append([]config.Override(nil), cfg.Overrides...)
	return &cfg, nil
}
