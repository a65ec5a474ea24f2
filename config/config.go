package config

import "time"

type AppInfo struct {
	Name    string `config:"name"`
	Version string `config:"version"`
}

type ServerConfig struct {
	Addr         string        `config:"addr"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

type DatabaseConfig struct {
	// Path is the sqlite database file; ":memory:" is accepted for tests.
	Path string `config:"path"`
}

type EventsConfig struct {
	// BusBuffer bounds each bus subscriber's mailbox.
	BusBuffer int `config:"busBuffer" validate:"omitempty,min=1"`
	// QueueCapacity bounds the background task queue.
	QueueCapacity int `config:"queueCapacity" validate:"omitempty,min=1"`
}

type ShutdownConfig struct {
	// ModuleTimeout is the deadline given to each module's stop hook.
	ModuleTimeout time.Duration `config:"moduleTimeout"`
}

type LoggingConfig struct {
	Format string `config:"format" validate:"omitempty,oneof=text json"`
	Level  string `config:"level" validate:"omitempty,oneof=debug info warn error"`
}

type MetricsConfig struct {
	Enabled bool `config:"enabled"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `config:"metrics"`
}

type ActuatorConfig struct {
	BasePath string `config:"basePath"`
}

// Root is the immutable settings snapshot embedded in the lifecycle context.
// It is loaded once before any module hook runs and never mutated afterwards.
type Root struct {
	App           AppInfo             `config:"app"`
	Server        ServerConfig        `config:"server"`
	Database      DatabaseConfig      `config:"database"`
	Events        EventsConfig        `config:"events"`
	Shutdown      ShutdownConfig      `config:"shutdown"`
	Logging       LoggingConfig       `config:"logging"`
	Observability ObservabilityConfig `config:"observability"`
	Actuator      ActuatorConfig      `config:"actuator"`
}

func (r *Root) applyDefaults() {
	if r.App.Name == "" {
		r.App.Name = "mosaic"
	}
	if r.App.Version == "" {
		r.App.Version = "dev"
	}
	if r.Server.Addr == "" {
		r.Server.Addr = ":8080"
	}
	if r.Database.Path == "" {
		r.Database.Path = "mosaic.db"
	}
	if r.Events.BusBuffer == 0 {
		r.Events.BusBuffer = 64
	}
	if r.Events.QueueCapacity == 0 {
		r.Events.QueueCapacity = 256
	}
	if r.Shutdown.ModuleTimeout == 0 {
		r.Shutdown.ModuleTimeout = 5 * time.Second
	}
	if r.Logging.Format == "" {
		r.Logging.Format = "text"
	}
	if r.Logging.Level == "" {
		r.Logging.Level = "info"
	}
	if r.Actuator.BasePath == "" {
		r.Actuator.BasePath = "/actuator"
	}
}
