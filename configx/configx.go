// Package configx loads process configuration from the environment and dotenv files.
//
// Overview:
//   - Responsibility: Merge configuration sources and bind them into typed structs
//   - Key Types: Source interface, Manager interface, Options for configuration
//   - Concurrency Model: Manager is safe for concurrent use
//   - Error Semantics: Binding and validation failures surface as errors.ConfigError
//
// Usage:
//
//	manager, err := configx.NewManager(ctx, configx.Options{
//	  Logger:  logger,
//	  Sources: []configx.Source{configx.NewDotenvSource(".env"), configx.NewEnvSource(configx.EnvOptions{})},
//	})
//	var cfg AppConfig
//	err = manager.Bind(&cfg)
package configx

import (
	"context"
	"fmt"

	"github.com/red2n/opentele/configx/internal"
	"github.com/red2n/opentele/core/errors"
	"github.com/red2n/opentele/core/log"
)

// Source describes a configuration source.
// Implementations must be safe for concurrent use and honor context cancellation.
type Source interface {
	// Load reads the current configuration snapshot as key-value pairs.
	Load(ctx context.Context) (map[string]string, error)
}

// Manager provides unified access to the merged configuration.
// Later sources take precedence over earlier ones.
type Manager interface {
	// Snapshot returns a copy of the current merged configuration.
	Snapshot() map[string]string

	// Value returns the value for a key and whether it exists.
	Value(key string) (string, bool)

	// Bind decodes the configuration into a struct with env and default tags.
	Bind(target any) error
}

// Options holds configuration for the manager.
type Options struct {
	Logger  log.Logger // Logger for configuration operations
	Sources []Source   // Configuration sources (later sources override earlier ones)
}

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix    string
	Uppercase bool
}

type manager struct {
	impl *internal.ManagerImpl
}

// NewManager creates a configuration manager and performs the initial load.
func NewManager(ctx context.Context, opts Options) (Manager, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sources := make([]internal.Source, len(opts.Sources))
	for i, src := range opts.Sources {
		sources[i] = src
	}

	impl, err := internal.NewManager(opts.Logger, sources)
	if err != nil {
		return nil, err
	}

	if err := impl.Load(ctx); err != nil {
		return nil, err
	}

	return &manager{impl: impl}, nil
}

// Snapshot returns a copy of the current configuration.
func (m *manager) Snapshot() map[string]string {
	return m.impl.Snapshot()
}

// Value returns the value for a key and whether it exists.
func (m *manager) Value(key string) (string, bool) {
	return m.impl.Value(key)
}

// Bind decodes the configuration into a struct.
// A value that cannot be converted yields an errors.ConfigError naming its key.
func (m *manager) Bind(target any) error {
	err := m.impl.Bind(target)
	if fe, ok := err.(*internal.FieldError); ok {
		return errors.NewConfigError(fe.Key, fe.Err.Error())
	}
	return err
}

// NewEnvSource creates an environment variable configuration source.
func NewEnvSource(opts EnvOptions) Source {
	return internal.NewEnvSource(internal.EnvOptions{
		Prefix:    opts.Prefix,
		Uppercase: opts.Uppercase,
	})
}

// NewDotenvSource creates a source reading KEY=VALUE pairs from a dotenv file.
// A missing file is not an error.
func NewDotenvSource(path string) Source {
	return internal.NewDotenvSource(path)
}

// DefaultSources returns the dotenv file at envFile followed by the process
// environment, so real environment variables win over the file.
func DefaultSources(envFile string) []Source {
	return []Source{
		NewDotenvSource(envFile),
		NewEnvSource(EnvOptions{}),
	}
}

// SplitList splits a comma-separated value, trimming blanks and dropping empty items.
func SplitList(value string) []string {
	return internal.SplitList(value)
}
