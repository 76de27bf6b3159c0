// Package internal provides internal implementation details for configx.
package internal

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Source describes a configuration source.
type Source interface {
	// Load reads the current configuration snapshot.
	Load(ctx context.Context) (map[string]string, error)
}

// EnvOptions configures environment variable source behavior.
type EnvOptions struct {
	Prefix    string // Prefix for environment variables (e.g., "APP_")
	Uppercase bool   // Convert keys to uppercase
}

// EnvSource loads configuration from environment variables.
type EnvSource struct {
	prefix    string
	uppercase bool
	environ   func() []string
}

// NewEnvSource creates a new environment variable source.
func NewEnvSource(opts EnvOptions) *EnvSource {
	return &EnvSource{
		prefix:    opts.Prefix,
		uppercase: opts.Uppercase,
		environ:   os.Environ,
	}
}

// Load reads configuration from environment variables.
func (s *EnvSource) Load(ctx context.Context) (map[string]string, error) {
	config := make(map[string]string)

	for _, env := range s.environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		if s.prefix != "" {
			if !strings.HasPrefix(key, s.prefix) {
				continue
			}
			key = strings.TrimPrefix(key, s.prefix)
		}

		if s.uppercase {
			key = strings.ToUpper(key)
		}

		config[key] = value
	}

	return config, nil
}

// DotenvSource loads KEY=VALUE pairs from a dotenv file.
// A missing file yields an empty snapshot.
type DotenvSource struct {
	path string
}

// NewDotenvSource creates a dotenv file source.
func NewDotenvSource(path string) *DotenvSource {
	return &DotenvSource{path: path}
}

// Load parses the file without touching the process environment.
func (s *DotenvSource) Load(ctx context.Context) (map[string]string, error) {
	if s.path == "" {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read dotenv file %s: %w", s.path, err)
	}
	return values, nil
}
