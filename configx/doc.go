// Package configx provides configuration loading for opentele.
//
// # Overview
//
// configx merges an optional dotenv file with the process environment and
// binds the result into structs through env/default tags. Validation is done
// with go-playground/validator and reported as errors.ConfigError so callers
// can treat every configuration problem the same way.
//
// # Features
//
//   - Multiple sources with last-wins merge semantics
//   - Empty values never override a value from an earlier source
//   - Type-safe struct binding, including time.Duration and comma-separated []string
//   - validate tags with errors keyed by env name
//
// # Usage
//
//	mgr, err := configx.NewManager(ctx, configx.Options{
//		Logger:  logger,
//		Sources: configx.DefaultSources(".env"),
//	})
//	if err != nil { return err }
//
//	var cfg AppConfig
//	if err := mgr.Bind(&cfg); err != nil { return err }
//	if err := configx.Validate(&cfg); err != nil { return err }
package configx
