// Package config resolves the triboferrin configuration from four
// layered sources and validates the merged result.
//
// # Configuration Precedence
//
// Values are merged field by field; the highest-precedence layer that
// provides a field wins:
//
//  1. Default values
//  2. TOML configuration file (triboferrin-config.toml, or -c/--config)
//  3. Environment variables (TRIBOFERRIN_ prefix)
//  4. CLI flags
//
// Resolution happens exactly once at process startup; the returned
// Config is read-only afterwards.
//
// # Usage
//
//	cfg, err := config.Load(cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Configuration File
//
// A TOML document with optional snake_case keys: discord_token,
// discord_api_url, host, port, log_level, verbose. Unknown keys are
// ignored. A file cannot name its own path; --config and
// TRIBOFERRIN_CONFIG are the only ways to point at a file, and an
// explicitly given path must exist.
//
// # Environment Variables
//
// Each field maps to TRIBOFERRIN_ plus the upper-cased field name:
//   - discord_token → TRIBOFERRIN_DISCORD_TOKEN
//   - host → TRIBOFERRIN_HOST
//   - port → TRIBOFERRIN_PORT
//   - log_level → TRIBOFERRIN_LOG_LEVEL
//
// # Errors
//
// Failures are typed and all-or-nothing:
//   - SourceNotFoundError: an explicitly requested file does not exist
//   - ParseError: a layer's raw content does not decode to its field's
//     type; carries the source layer and the field
//   - ValidationError: a parsed value violates an invariant (port range,
//     log level enumeration, token presence when required)
//
// The only silent skip is a missing file at the default path, which
// means "no file provided".
package config
