package config

import (
	"errors"
	"fmt"
	"reflect"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

// partial is the optional-field representation of a single source layer.
// Every field is a pointer so that "not provided" and "set to the zero
// value" stay distinguishable during the merge. It never leaves this
// package.
type partial struct {
	DiscordToken  *string `toml:"discord_token" env:"DISCORD_TOKEN"`
	DiscordAPIURL *string `toml:"discord_api_url" env:"DISCORD_API_URL"`
	Host          *string `toml:"host" env:"HOST"`
	Port          *uint16 `toml:"port" env:"PORT"`
	LogLevel      *string `toml:"log_level" env:"LOG_LEVEL"`
	Verbose       *bool   `toml:"verbose" env:"VERBOSE"`
}

// overlay applies every present field onto cfg.
func (p *partial) overlay(cfg *Config) {
	if p.DiscordToken != nil {
		cfg.DiscordToken = *p.DiscordToken
	}
	if p.DiscordAPIURL != nil {
		cfg.DiscordAPIURL = *p.DiscordAPIURL
	}
	if p.Host != nil {
		cfg.Host = *p.Host
	}
	if p.Port != nil {
		cfg.Port = *p.Port
	}
	if p.LogLevel != nil {
		cfg.LogLevel = *p.LogLevel
	}
	if p.Verbose != nil {
		cfg.Verbose = *p.Verbose
	}
}

// fillNilTransformer makes the mergo fold presence-aware: a pointer field
// is taken from a lower-precedence layer only while no higher layer has
// set it. Without it mergo would descend into the pointees and overwrite
// explicit zero values such as --verbose=false.
type fillNilTransformer struct{}

func (fillNilTransformer) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t.Kind() != reflect.Pointer {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if dst.CanSet() && dst.IsNil() {
			dst.Set(src)
		}
		return nil
	}
}

// foldLayers merges the given layers, highest precedence first, into a
// single partial. Nil layers are skipped.
func foldLayers(layers ...*partial) (*partial, error) {
	merged := &partial{}
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		if err := mergo.Merge(merged, layer, mergo.WithTransformers(fillNilTransformer{})); err != nil {
			return nil, fmt.Errorf("merge config layers: %w", err)
		}
	}
	return merged, nil
}

// partialFromFile decodes one TOML file into a partial. Unknown keys are
// ignored for forward compatibility.
func partialFromFile(path string) (*partial, error) {
	var p partial
	if _, err := toml.DecodeFile(path, &p); err != nil {
		var tomlErr toml.ParseError
		if errors.As(err, &tomlErr) {
			return nil, &ParseError{
				Source: SourceFile,
				Field:  tomlErr.LastKey,
				Err:    fmt.Errorf("%s: %w", path, err),
			}
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	return &p, nil
}

// partialFromEnv reads TRIBOFERRIN_-prefixed environment variables into a
// partial. Variables that are absent leave their field nil; variables
// that are present but unparsable are an error, not a silent skip.
func partialFromEnv() (*partial, error) {
	var p partial
	if err := env.ParseWithOptions(&p, env.Options{Prefix: envPrefix}); err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) && len(agg.Errors) > 0 {
			var envErr env.ParseError
			if errors.As(agg.Errors[0], &envErr) {
				return nil, &ParseError{
					Source: SourceEnv,
					Field:  fieldKey(envErr.Name),
					Err:    envErr.Err,
				}
			}
		}
		return nil, &ParseError{Source: SourceEnv, Err: err}
	}
	return &p, nil
}

// partialFromFlags collects values from flags that were explicitly set.
// An absent flag means "do not override". A nil flag set yields an empty
// layer, which keeps the resolver usable without a CLI front end.
func partialFromFlags(flags *pflag.FlagSet) (*partial, error) {
	var p partial
	if flags == nil {
		return &p, nil
	}

	if flags.Changed(flagDiscordToken) {
		v, err := flags.GetString(flagDiscordToken)
		if err != nil {
			return nil, &ParseError{Source: SourceFlags, Field: "discord_token", Err: err}
		}
		p.DiscordToken = &v
	}
	if flags.Changed(flagDiscordAPIURL) {
		v, err := flags.GetString(flagDiscordAPIURL)
		if err != nil {
			return nil, &ParseError{Source: SourceFlags, Field: "discord_api_url", Err: err}
		}
		p.DiscordAPIURL = &v
	}
	if flags.Changed(flagHost) {
		v, err := flags.GetString(flagHost)
		if err != nil {
			return nil, &ParseError{Source: SourceFlags, Field: "host", Err: err}
		}
		p.Host = &v
	}
	if flags.Changed(flagPort) {
		v, err := flags.GetUint16(flagPort)
		if err != nil {
			return nil, &ParseError{Source: SourceFlags, Field: "port", Err: err}
		}
		p.Port = &v
	}
	if flags.Changed(flagLogLevel) {
		v, err := flags.GetString(flagLogLevel)
		if err != nil {
			return nil, &ParseError{Source: SourceFlags, Field: "log_level", Err: err}
		}
		p.LogLevel = &v
	}
	if flags.Changed(flagVerbose) {
		v, err := flags.GetBool(flagVerbose)
		if err != nil {
			return nil, &ParseError{Source: SourceFlags, Field: "verbose", Err: err}
		}
		p.Verbose = &v
	}

	return &p, nil
}

// fieldKey maps a partial struct field name to its config key.
func fieldKey(goName string) string {
	switch goName {
	case "DiscordToken":
		return "discord_token"
	case "DiscordAPIURL":
		return "discord_api_url"
	case "Host":
		return "host"
	case "Port":
		return "port"
	case "LogLevel":
		return "log_level"
	case "Verbose":
		return "verbose"
	}
	return goName
}
