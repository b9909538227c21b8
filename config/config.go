package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is the config file consulted when no explicit path is
// given. Its absence is not an error.
const DefaultConfigFile = "triboferrin-config.toml"

// envPrefix is prepended to the upper-cased field name to form the
// environment variable for that field, e.g. TRIBOFERRIN_DISCORD_TOKEN.
const envPrefix = "TRIBOFERRIN_"

// Flag names understood by Load. RegisterFlags defines them all.
const (
	flagConfig        = "config"
	flagDiscordToken  = "discord-token"
	flagDiscordAPIURL = "discord-api-url"
	flagHost          = "host"
	flagPort          = "port"
	flagLogLevel      = "log-level"
	flagVerbose       = "verbose"
)

// configKey is the context key for storing the resolved configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the fully merged, validated configuration. It is resolved
// once at startup and treated as read-only afterwards.
type Config struct {
	DiscordToken  string `toml:"discord_token,omitempty"`
	DiscordAPIURL string `toml:"discord_api_url,omitempty" validate:"omitempty,url"`
	Host          string `toml:"host" validate:"required"`
	Port          uint16 `toml:"port" validate:"min=1"`
	LogLevel      string `toml:"log_level" validate:"required,oneof=trace debug info warn error"`
	Verbose       bool   `toml:"verbose"`
}

// Default returns the built-in configuration values.
func Default() Config {
	return Config{
		Host:     "localhost",
		Port:     8080,
		LogLevel: "info",
	}
}

// RequireToken reports whether a Discord token is present. Commands that
// hand the config to the gateway call this before starting; commands that
// only inspect configuration do not.
func (c *Config) RequireToken() error {
	if c.DiscordToken != "" {
		return nil
	}
	return &ValidationError{
		Field:      "discord_token",
		Value:      "",
		Constraint: "required; set " + envPrefix + "DISCORD_TOKEN or pass --discord-token",
	}
}

// LogValue renders the config for structured logging with the token
// redacted.
func (c *Config) LogValue() slog.Value {
	token := ""
	if c.DiscordToken != "" {
		token = "[REDACTED]"
	}
	return slog.GroupValue(
		slog.String("host", c.Host),
		slog.Int("port", int(c.Port)),
		slog.String("log_level", c.LogLevel),
		slog.Bool("verbose", c.Verbose),
		slog.String("discord_token", token),
		slog.String("discord_api_url", c.DiscordAPIURL),
	)
}

// RegisterFlags defines the CLI surface Load understands on the given
// flag set. Defaults shown in help mirror Default(); a flag only
// overrides its field when explicitly set.
func RegisterFlags(flags *pflag.FlagSet) {
	def := Default()
	flags.StringP(flagConfig, "c", "", "path to configuration file (default: ./"+DefaultConfigFile+")")
	flags.String(flagDiscordToken, "", "Discord bot token (env: "+envPrefix+"DISCORD_TOKEN)")
	flags.String(flagDiscordAPIURL, "", "Discord API base URL, for proxy support")
	flags.String(flagHost, def.Host, "status listener bind host")
	flags.Uint16(flagPort, def.Port, "status listener bind port")
	flags.String(flagLogLevel, def.LogLevel, "log level (trace, debug, info, warn, error)")
	flags.BoolP(flagVerbose, "v", false, "raise the log level to at least debug")
}

// Option adjusts how Load resolves configuration.
type Option func(*options)

type options struct {
	defaultPath   string
	tokenRequired bool
}

// WithDefaultPath replaces the default config file location. Mainly a
// test hook.
func WithDefaultPath(path string) Option {
	return func(o *options) { o.defaultPath = path }
}

// WithTokenRequired makes Load fail when no layer supplies a Discord
// token, for callers that resolve and start the gateway in one step.
func WithTokenRequired() Option {
	return func(o *options) { o.tokenRequired = true }
}

// Load resolves one configuration value from four layered sources.
// Order of precedence (highest to lowest): flags > env > file > defaults,
// decided field by field. flags may be nil.
//
// Resolution is all-or-nothing: any malformed source aborts with a typed
// error naming the layer, field, and expectation.
func Load(flags *pflag.FlagSet, opts ...Option) (*Config, error) {
	o := options{defaultPath: DefaultConfigFile}
	for _, opt := range opts {
		opt(&o)
	}

	filePart, err := loadFileLayer(flags, o.defaultPath)
	if err != nil {
		return nil, err
	}
	envPart, err := partialFromEnv()
	if err != nil {
		return nil, err
	}
	flagPart, err := partialFromFlags(flags)
	if err != nil {
		return nil, err
	}

	merged, err := foldLayers(flagPart, envPart, filePart)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	merged.overlay(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if o.tokenRequired {
		if err := cfg.RequireToken(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// loadFileLayer resolves which config file to read, if any. An explicit
// path (--config flag or TRIBOFERRIN_CONFIG, flag winning) must exist;
// the default path is skipped silently when absent. Returns nil when no
// file contributes a layer.
func loadFileLayer(flags *pflag.FlagSet, defaultPath string) (*partial, error) {
	path := defaultPath
	explicit := false

	if flags != nil && flags.Changed(flagConfig) {
		v, err := flags.GetString(flagConfig)
		if err != nil {
			return nil, &ParseError{Source: SourceFlags, Field: "config", Err: err}
		}
		path, explicit = v, true
	} else if v, ok := os.LookupEnv(envPrefix + "CONFIG"); ok && v != "" {
		path, explicit = v, true
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, &SourceNotFoundError{Path: path}
			}
			return nil, nil
		}
		return nil, fmt.Errorf("stat config file %s: %w", path, err)
	}

	return partialFromFile(path)
}

// validate checks the merged config against the domain invariants and
// translates the first violation into a ValidationError naming the field
// by its config key.
func (c *Config) validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("toml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:      fe.Field(),
			Value:      fe.Value(),
			Constraint: constraintText(fe),
		}
	}
	return fmt.Errorf("validate config: %w", err)
}

func constraintText(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return "a value is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "must satisfy " + fe.ActualTag()
	}
}
