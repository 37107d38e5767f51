package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/leengari/mdtable/internal/coerce"
	"github.com/leengari/mdtable/internal/engine"
	"github.com/leengari/mdtable/internal/source"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "MDTABLE_"

// Config holds every setting of the CLI, shell and servers
type Config struct {
	// Extraction
	Headline      string   `json:"headline" mapstructure:"headline"`
	HeadingMarker string   `json:"heading_marker" mapstructure:"heading_marker"`
	KeepLinks     bool     `json:"keep_links" mapstructure:"keep_links"`
	Sort          bool     `json:"sort" mapstructure:"-"`
	SortDesc      bool     `json:"sort_desc" mapstructure:"-"`
	AlwaysKeep    []string `json:"always_keep" mapstructure:"always_keep"`

	// Type inference
	Strict        bool    `json:"strict" mapstructure:"strict"`
	DateLayout    string  `json:"date_layout" mapstructure:"date_layout"`
	NearMissRatio float64 `json:"near_miss_ratio" mapstructure:"near_miss_ratio"`

	// Logging
	SeqURL   string `json:"seq_url" mapstructure:"seq_url"`
	LogLevel string `json:"log_level" mapstructure:"log_level"`

	// Fetching
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
	S3Endpoint  string        `json:"s3_endpoint" mapstructure:"s3_endpoint"`
	S3AccessKey string        `json:"s3_access_key" mapstructure:"s3_access_key"`
	S3SecretKey string        `json:"-" mapstructure:"s3_secret_key"`
	S3UseSSL    bool          `json:"s3_use_ssl" mapstructure:"s3_use_ssl"`

	// Serving
	Addr           string  `json:"addr" mapstructure:"addr"`
	HTTPAddr       string  `json:"http_addr" mapstructure:"http_addr"`
	MaxConnections int     `json:"max_connections" mapstructure:"max_connections"`
	RateLimit      float64 `json:"rate_limit" mapstructure:"rate_limit"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Headline:       "## Leaderboard",
		HeadingMarker:  "#",
		DateLayout:     "2006-01-02",
		NearMissRatio:  0.8,
		LogLevel:       "info",
		Timeout:        10 * time.Second,
		S3UseSSL:       true,
		Addr:           ":4444",
		HTTPAddr:       ":8080",
		MaxConnections: 64,
		RateLimit:      20,
	}
}

// setting is one viper key and the conversion its raw value goes through.
// Flags are named after the key with dashes, variables with EnvPrefix and upper case.
type setting struct {
	key   string
	parse func(any) (any, error)
}

var settings = []setting{
	{"headline", asString},
	{"heading_marker", asString},
	{"keep_links", asBool},
	{"always_keep", asList},
	{"sort", asSortMode},
	{"strict", asBool},
	{"date_layout", asString},
	{"near_miss_ratio", asFloat},
	{"seq_url", asString},
	{"log_level", asString},
	{"timeout", asDuration},
	{"s3_endpoint", asString},
	{"s3_access_key", asString},
	{"s3_secret_key", asString},
	{"s3_use_ssl", asBool},
	{"addr", asString},
	{"http_addr", asString},
	{"max_connections", asInt},
	{"rate_limit", asFloat},
}

// FromEnv returns Default with MDTABLE_* environment overrides applied
func FromEnv() (Config, error) {
	return Load(nil)
}

// Load resolves the configuration from Default, MDTABLE_* variables and
// the changed flags of flags, later sources winning. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(strings.TrimSuffix(EnvPrefix, "_"))
	v.AutomaticEnv()

	defaults := map[string]any{}
	if err := mapstructure.Decode(Default(), &defaults); err != nil {
		return Config{}, fmt.Errorf("failed to encode defaults: %w", err)
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetDefault("sort", "none")

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	for _, s := range settings {
		raw := v.Get(s.key)
		if str, ok := raw.(string); ok {
			raw = strings.TrimSpace(str)
		}
		value, err := s.parse(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", origin(flags, s.key), err)
		}
		v.Set(s.key, value)
	}

	c := Default()
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	switch v.GetString("sort") {
	case "asc":
		c.Sort, c.SortDesc = true, false
	case "desc":
		c.Sort, c.SortDesc = true, true
	default:
		c.Sort, c.SortDesc = false, false
	}
	return c, nil
}

// bindFlags binds every flag that names a setting
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err != nil || !known(key) {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("bind --%s: %w", f.Name, bindErr)
		}
	})
	return err
}

func known(key string) bool {
	for _, s := range settings {
		if s.key == key {
			return true
		}
	}
	return false
}

// origin names where a bad value came from, for error messages
func origin(flags *pflag.FlagSet, key string) string {
	name := strings.ReplaceAll(key, "_", "-")
	if flags != nil && flags.Changed(name) {
		return "--" + name
	}
	return EnvPrefix + strings.ToUpper(key)
}

func asString(raw any) (any, error) { return cast.ToStringE(raw) }
func asBool(raw any) (any, error) { return cast.ToBoolE(raw) }
func asInt(raw any) (any, error) { return cast.ToIntE(raw) }
func asFloat(raw any) (any, error) { return cast.ToFloat64E(raw) }
func asDuration(raw any) (any, error) { return cast.ToDurationE(raw) }

// asList splits comma separated values and drops blank items
func asList(raw any) (any, error) {
	var items []string
	switch value := raw.(type) {
	case nil:
		return []string(nil), nil
	case string:
		items = strings.Split(value, ",")
	default:
		var err error
		if items, err = cast.ToStringSliceE(raw); err != nil {
			return nil, err
		}
	}
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

func asSortMode(raw any) (any, error) {
	mode, err := cast.ToStringE(raw)
	if err != nil {
		return nil, err
	}
	switch mode = strings.ToLower(mode); mode {
	case "asc", "desc":
		return mode, nil
	case "", "none":
		return "none", nil
	}
	return nil, fmt.Errorf("want asc, desc or none, got %q", mode)
}

// Validate checks the configuration for values the pipeline cannot use
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Headline, validation.Required),
		validation.Field(&c.HeadingMarker, validation.Required),
		validation.Field(&c.DateLayout, validation.Required, validation.By(checkLayout)),
		validation.Field(&c.NearMissRatio, validation.Required, validation.Min(0.0).Exclusive(), validation.Max(1.0)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxConnections, validation.Min(0)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.S3AccessKey, validation.When(c.S3Endpoint != "", validation.Required)),
		validation.Field(&c.S3SecretKey, validation.When(c.S3Endpoint != "", validation.Required)),
	)
}

// checkLayout rejects layouts that do not round-trip a reference date
func checkLayout(value interface{}) error {
	layout, _ := value.(string)
	ref := time.Date(2023, time.March, 14, 0, 0, 0, 0, time.UTC)
	parsed, err := time.Parse(layout, ref.Format(layout))
	if err != nil || !parsed.Equal(ref) {
		return fmt.Errorf("must be a Go date layout such as 2006-01-02")
	}
	return nil
}

// CoerceOptions maps the inference settings onto coerce.Options
func (c Config) CoerceOptions() coerce.Options {
	opts := coerce.DefaultOptions()
	if c.Strict {
		opts.Mode = coerce.Strict
	}
	opts.DateLayout = c.DateLayout
	opts.NearMissRatio = c.NearMissRatio
	return opts
}

// EngineOptions maps the configuration onto engine.Options
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		Headline:      c.Headline,
		HeadingMarker: c.HeadingMarker,
		KeepLinks:     c.KeepLinks,
		Coerce:        c.CoerceOptions(),
		Sort:          c.Sort,
		SortDesc:      c.SortDesc,
		AlwaysKeep:    c.AlwaysKeep,
	}
}

// SourceOptions maps the fetch settings onto source.Options
func (c Config) SourceOptions() source.Options {
	return source.Options{
		Timeout:     c.Timeout,
		S3Endpoint:  c.S3Endpoint,
		S3AccessKey: c.S3AccessKey,
		S3SecretKey: c.S3SecretKey,
		S3UseSSL:    c.S3UseSSL,
	}
}

// Level returns LogLevel as a slog.Level; unknown names map to INFO
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
