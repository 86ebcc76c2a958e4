// Package config loads UniCache's CLI/daemon configuration from built-in
// defaults, a YAML file, and environment variables, in that order of
// increasing precedence, the same layering dittofs's own pkg/config uses.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix for every environment variable override, e.g.
// UNICACHE_CACHE_DIR, UNICACHE_LOG_LEVEL.
const envPrefix = "UNICACHE"

// Config is UniCache's full CLI/daemon configuration.
//
// Configuration sources, highest precedence first:
//  1. Environment variables (UNICACHE_*)
//  2. Configuration file ($XDG_CONFIG_HOME/unicache/config.yaml)
//  3. Built-in defaults (Default)
type Config struct {
	// CacheDir is the directory holding blocks.bin and index.json.
	CacheDir string `mapstructure:"cache_dir" validate:"required" yaml:"cache_dir"`

	// BlockSize is the fixed chunk size used when splitting newly stored
	// files. Only consulted the first time a cache directory is created;
	// an existing cache's persisted block_size always wins.
	BlockSize ByteSize `mapstructure:"block_size" validate:"required,gt=0" yaml:"block_size"`

	// Strict makes Open fail instead of silently honoring a persisted
	// block_size that differs from BlockSize.
	Strict bool `mapstructure:"strict" yaml:"strict"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Server configures the optional read-only HTTP introspection server
	// started by `unicache serve`.
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// LoggingConfig controls the internal/logger output.
type LoggingConfig struct {
	// Level is the minimum level to emit: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	// Format is the handler to use: text (colorized when a TTY) or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
}

// ServerConfig configures the optional HTTP introspection server.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:9595".
	Addr string `mapstructure:"addr" validate:"required" yaml:"addr"`
	// ReadTimeout bounds how long the server waits to read a request.
	ReadTimeout time.Duration `mapstructure:"read_timeout" validate:"gt=0" yaml:"read_timeout"`
	// ShutdownTimeout bounds how long graceful shutdown waits for
	// in-flight requests to finish.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0" yaml:"shutdown_timeout"`
}

// Default returns UniCache's built-in default configuration.
func Default() *Config {
	configDir := defaultConfigDir()
	return &Config{
		CacheDir:  filepath.Join(configDir, "cache"),
		BlockSize: 4 * MiB,
		Strict:    false,
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:9595",
			ReadTimeout:     5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
	}
}

// Load reads configuration from configPath (or the default location if
// empty), overlays environment variables, fills in any unset fields from
// Default, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if found {
		if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHooks())); err != nil {
			return nil, fmt.Errorf("config: unmarshal: %w", err)
		}
	} else {
		applyEnvOverrides(v, cfg)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate runs struct-tag validation over cfg using go-playground/validator,
// the same library dittofs's own config struct tags declare (here actually
// invoked, rather than left as documentation-only tags).
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

// Save writes cfg as YAML to path, creating parent directories as needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", path, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("logging.level", envPrefix+"_LOG_LEVEL")
	_ = v.BindEnv("logging.format", envPrefix+"_LOG_FORMAT")

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(defaultConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("config: read config file: %w", err)
	}
	return true, nil
}

// applyEnvOverrides copies any UNICACHE_* environment variables viper picked
// up onto a freshly defaulted Config, for the no-config-file case where
// v.Unmarshal has nothing to decode against.
func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	if s := v.GetString("cache_dir"); s != "" {
		cfg.CacheDir = s
	}
	if s := v.GetString("block_size"); s != "" {
		if bs, err := ParseByteSize(s); err == nil {
			cfg.BlockSize = bs
		}
	}
	if s := v.GetString("logging.level"); s != "" {
		cfg.Logging.Level = s
	}
	if s := v.GetString("logging.format"); s != "" {
		cfg.Logging.Format = s
	}
	if s := v.GetString("server.addr"); s != "" {
		cfg.Server.Addr = s
	}
	if v.IsSet("strict") {
		cfg.Strict = v.GetBool("strict")
	}
	if d := v.GetDuration("server.read_timeout"); d > 0 {
		cfg.Server.ReadTimeout = d
	}
	if d := v.GetDuration("server.shutdown_timeout"); d > 0 {
		cfg.Server.ShutdownTimeout = d
	}
}

// decodeHooks composes the mapstructure decode hooks that let config.yaml
// use human-readable sizes ("4Mi") and durations ("5s") instead of raw
// integers, mirroring dittofs's own configDecodeHooks.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseByteSize(v)
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case uint64:
			return ByteSize(v), nil
		case float64:
			return ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// defaultConfigDir returns $XDG_CONFIG_HOME/unicache, falling back to
// ~/.config/unicache, or "." if the home directory cannot be determined.
func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "unicache")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "unicache")
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default
// location.
func DefaultConfigExists() bool {
	_, err := os.Stat(DefaultConfigPath())
	return err == nil
}
