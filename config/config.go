package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/filetrail"
	"github.com/sagarc03/filetrail/database"
	filetrailhttp "github.com/sagarc03/filetrail/http"
	"github.com/sagarc03/filetrail/keybackend"
	"github.com/sagarc03/filetrail/objectstore"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FILETRAIL"

// configKey is the context key for storing the loaded configuration.
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

// Config is the root configuration struct for filetrail.
type Config struct {
	Env      string                   `mapstructure:"env" yaml:"env" validate:"required,oneof=dev prod"`
	Server   ServerConfig             `mapstructure:"server" yaml:"server"`
	Database database.Config          `mapstructure:"database" yaml:"database"`
	Storage  objectstore.Config       `mapstructure:"storage" yaml:"storage"`
	Auth     AuthConfig               `mapstructure:"auth" yaml:"auth"`
	CORS     filetrailhttp.CORSConfig `mapstructure:"cors" yaml:"cors"`
	Log      LogConfig                `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port" validate:"required,min=1,max=65535"`
	MaxBodySize     int64         `mapstructure:"max_body_size" yaml:"max_body_size" validate:"min=1"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"min=0"`
}

// AuthConfig holds bearer token verification configuration.
type AuthConfig struct {
	OIDC filetrail.OIDCConfig `mapstructure:"oidc" yaml:"oidc"`
	Keys keybackend.Config    `mapstructure:"keys" yaml:"keys"`
	// Leeway tolerates clock skew on exp, nbf and iat
	Leeway time.Duration `mapstructure:"leeway" yaml:"leeway" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
}

// IsProd reports whether the production logging setup should be used.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

const redacted = "REDACTED"

// Redacted returns a copy of c with credentials masked, for display.
func (c Config) Redacted() Config {
	if c.Storage.AccessKey != "" {
		c.Storage.AccessKey = redacted
	}
	if c.Storage.SecretKey != "" {
		c.Storage.SecretKey = redacted
	}
	if u, err := url.Parse(c.Database.DSN); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), redacted)
			c.Database.DSN = u.String()
		}
	}
	return c
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type": "database.type",
	"db-dsn":  "database.dsn",
	"bucket":  "storage.bucket",
	"port":    "server.port",
	"env":     "env",
}

// envAliases binds conventional environment names next to the prefixed ones.
// The prefixed name wins when both are set.
var envAliases = map[string]string{
	"database.dsn":       "DATABASE_URL",
	"storage.bucket":     "S3_BUCKET",
	"server.port":        "PORT",
	"auth.keys.url":      "OIDC_JWKS_URL",
	"auth.oidc.issuer":   "OIDC_ISSUER",
	"auth.oidc.audience": "OIDC_AUDIENCE",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

func bindEnv(v *viper.Viper, replacer *strings.Replacer) {
	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(replacer.Replace(key))
		_ = v.BindEnv(key, prefixed, alias)
	}
}

// setDefaults configures default values on the viper instance. Every key
// needs an entry here so that AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 3000)
	v.SetDefault("server.max_body_size", filetrailhttp.DefaultMaxBodyBytes)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.type", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.max_conns", 0)

	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.region", objectstore.DefaultRegion)
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_path_style", false)
	v.SetDefault("storage.secure", true)

	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.audience", "")
	v.SetDefault("auth.keys.url", "")
	v.SetDefault("auth.keys.file", "")
	v.SetDefault("auth.keys.cache_ttl", keybackend.DefaultCacheTTL)
	v.SetDefault("auth.keys.refresh_interval", keybackend.DefaultRefreshInterval)
	v.SetDefault("auth.leeway", time.Minute)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

// Default returns the configuration produced by defaults alone. It is not
// validated, since the required settings have no default.
func Default() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal defaults: %w", err)
	}
	return &cfg, nil
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFiles[0], err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("merge config file %s: %w", cf, err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()
	bindEnv(v, replacer)

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
