// Package config loads diskd configuration from flags, DISKD_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dmitrymomot/disk/pkg/disk"
	"github.com/dmitrymomot/disk/pkg/logger"
)

// EnvPrefix prefixes every environment variable, e.g. DISKD_DISK_DRIVER.
const EnvPrefix = "DISKD"

// ErrInvalidConfig is returned by Load for values that fail validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete diskd configuration.
type Config struct {
	Disk   disk.Config   `mapstructure:"disk"`
	Upload UploadConfig  `mapstructure:"upload"`
	Server ServerConfig  `mapstructure:"server"`
	Log    logger.Config `mapstructure:"log"`
}

// UploadConfig configures the upload endpoint.
type UploadConfig struct {
	// Directory is the storage directory uploaded files are written to.
	Directory string `mapstructure:"directory"`

	// AllowedTypes restricts uploaded MIME types; empty allows any.
	AllowedTypes []string `mapstructure:"allowed_types"`

	// MaxFileSize is the per-file limit in bytes.
	MaxFileSize int64 `mapstructure:"max_file_size"`

	// MaxBodySize is the request body limit in bytes; zero disables it.
	MaxBodySize int64 `mapstructure:"max_body_size"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// ReadTimeout bounds reading a whole request, upload body included.
	// Size it for the slowest client expected to send upload.max_body_size bytes.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout bounds writing a whole response, file downloads included.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

var defaults = map[string]any{
	"disk.driver":                       string(disk.DriverLocal),
	"disk.local.directory":              disk.DefaultDirectory,
	"disk.cloud.provider":               string(disk.ProviderS3),
	"disk.cloud.bucket":                 "",
	"disk.cloud.region":                 disk.DefaultRegion,
	"disk.cloud.access_key":             "",
	"disk.cloud.secret_key":             "",
	"disk.cloud.endpoint":               "",
	"disk.cloud.server_side_encryption": "",
	"disk.cloud.path_style":             false,
	"disk.cloud.create_bucket":          false,
	"upload.directory":                  "files",
	"upload.allowed_types":              []string{},
	"upload.max_file_size":              int64(10 << 20),
	"upload.max_body_size":              int64(32 << 20),
	"server.addr":                       ":8080",
	"server.shutdown_timeout":           30 * time.Second,
	"server.read_timeout":               10 * time.Minute,
	"server.write_timeout":              10 * time.Minute,
	"log.level":                         "info",
	"log.sentry_dsn":                    "",
	"log.environment":                   "production",
}

// Load reads configuration. args are command-line arguments without the program name.
// Precedence: flags, environment, config file, defaults.
func Load(args []string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	fs := pflag.NewFlagSet("diskd", pflag.ContinueOnError)
	configFile := fs.String("config", "", "Path to a YAML config file")
	fs.String("server.addr", "", "HTTP listen address (e.g., ':8080')")
	fs.String("disk.driver", "", "Storage driver: local or cloud")
	fs.String("disk.local.directory", "", "Root directory of the local driver")
	fs.String("disk.cloud.provider", "", "Cloud provider: s3 or minio")
	fs.String("disk.cloud.bucket", "", "Cloud bucket name")
	fs.String("disk.cloud.endpoint", "", "Cloud endpoint URL (e.g., 'http://localhost:9000')")
	fs.String("log.level", "", "Log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	// Only explicitly set flags take part; their empty defaults must not shadow other sources.
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = errors.Join(bindErr, err)
		}
	})
	if bindErr != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, *configFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// readConfigFile loads path, or diskd.yaml from the working directory or /etc/diskd when path is empty.
// A missing default file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("diskd")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/diskd/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: server.shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("%w: server read and write timeouts must not be negative", ErrInvalidConfig)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("%w: upload.max_file_size must be positive", ErrInvalidConfig)
	}
	if c.Upload.MaxBodySize < 0 {
		return fmt.Errorf("%w: upload.max_body_size must not be negative", ErrInvalidConfig)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
