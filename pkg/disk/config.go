package disk

import "fmt"

// Driver names the backend kind selected at startup.
type Driver string

const (
	// DriverLocal stores files on the local filesystem.
	DriverLocal Driver = "local"

	// DriverCloud stores files in a remote object store.
	DriverCloud Driver = "cloud"
)

// Provider names the object-store flavour used by DriverCloud.
type Provider string

const (
	// ProviderS3 talks to AWS S3 (or an S3-compatible endpoint) through the AWS SDK.
	ProviderS3 Provider = "s3"

	// ProviderMinio talks to MinIO or another S3-compatible service through minio-go.
	ProviderMinio Provider = "minio"
)

// Default configuration values.
const (
	DefaultDirectory = "uploads"
	DefaultRegion    = "us-east-1"
)

// Config selects and configures the disk backend.
// It is read once by New; the Disk keeps its own copy.
type Config struct {
	Driver Driver      `env:"DISK_DRIVER" envDefault:"local" mapstructure:"driver"`
	Local  LocalConfig `mapstructure:"local"`
	Cloud  CloudConfig `mapstructure:"cloud"`
}

// LocalConfig configures LocalDisk.
type LocalConfig struct {
	// Directory is the root every path is resolved against (default: uploads).
	Directory string `env:"DISK_LOCAL_DIRECTORY" envDefault:"uploads" mapstructure:"directory"`
}

// CloudConfig configures S3Disk and MinioDisk.
type CloudConfig struct {
	// Provider selects the client library (default: s3).
	Provider Provider `env:"DISK_CLOUD_PROVIDER" envDefault:"s3" mapstructure:"provider"`

	// Bucket is the bucket name (required).
	Bucket string `env:"DISK_CLOUD_BUCKET" mapstructure:"bucket"`

	// Region is the bucket region (default: us-east-1).
	Region string `env:"DISK_CLOUD_REGION" envDefault:"us-east-1" mapstructure:"region"`

	// AccessKey and SecretKey are static credentials (required).
	AccessKey string `env:"DISK_CLOUD_ACCESS_KEY" mapstructure:"access_key"`
	SecretKey string `env:"DISK_CLOUD_SECRET_KEY" mapstructure:"secret_key"`

	// Endpoint is a custom endpoint URL, e.g. http://localhost:9000.
	// Required for ProviderMinio; optional for ProviderS3.
	Endpoint string `env:"DISK_CLOUD_ENDPOINT" mapstructure:"endpoint"`

	// ServerSideEncryption is passed to S3 as-is ("AES256", "aws:kms").
	ServerSideEncryption string `env:"DISK_CLOUD_SSE" mapstructure:"server_side_encryption"`

	// PathStyle enables path-style addressing (required for MinIO behind the S3 SDK).
	PathStyle bool `env:"DISK_CLOUD_PATH_STYLE" mapstructure:"path_style"`

	// CreateBucket creates the bucket during New when it does not exist.
	CreateBucket bool `env:"DISK_CLOUD_CREATE_BUCKET" mapstructure:"create_bucket"`
}

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverLocal
	}
	if c.Local.Directory == "" {
		c.Local.Directory = DefaultDirectory
	}
	if c.Cloud.Provider == "" {
		c.Cloud.Provider = ProviderS3
	}
	if c.Cloud.Region == "" {
		c.Cloud.Region = DefaultRegion
	}
}

// validate checks that required configuration fields are set for the selected driver.
func (c *Config) validate() error {
	switch c.Driver {
	case DriverLocal:
		return nil
	case DriverCloud:
		if c.Cloud.Provider != ProviderS3 && c.Cloud.Provider != ProviderMinio {
			return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Cloud.Provider)
		}
		return c.Cloud.validate()
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, c.Driver)
	}
}

func (c *CloudConfig) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	}
	if c.AccessKey == "" || c.SecretKey == "" {
		return fmt.Errorf("%w: credentials are required", ErrInvalidConfig)
	}
	if c.Provider == ProviderMinio && c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required for minio", ErrInvalidConfig)
	}
	return nil
}
