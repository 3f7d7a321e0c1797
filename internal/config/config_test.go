package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/disk/pkg/disk"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	require.Equal(t, disk.DriverLocal, cfg.Disk.Driver)
	require.Equal(t, disk.DefaultDirectory, cfg.Disk.Local.Directory)
	require.Equal(t, disk.ProviderS3, cfg.Disk.Cloud.Provider)
	require.Equal(t, disk.DefaultRegion, cfg.Disk.Cloud.Region)
	require.Equal(t, "files", cfg.Upload.Directory)
	require.Equal(t, int64(10<<20), cfg.Upload.MaxFileSize)
	require.Equal(t, int64(32<<20), cfg.Upload.MaxBodySize)
	require.Empty(t, cfg.Upload.AllowedTypes)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, 10*time.Minute, cfg.Server.ReadTimeout)
	require.Equal(t, 10*time.Minute, cfg.Server.WriteTimeout)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("DISKD_DISK_DRIVER", "cloud")
	t.Setenv("DISKD_DISK_CLOUD_PROVIDER", "minio")
	t.Setenv("DISKD_DISK_CLOUD_BUCKET", "uploads")
	t.Setenv("DISKD_DISK_CLOUD_PATH_STYLE", "true")
	t.Setenv("DISKD_UPLOAD_ALLOWED_TYPES", "image/*,application/pdf")
	t.Setenv("DISKD_UPLOAD_MAX_FILE_SIZE", "1024")
	t.Setenv("DISKD_SERVER_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("DISKD_SERVER_READ_TIMEOUT", "1h")

	cfg, err := Load(nil)
	require.NoError(t, err)

	require.Equal(t, disk.DriverCloud, cfg.Disk.Driver)
	require.Equal(t, disk.ProviderMinio, cfg.Disk.Cloud.Provider)
	require.Equal(t, "uploads", cfg.Disk.Cloud.Bucket)
	require.True(t, cfg.Disk.Cloud.PathStyle)
	require.Equal(t, []string{"image/*", "application/pdf"}, cfg.Upload.AllowedTypes)
	require.Equal(t, int64(1024), cfg.Upload.MaxFileSize)
	require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	require.Equal(t, time.Hour, cfg.Server.ReadTimeout)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("DISKD_SERVER_ADDR", ":9000")
	t.Setenv("DISKD_LOG_LEVEL", "warn")

	cfg, err := Load([]string{"--server.addr", ":7000", "--disk.local.directory=/srv/files"})
	require.NoError(t, err)

	require.Equal(t, ":7000", cfg.Server.Addr)
	require.Equal(t, "/srv/files", cfg.Disk.Local.Directory)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diskd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
disk:
  driver: cloud
  cloud:
    bucket: media
    region: eu-central-1
    access_key: key
    secret_key: secret
    server_side_encryption: AES256
upload:
  directory: movies
  allowed_types:
    - video/*
server:
  addr: ":8081"
log:
  level: debug
`), 0o600))
	t.Setenv("DISKD_DISK_CLOUD_BUCKET", "media-override")

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)

	require.Equal(t, disk.DriverCloud, cfg.Disk.Driver)
	require.Equal(t, "media-override", cfg.Disk.Cloud.Bucket)
	require.Equal(t, "eu-central-1", cfg.Disk.Cloud.Region)
	require.Equal(t, "AES256", cfg.Disk.Cloud.ServerSideEncryption)
	require.Equal(t, "movies", cfg.Upload.Directory)
	require.Equal(t, []string{"video/*"}, cfg.Upload.AllowedTypes)
	require.Equal(t, ":8081", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, int64(10<<20), cfg.Upload.MaxFileSize)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		_, err := Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
		require.Error(t, err)
	})

	t.Run("unknown flag", func(t *testing.T) {
		_, err := Load([]string{"--nope"})
		require.Error(t, err)
	})

	t.Run("help", func(t *testing.T) {
		_, err := Load([]string{"--help"})
		require.ErrorIs(t, err, pflag.ErrHelp)
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, err := Load([]string{"--log.level", "verbose"})
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("negative read timeout", func(t *testing.T) {
		t.Setenv("DISKD_SERVER_READ_TIMEOUT", "-1s")
		_, err := Load(nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid file size", func(t *testing.T) {
		t.Setenv("DISKD_UPLOAD_MAX_FILE_SIZE", "0")
		_, err := Load(nil)
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}
