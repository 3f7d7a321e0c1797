package disk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_applyDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.applyDefaults()

	require.Equal(t, DriverLocal, cfg.Driver)
	require.Equal(t, DefaultDirectory, cfg.Local.Directory)
	require.Equal(t, ProviderS3, cfg.Cloud.Provider)
	require.Equal(t, DefaultRegion, cfg.Cloud.Region)
}

func TestConfig_validate(t *testing.T) {
	t.Parallel()

	cloud := CloudConfig{
		Provider:  ProviderS3,
		Bucket:    "uploads",
		AccessKey: "key",
		SecretKey: "secret",
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"local", Config{Driver: DriverLocal}, false},
		{"cloud s3", Config{Driver: DriverCloud, Cloud: cloud}, false},
		{"unknown driver", Config{Driver: "ftp"}, true},
		{"unknown provider", Config{Driver: DriverCloud, Cloud: func() CloudConfig {
			c := cloud
			c.Provider = "gcs"
			return c
		}()}, true},
		{"missing bucket", Config{Driver: DriverCloud, Cloud: func() CloudConfig {
			c := cloud
			c.Bucket = ""
			return c
		}()}, true},
		{"missing credentials", Config{Driver: DriverCloud, Cloud: func() CloudConfig {
			c := cloud
			c.SecretKey = ""
			return c
		}()}, true},
		{"minio without endpoint", Config{Driver: DriverCloud, Cloud: func() CloudConfig {
			c := cloud
			c.Provider = ProviderMinio
			return c
		}()}, true},
		{"minio with endpoint", Config{Driver: DriverCloud, Cloud: func() CloudConfig {
			c := cloud
			c.Provider = ProviderMinio
			c.Endpoint = "http://localhost:9000"
			return c
		}()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}
