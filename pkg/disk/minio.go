package disk

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioAPI is the subset of the MinIO client used by MinioDisk.
type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	openObject(ctx context.Context, bucketName, objectName, etag string) (io.ReadCloser, error)
}

// minioClient adapts *minio.Client to minioAPI.
type minioClient struct {
	*minio.Client
}

// openObject opens an object. A non-empty etag pins the read to that version,
// so a concurrent replace fails the read instead of mixing versions.
func (c minioClient) openObject(ctx context.Context, bucketName, objectName, etag string) (io.ReadCloser, error) {
	opts := minio.GetObjectOptions{}
	if etag != "" {
		if err := opts.SetMatchETag(etag); err != nil {
			return nil, err
		}
	}
	return c.GetObject(ctx, bucketName, objectName, opts)
}

// MinioDisk implements Backend on MinIO or any S3-compatible service through minio-go.
type MinioDisk struct {
	client minioAPI
	cfg    CloudConfig
}

// NewMinio creates a MinioDisk. The endpoint scheme selects TLS ("https://" or no scheme)
// or plain HTTP ("http://"). When cfg.CreateBucket is set, a missing bucket is created.
func NewMinio(ctx context.Context, cfg CloudConfig) (*MinioDisk, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required for minio", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	host, secure, err := parseMinioEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create minio client: %v", ErrInvalidConfig, err)
	}

	d := newMinioDisk(minioClient{client}, cfg)
	if cfg.CreateBucket {
		if err := d.ensureBucket(ctx); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func newMinioDisk(client minioAPI, cfg CloudConfig) *MinioDisk {
	return &MinioDisk{client: client, cfg: cfg}
}

// Write uploads r to the bucket with a known length. Non-seekable readers are
// spooled to a temporary file first; a failing source never reaches the bucket.
func (d *MinioDisk) Write(ctx context.Context, dirname string, r io.Reader, opts ...WriteOption) (*FileDescriptor, error) {
	o := newWriteOptions(opts)
	key, err := buildPath(dirname, o)
	if err != nil {
		return nil, err
	}

	// A stream of unknown length makes minio-go buffer one maximum-sized part
	// per upload, so non-seekable readers are spooled to learn their size.
	var (
		body io.Reader
		size int64
	)
	if rs, ok := r.(io.ReadSeeker); ok {
		if size, err = seekableSize(rs); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
		}
		body = newContextReader(ctx, rs)
	} else {
		sf, err := spool(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
		}
		defer sf.Close()
		body, size = sf, sf.size
	}

	contentType := o.contentType
	if contentType == "" {
		contentType = TypeByPath(key)
	}

	// A failed upload leaves no object behind and an existing object at key
	// is only replaced once the upload completes, so nothing is removed here.
	info, err := d.client.PutObject(ctx, d.cfg.Bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWrite, key, ctxErr)
		}
		return nil, wrapMinioError(err, key, ErrWrite)
	}

	return &FileDescriptor{
		Path:     key,
		Size:     info.Size,
		MIMEType: o.contentType,
	}, nil
}

// Read stats the object (to surface a missing key) and opens it.
func (d *MinioDisk) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	rc, _, err := d.ReadWithSize(ctx, path)
	return rc, err
}

// ReadWithSize stats the object and opens the version it described,
// so the returned size always matches the stream.
func (d *MinioDisk) ReadWithSize(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := d.client.StatObject(ctx, d.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, 0, wrapMinioError(err, key, ErrRead)
	}

	rc, err := d.client.openObject(ctx, d.cfg.Bucket, key, info.ETag)
	if err != nil {
		return nil, 0, wrapMinioError(err, key, ErrRead)
	}
	return rc, info.Size, nil
}

// ReadSize returns the object size from its metadata.
func (d *MinioDisk) ReadSize(ctx context.Context, path string) (int64, error) {
	key, err := cleanPath(path)
	if err != nil {
		return 0, err
	}
	info, err := d.client.StatObject(ctx, d.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, wrapMinioError(err, key, ErrRead)
	}
	return info.Size, nil
}

// Delete removes an object. Missing keys are reported, unlike RemoveObject itself.
func (d *MinioDisk) Delete(ctx context.Context, path string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}
	if _, err := d.client.StatObject(ctx, d.cfg.Bucket, key, minio.StatObjectOptions{}); err != nil {
		return wrapMinioError(err, key, ErrWrite)
	}
	if err := d.client.RemoveObject(ctx, d.cfg.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return wrapMinioError(err, key, ErrWrite)
	}
	return nil
}

// Ping checks that the bucket exists and is reachable.
func (d *MinioDisk) Ping(ctx context.Context) error {
	ok, err := d.client.BucketExists(ctx, d.cfg.Bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", d.cfg.Bucket)
	}
	return nil
}

func (d *MinioDisk) ensureBucket(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket %q: %v", ErrInvalidConfig, d.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := d.client.MakeBucket(ctx, d.cfg.Bucket, minio.MakeBucketOptions{Region: d.cfg.Region}); err != nil {
		return fmt.Errorf("%w: create bucket %q: %v", ErrInvalidConfig, d.cfg.Bucket, err)
	}
	return nil
}

// parseMinioEndpoint splits an endpoint URL into the host minio-go expects and the TLS flag.
func parseMinioEndpoint(endpoint string) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), true, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("%w: endpoint %q", ErrInvalidConfig, endpoint)
	}
	switch u.Scheme {
	case "http":
		return u.Host, false, nil
	case "https":
		return u.Host, true, nil
	default:
		return "", false, fmt.Errorf("%w: endpoint scheme %q", ErrInvalidConfig, u.Scheme)
	}
}

// Ensure MinioDisk implements Backend.
var (
	_ Backend     = (*MinioDisk)(nil)
	_ SizedReader = (*MinioDisk)(nil)
	_ Pinger      = (*MinioDisk)(nil)
)
