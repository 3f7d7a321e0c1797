package disk

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3API is the subset of *s3.Client used by S3Disk.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Disk implements Backend using S3-compatible object storage through the AWS SDK.
type S3Disk struct {
	client s3API
	cfg    CloudConfig
}

// NewS3 creates an S3Disk with the given configuration.
// When cfg.CreateBucket is set, a missing bucket is created.
func NewS3(ctx context.Context, cfg CloudConfig) (*S3Disk, error) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	d := newS3Disk(s3.New(s3.Options{}, opts...), cfg)
	if cfg.CreateBucket {
		if err := d.ensureBucket(ctx); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func newS3Disk(client s3API, cfg CloudConfig) *S3Disk {
	return &S3Disk{client: client, cfg: cfg}
}

// Write uploads r to the bucket.
// The SDK needs a seekable body, so non-seekable readers are spooled to a temporary
// file first; a failing source therefore never produces a partial object.
func (d *S3Disk) Write(ctx context.Context, dirname string, r io.Reader, opts ...WriteOption) (*FileDescriptor, error) {
	o := newWriteOptions(opts)
	key, err := buildPath(dirname, o)
	if err != nil {
		return nil, err
	}

	var (
		body io.ReadSeeker
		size int64
	)
	if rs, ok := r.(io.ReadSeeker); ok {
		size, err = seekableSize(rs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
		}
		body = rs
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

	input := &s3.PutObjectInput{
		Bucket:        aws.String(d.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if d.cfg.ServerSideEncryption != "" {
		input.ServerSideEncryption = types.ServerSideEncryption(d.cfg.ServerSideEncryption)
	}

	if _, err := d.client.PutObject(ctx, input); err != nil {
		return nil, wrapS3Error(err, key, ErrWrite)
	}

	return &FileDescriptor{
		Path:     key,
		Size:     size,
		MIMEType: o.contentType,
	}, nil
}

// Read retrieves an object from the bucket.
func (d *S3Disk) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	output, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, key, ErrRead)
	}

	return output.Body, nil
}

// ReadWithSize retrieves an object together with the length of that object version.
func (d *S3Disk) ReadWithSize(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	key, err := cleanPath(path)
	if err != nil {
		return nil, 0, err
	}

	output, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, wrapS3Error(err, key, ErrRead)
	}

	return output.Body, aws.ToInt64(output.ContentLength), nil
}

// ReadSize returns the object size from its metadata without downloading it.
func (d *S3Disk) ReadSize(ctx context.Context, path string) (int64, error) {
	key, err := cleanPath(path)
	if err != nil {
		return 0, err
	}
	output, err := d.headObject(ctx, key)
	if err != nil {
		return 0, wrapS3Error(err, key, ErrRead)
	}
	return aws.ToInt64(output.ContentLength), nil
}

// Delete removes an object from the bucket.
// S3 deletes are silent for missing keys, so existence is checked first.
func (d *S3Disk) Delete(ctx context.Context, path string) error {
	key, err := cleanPath(path)
	if err != nil {
		return err
	}
	if _, err := d.headObject(ctx, key); err != nil {
		return wrapS3Error(err, key, ErrWrite)
	}

	_, err = d.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, key, ErrWrite)
	}

	return nil
}

// Ping checks that the bucket is reachable.
func (d *S3Disk) Ping(ctx context.Context) error {
	_, err := d.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(d.cfg.Bucket),
	})
	return err
}

func (d *S3Disk) headObject(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	return d.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(d.cfg.Bucket),
		Key:    aws.String(key),
	})
}

// ensureBucket creates the bucket when HeadBucket reports it missing.
func (d *S3Disk) ensureBucket(ctx context.Context) error {
	err := d.Ping(ctx)
	if err == nil {
		return nil
	}

	if !isBucketMissing(err) {
		return fmt.Errorf("%w: check bucket %q: %v", ErrInvalidConfig, d.cfg.Bucket, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(d.cfg.Bucket)}
	if d.cfg.Region != DefaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(d.cfg.Region),
		}
	}
	if _, err := d.client.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("%w: create bucket %q: %v", ErrInvalidConfig, d.cfg.Bucket, err)
	}
	return nil
}

// isBucketMissing reports whether a HeadBucket error means the bucket does not exist.
func isBucketMissing(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return true
		}
	}
	return false
}

// Ensure S3Disk implements Backend.
var (
	_ Backend     = (*S3Disk)(nil)
	_ SizedReader = (*S3Disk)(nil)
	_ Pinger      = (*S3Disk)(nil)
)
