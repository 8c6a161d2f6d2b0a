package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 stores blobs in a single bucket of AWS S3 or an S3-compatible service (MinIO, R2).
type S3 struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, enables path-style addressing
	AccessKeyID     string // optional, default credential chain otherwise
	SecretAccessKey string
	PublicURL       string // optional base for object URLs, e.g. a CDN
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: cfg.Bucket, publicURL: publicBase(cfg, region)}, nil
}

func publicBase(cfg S3Config, region string) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}
}

func (s *S3) Driver() Driver { return DriverS3 }

func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) (Object, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Object{}, err
	}
	// Seekable bodies (multipart files, bytes.Reader) are passed through so the SDK can sign them.
	var (
		body io.Reader = r
		size int64     = -1
	)
	if rs, ok := r.(io.ReadSeeker); ok {
		end, err := rs.Seek(0, io.SeekEnd)
		if err != nil {
			return Object{}, err
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return Object{}, err
		}
		size = end
	}
	counter := &countingReader{r: r}
	if size < 0 {
		body = counter
	}

	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &k, Body: body}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Object{}, err
	}
	if size < 0 {
		size = counter.n
	}
	return Object{Key: k, URL: s.publicURL + "/" + k, ContentType: contentType, Size: size}, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &k})
	return err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
