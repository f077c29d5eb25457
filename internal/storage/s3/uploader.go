// Package s3 stores listing photos in an S3-compatible bucket via MinIO.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options configures a Client. Endpoint and Bucket are required.
type Options struct {
	Endpoint       string
	PublicEndpoint string // base of returned URLs; defaults to Endpoint
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string // defaults to us-east-1; set so no location lookup is needed
	UseSSL         bool
}

// Client uploads photo bytes and returns their public URL.
// It satisfies service.Uploader.
type Client struct {
	bucket        string
	publicBaseURL string
	client        *minio.Client
	logger        *slog.Logger

	// bucketMu guards bucketReady. A failed check is retried on the next upload.
	bucketMu    sync.Mutex
	bucketReady bool
}

// NewClient builds a Client. No network call is made until the first upload.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket := strings.TrimSpace(opts.Bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "us-east-1"
	}

	mc, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(opts.AccessKey), strings.TrimSpace(opts.SecretKey), ""),
		Secure: opts.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(opts.PublicEndpoint)
	if base == "" {
		base = endpoint
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		client:        mc,
		logger:        logger,
	}, nil
}

// Upload stores the content under key and returns its public URL.
// The bucket is created, with a public-read policy, on first use.
func (c *Client) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if r == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Photos are capped by the request body limit, so a known size keeps
	// this a single PUT instead of a streamed multipart upload.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("s3: read body: %w", err)
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.client.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	u := c.ObjectURL(key)
	c.logger.InfoContext(ctx, "photo stored", "bucket", c.bucket, "key", key, "url", u)
	return u, nil
}

// ObjectURL returns the public URL of key in the client's bucket.
func (c *Client) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, strings.TrimLeft(key, "/"))
}

// ensureBucket creates the bucket with a public-read policy unless an earlier
// call already confirmed it. Failures are not remembered.
func (c *Client) ensureBucket(ctx context.Context) error {
	c.bucketMu.Lock()
	defer c.bucketMu.Unlock()
	if c.bucketReady {
		return nil
	}

	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("s3: create bucket: %w", err)
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.bucket)
		if err := c.client.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
			return fmt.Errorf("s3: set bucket policy: %w", err)
		}
	}
	c.bucketReady = true
	return nil
}

// hostOf strips the scheme from endpoint; minio.New wants host[:port].
func hostOf(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	return endpoint
}
