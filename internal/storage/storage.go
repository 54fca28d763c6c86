// Package storage talks to the S3-compatible object store that holds
// uploaded issue attachments.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tasklane/backend/internal/config"
	"github.com/tasklane/backend/internal/version"
)

// ErrNotConfigured reports that the source or destination bucket is not named.
var ErrNotConfigured = errors.New("object storage not configured")

// Copier copies an object between buckets, keeping its key.
type Copier interface {
	CopyObject(ctx context.Context, srcBucket, dstBucket, key string) error
}

// Client is a Copier backed by minio-go.
type Client struct {
	mc *minio.Client
}

// New builds a client for the configured endpoint, AWS S3 when none is set.
// The endpoint may be given as a bare host[:port] or as a URL; a URL scheme
// overrides UseSSL.
func New(cfg config.StorageConfig) (*Client, error) {
	host, secure, err := parseEndpoint(cfg.EndpointOrDefault(), cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	mc, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	mc.SetAppInfo(version.UserAgent())

	return &Client{mc: mc}, nil
}

// CopyObject performs a server-side copy of key from srcBucket to dstBucket.
func (c *Client) CopyObject(ctx context.Context, srcBucket, dstBucket, key string) error {
	_, err := c.mc.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dstBucket, Object: key},
		minio.CopySrcOptions{Bucket: srcBucket, Object: key},
	)
	if err != nil {
		return fmt.Errorf("copy %s/%s to %s: %w", srcBucket, key, dstBucket, err)
	}
	return nil
}

func parseEndpoint(endpoint string, useSSL bool) (string, bool, error) {
	if !strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/"), useSSL, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse storage endpoint: %w", err)
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("unsupported storage endpoint scheme: %s", u.Scheme)
	}
}
