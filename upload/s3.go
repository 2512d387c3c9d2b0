package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3-compatible bucket that serves uploads publicly.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"` // "host:port" or "http(s)://host:port"
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	// PublicURL is the base URL objects are reachable at, e.g. a CDN in front
	// of the bucket. Object keys are appended to it.
	PublicURL string `yaml:"public_url"`
	Prefix    string `yaml:"prefix"`
}

// Enabled reports whether enough of the config is set to build a provider.
func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// S3Provider stores files in a bucket through minio-go.
type S3Provider struct {
	client    *minio.Client
	bucket    string
	publicURL string
	prefix    string
}

// NewS3Provider builds the client. It does not contact the bucket; a
// misconfigured bucket shows up as a failed attempt in the chain.
func NewS3Provider(cfg S3Config) (*S3Provider, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}
	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		public = scheme + "://" + endpoint + "/" + cfg.Bucket
	}
	return &S3Provider{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(public, "/"),
		prefix:    strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (p *S3Provider) Name() string { return "s3:" + p.bucket }

func (p *S3Provider) Upload(ctx context.Context, f File) (string, error) {
	key := p.objectKey(f.Name)
	_, err := p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(f.Data), int64(len(f.Data)),
		minio.PutObjectOptions{ContentType: f.ContentType})
	if err != nil {
		return "", err
	}
	return p.publicURL + "/" + key, nil
}

// objectKey keeps the extension of name and makes the rest unique.
func (p *S3Provider) objectKey(name string) string {
	key := uuid.NewString() + strings.ToLower(path.Ext(name))
	if p.prefix != "" {
		key = p.prefix + "/" + key
	}
	return key
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	// A bare host:port is a local bucket, plain HTTP.
	return raw, false, nil
}
