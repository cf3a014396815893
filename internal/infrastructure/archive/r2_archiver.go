package archive

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const csvContentType = "text/csv; charset=utf-8"

// ObjectPutter is the slice of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	// Endpoint is the S3-compatible API root, e.g. https://<account>.r2.cloudflarestorage.com.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	// PublicBaseURL is optional; without it Archive returns an s3:// location.
	PublicBaseURL  string
	CircuitBreaker resilience.CircuitBreakerConfig
}

// ObjectArchiver stores exported stat sheets in an S3-compatible bucket.
type ObjectArchiver struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

// NewObjectArchiver builds an S3 client with static credentials against cfg.Endpoint.
func NewObjectArchiver(ctx context.Context, cfg Config, logger *logging.Logger) (*ObjectArchiver, error) {
	endpoint, err := validateBaseURL(cfg.Endpoint)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid ARCHIVE_ENDPOINT")
	}
	if strings.TrimSpace(cfg.AccessKeyID) == "" || strings.TrimSpace(cfg.SecretAccessKey) == "" {
		return nil, crerr.New("archive credentials are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "load object storage sdk config")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return NewObjectArchiverWithClient(client, cfg, logger)
}

// NewObjectArchiverWithClient wires an existing client, used by tests.
func NewObjectArchiverWithClient(client ObjectPutter, cfg Config, logger *logging.Logger) (*ObjectArchiver, error) {
	if client == nil {
		return nil, crerr.New("object storage client is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, crerr.New("archive bucket is required")
	}
	publicBaseURL := ""
	if strings.TrimSpace(cfg.PublicBaseURL) != "" {
		parsed, err := validateBaseURL(cfg.PublicBaseURL)
		if err != nil {
			return nil, crerr.Wrap(err, "invalid ARCHIVE_PUBLIC_BASE_URL")
		}
		publicBaseURL = parsed
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ObjectArchiver{
		client:        client,
		bucket:        bucket,
		publicBaseURL: publicBaseURL,
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:        logger,
	}, nil
}

// Archive uploads body under key and returns where it can be fetched.
func (a *ObjectArchiver) Archive(ctx context.Context, key string, body []byte) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", crerr.New("archive key is required")
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("archive.bucket", a.bucket),
			attribute.String("archive.key", key),
			attribute.Int("archive.bytes", len(body)),
		)
	}

	var etag string
	err := a.breaker.Do(ctx, func(ctx context.Context) error {
		out, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(csvContentType),
		})
		if err != nil {
			return crerr.Wrapf(err, "put object bucket=%s key=%s", a.bucket, key)
		}
		if out != nil && out.ETag != nil {
			etag = strings.Trim(*out.ETag, "\"")
		}
		return nil
	})
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			a.logger.WarnContext(ctx, "archive circuit breaker rejected upload", "key", key, "state", a.breaker.State())
			return "", fmt.Errorf("object storage is temporarily unavailable: %w", err)
		}
		return "", err
	}

	a.logger.InfoContext(ctx, "stat sheet archived", "bucket", a.bucket, "key", key, "etag", etag, "bytes", len(body))
	return a.Location(key), nil
}

// Location is the public URL for key, or s3://bucket/key without a public base.
func (a *ObjectArchiver) Location(key string) string {
	if a.publicBaseURL == "" {
		return "s3://" + a.bucket + "/" + key
	}
	return a.publicBaseURL + "/" + key
}

func validateBaseURL(raw string) (string, error) {
	candidate := strings.TrimRight(strings.TrimSpace(raw), "/")
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}
