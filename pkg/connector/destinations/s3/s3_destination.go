// Package s3 provides the Amazon S3 destination connector.
package s3

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/compression"
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/tabular"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// S3Destination uploads a table as a single object
type S3Destination struct {
	opts     config.ObjectStoreConfig
	format   tabular.Format
	codec    compression.Algorithm
	timeout  time.Duration
	uploader *manager.Uploader
	logger   *zap.Logger
}

// NewS3Destination creates an S3 destination from its connector
// configuration. AWS credentials come from the default provider chain.
func NewS3Destination(cfg *config.ConnectorConfig) (*S3Destination, error) {
	opts := config.DefaultObjectStoreConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Bucket == "" || opts.Key == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "s3 destination: options \"bucket\" and \"key\" are required")
	}
	format, err := tabular.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	codec, err := compression.Resolve(opts.Compression, opts.Key)
	if err != nil {
		return nil, err
	}
	return &S3Destination{
		opts:    opts,
		format:  format,
		codec:   codec,
		timeout: cfg.GetTimeout(),
		logger: logger.Get().With(
			zap.String("connector", "s3"),
			zap.String("bucket", opts.Bucket),
			zap.String("key", opts.Key)),
	}, nil
}

func (d *S3Destination) initializeAWSClients(ctx context.Context) error {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if d.opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(d.opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to load AWS configuration")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if d.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(d.opts.Endpoint)
			// S3 compatible stores rarely accept trailing checksums
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
		o.UsePathStyle = d.opts.UsePathStyle
	})
	d.uploader = manager.NewUploader(client)
	return nil
}

// Write encodes t and uploads it, replacing any existing object.
func (d *S3Destination) Write(ctx context.Context, t *models.Table) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.uploader == nil {
		if err := d.initializeAWSClients(ctx); err != nil {
			return err
		}
	}
	start := time.Now()

	content, err := tabular.Encode(t, d.format, d.codec)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(d.opts.Bucket),
		Key:         aws.String(d.opts.Key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(d.format.ContentType()),
		Metadata: map[string]string{
			"records":     strconv.Itoa(t.Len()),
			"format":      string(d.format),
			"compression": string(d.codec),
			"created":     time.Now().UTC().Format(time.RFC3339),
		},
	}
	if enc := contentEncoding(d.codec); enc != "" {
		input.ContentEncoding = aws.String(enc)
	}
	if _, err := d.uploader.Upload(ctx, input); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to upload to S3")
	}

	d.logger.Info("s3 written",
		zap.Int("rows", t.Len()),
		zap.Int("bytes", len(content)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// contentEncoding returns the HTTP content coding of alg, if it has one.
func contentEncoding(alg compression.Algorithm) string {
	switch alg {
	case compression.Gzip:
		return "gzip"
	case compression.Deflate:
		return "deflate"
	case compression.Zstd:
		return "zstd"
	default:
		return ""
	}
}

// Close is a no-op; the SDK client holds no persistent connection.
func (d *S3Destination) Close(context.Context) error { return nil }
