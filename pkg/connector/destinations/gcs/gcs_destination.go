// Package gcs provides the Google Cloud Storage destination connector.
package gcs

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/strata/pkg/compression"
	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/connector/shared/tabular"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// GCSDestination uploads a table as a single object
type GCSDestination struct {
	opts    config.ObjectStoreConfig
	format  tabular.Format
	codec   compression.Algorithm
	timeout time.Duration
	client  *storage.Client
	logger  *zap.Logger
}

// NewGCSDestination creates a GCS destination from its connector
// configuration. Without a credentials file, application default
// credentials are used.
func NewGCSDestination(cfg *config.ConnectorConfig) (*GCSDestination, error) {
	opts := config.DefaultObjectStoreConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if opts.Bucket == "" || opts.Key == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "gcs destination: options \"bucket\" and \"key\" are required")
	}
	format, err := tabular.ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	codec, err := compression.Resolve(opts.Compression, opts.Key)
	if err != nil {
		return nil, err
	}
	return &GCSDestination{
		opts:    opts,
		format:  format,
		codec:   codec,
		timeout: cfg.GetTimeout(),
		logger: logger.Get().With(
			zap.String("connector", "gcs"),
			zap.String("bucket", opts.Bucket),
			zap.String("key", opts.Key)),
	}, nil
}

func (d *GCSDestination) connect(ctx context.Context) error {
	var opts []option.ClientOption
	switch {
	case d.opts.Endpoint != "":
		opts = append(opts, option.WithEndpoint(d.opts.Endpoint), option.WithoutAuthentication())
	case d.opts.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(d.opts.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to create GCS client")
	}
	d.client = client
	return nil
}

// Write encodes t and uploads it, replacing any existing object.
func (d *GCSDestination) Write(ctx context.Context, t *models.Table) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if d.client == nil {
		if err := d.connect(ctx); err != nil {
			return err
		}
	}
	start := time.Now()

	content, err := tabular.Encode(t, d.format, d.codec)
	if err != nil {
		return err
	}

	writer := d.client.Bucket(d.opts.Bucket).Object(d.opts.Key).NewWriter(ctx)
	writer.ContentType = d.format.ContentType()
	if d.codec == compression.Gzip {
		writer.ContentEncoding = "gzip"
	}
	writer.Metadata = map[string]string{
		"records":     strconv.Itoa(t.Len()),
		"format":      string(d.format),
		"compression": string(d.codec),
		"created":     time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to write to GCS")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to close GCS writer")
	}

	d.logger.Info("gcs written",
		zap.Int("rows", t.Len()),
		zap.Int("bytes", len(content)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Close releases the storage client.
func (d *GCSDestination) Close(context.Context) error {
	if d.client == nil {
		return nil
	}
	err := d.client.Close()
	d.client = nil
	return err
}
