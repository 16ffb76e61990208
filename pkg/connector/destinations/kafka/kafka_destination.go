// Package kafka provides the Kafka destination connector. Every row is
// produced as one JSON message whose keys follow the table's columns.
package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// KafkaDestination produces rows to a topic with a synchronous producer
type KafkaDestination struct {
	opts     config.KafkaDestinationConfig
	sarama   *sarama.Config
	producer sarama.SyncProducer
	logger   *zap.Logger
}

// NewKafkaDestination creates a Kafka destination from its connector
// configuration. The producer connects on first Write.
func NewKafkaDestination(cfg *config.ConnectorConfig) (*KafkaDestination, error) {
	opts := config.DefaultKafkaDestinationConfig()
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	if len(opts.Brokers) == 0 || opts.Topic == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "kafka destination: options \"brokers\" and \"topic\" are required")
	}
	sc, err := buildSaramaConfig(opts, cfg.GetTimeout())
	if err != nil {
		return nil, err
	}
	return &KafkaDestination{
		opts:   opts,
		sarama: sc,
		logger: logger.Get().With(zap.String("connector", "kafka"), zap.String("topic", opts.Topic)),
	}, nil
}

func buildSaramaConfig(opts config.KafkaDestinationConfig, timeout time.Duration) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.ClientID = opts.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.Timeout = timeout

	switch opts.Acks {
	case "", "all", "-1":
		sc.Producer.RequiredAcks = sarama.WaitForAll
	case "1":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	case "0":
		sc.Producer.RequiredAcks = sarama.NoResponse
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "kafka destination: invalid acks %q", opts.Acks)
	}

	switch opts.Compression {
	case "", "none":
		sc.Producer.Compression = sarama.CompressionNone
	case "gzip":
		sc.Producer.Compression = sarama.CompressionGZIP
	case "snappy":
		sc.Producer.Compression = sarama.CompressionSnappy
	case "lz4":
		sc.Producer.Compression = sarama.CompressionLZ4
	case "zstd":
		sc.Producer.Compression = sarama.CompressionZSTD
		sc.Version = sarama.V2_1_0_0
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "kafka destination: unsupported compression %q", opts.Compression)
	}

	if err := sc.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid kafka producer config")
	}
	return sc, nil
}

// Messages converts every row of t into a producer message.
func (d *KafkaDestination) Messages(t *models.Table) ([]*sarama.ProducerMessage, error) {
	columns := t.Columns()
	now := time.Now()
	msgs := make([]*sarama.ProducerMessage, 0, t.Len())
	for _, r := range t.Rows() {
		value, err := json.MarshalRow(columns, r)
		if err != nil {
			return nil, err
		}
		msg := &sarama.ProducerMessage{
			Topic:     d.opts.Topic,
			Value:     sarama.ByteEncoder(value),
			Headers:   []sarama.RecordHeader{{Key: []byte("content-type"), Value: []byte("application/json")}},
			Timestamp: now,
		}
		if d.opts.KeyColumn != "" {
			if k := r[d.opts.KeyColumn]; !models.IsNull(k) {
				msg.Key = sarama.StringEncoder(models.Stringify(k))
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Write produces one message per row and waits for every acknowledgement.
func (d *KafkaDestination) Write(ctx context.Context, t *models.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.opts.KeyColumn != "" && !t.HasColumn(d.opts.KeyColumn) {
		return errors.Newf(errors.ErrorTypeData, "kafka destination: key column %q not in table", d.opts.KeyColumn)
	}
	if d.producer == nil {
		p, err := sarama.NewSyncProducer(d.opts.Brokers, d.sarama)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect to Kafka")
		}
		d.producer = p
	}
	start := time.Now()

	msgs, err := d.Messages(t)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := d.producer.SendMessages(msgs); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to produce to "+d.opts.Topic)
	}

	d.logger.Info("kafka written",
		zap.Int("messages", len(msgs)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// Close shuts the producer down.
func (d *KafkaDestination) Close(context.Context) error {
	if d.producer == nil {
		return nil
	}
	err := d.producer.Close()
	d.producer = nil
	return err
}
