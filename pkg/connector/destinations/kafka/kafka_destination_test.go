package kafka

import (
	"context"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/models"
)

func newDestination(t *testing.T) *KafkaDestination {
	t.Helper()
	dest, err := NewKafkaDestination(config.NewConnectorConfig("out", "kafka").
		Set("brokers", []interface{}{"localhost:9092"}).
		Set("topic", "contacts").
		Set("key_column", "email").
		Set("compression", "zstd"))
	require.NoError(t, err)
	return dest
}

func contacts() *models.Table {
	return models.FromRows("contacts", []string{"email", "visits"}, []models.Row{
		{"email": "a@x.id", "visits": int64(3)},
		{"visits": int64(1)},
	})
}

func TestWrite(t *testing.T) {
	dest := newDestination(t)
	producer := mocks.NewSyncProducer(t, nil)
	dest.producer = producer

	expect := func(want string) mocks.ValueChecker {
		return func(val []byte) error {
			if string(val) != want {
				return fmt.Errorf("got %s, want %s", val, want)
			}
			return nil
		}
	}
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expect(`{"email":"a@x.id","visits":3}`))
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(expect(`{"email":null,"visits":1}`))

	require.NoError(t, dest.Write(context.Background(), contacts()))
	require.NoError(t, dest.Close(context.Background()))
}

func TestWriteFailure(t *testing.T) {
	dest := newDestination(t)
	producer := mocks.NewSyncProducer(t, nil)
	dest.producer = producer

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	producer.ExpectSendMessageAndSucceed()

	assert.Error(t, dest.Write(context.Background(), contacts()))
	require.NoError(t, dest.Close(context.Background()))
}

func TestMessagesKeys(t *testing.T) {
	dest := newDestination(t)
	msgs, err := dest.Messages(contacts())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "contacts", msgs[0].Topic)
	assert.Equal(t, sarama.StringEncoder("a@x.id"), msgs[0].Key)
	assert.Nil(t, msgs[1].Key)
}

func TestMissingKeyColumn(t *testing.T) {
	dest := newDestination(t)
	dest.producer = mocks.NewSyncProducer(t, nil)
	tbl := models.FromRows("t", []string{"id"}, []models.Row{{"id": int64(1)}})
	assert.Error(t, dest.Write(context.Background(), tbl))
	require.NoError(t, dest.Close(context.Background()))
}

func TestInvalidConfig(t *testing.T) {
	_, err := NewKafkaDestination(config.NewConnectorConfig("out", "kafka").Set("topic", "x"))
	assert.Error(t, err)

	_, err = NewKafkaDestination(config.NewConnectorConfig("out", "kafka").
		Set("brokers", []interface{}{"b:9092"}).
		Set("topic", "x").
		Set("acks", "some"))
	assert.Error(t, err)
}
