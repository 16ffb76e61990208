package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/ajitpratap0/strata/pkg/config"
)

func newSource(t *testing.T, extra map[string]interface{}) *MongoSource {
	t.Helper()
	cfg := config.NewConnectorConfig("crm", "mongodb").
		Set("uri", "mongodb://localhost:27017").
		Set("database", "crm").
		Set("collection", "contacts")
	for k, v := range extra {
		cfg.Set(k, v)
	}
	src, err := NewMongoSource(cfg)
	require.NoError(t, err)
	return src
}

func TestLoad(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("documents become rows", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "crm.contacts", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: id},
				{Key: "email", Value: "a@x.id"},
				{Key: "visits", Value: int32(3)},
				{Key: "tags", Value: bson.A{"vip", "new"}},
				{Key: "created", Value: primitive.NewDateTimeFromTime(at)},
			},
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "email", Value: "b@x.id"},
				{Key: "city", Value: "Medan"},
				{Key: "visits", Value: nil},
			},
		))

		src := newSource(t, map[string]interface{}{"filter": `{"active": true}`, "limit": 10})
		src.coll = mt.Coll

		got, err := src.Load(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, got.Len())
		assert.Equal(t, []string{"_id", "email", "visits", "tags", "created", "city"}, got.Columns())
		assert.Equal(t, id.Hex(), got.Value(0, "_id"))
		assert.Equal(t, int64(3), got.Value(0, "visits"))
		assert.Equal(t, `["vip","new"]`, got.Value(0, "tags"))
		assert.Equal(t, at, got.Value(0, "created"))
		assert.Nil(t, got.Value(1, "visits"))
		assert.Equal(t, "Medan", got.Value(1, "city"))
	})

	mt.Run("find error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad query",
		}))
		src := newSource(t, nil)
		src.coll = mt.Coll

		_, err := src.Load(context.Background())
		assert.Error(t, err)
	})
}

func TestInvalidConfig(t *testing.T) {
	_, err := NewMongoSource(config.NewConnectorConfig("x", "mongodb").Set("uri", "mongodb://h"))
	assert.Error(t, err)

	cfg := config.NewConnectorConfig("x", "mongodb").
		Set("uri", "mongodb://h").
		Set("database", "d").
		Set("collection", "c").
		Set("filter", "{not json")
	_, err = NewMongoSource(cfg)
	assert.Error(t, err)
}

func TestScalar(t *testing.T) {
	assert.Nil(t, Scalar(primitive.Null{}))
	assert.Equal(t, `{"a":1}`, Scalar(bson.D{{Key: "a", Value: int32(1)}}))
	d, err := primitive.ParseDecimal128("12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.50", Scalar(d))
}
