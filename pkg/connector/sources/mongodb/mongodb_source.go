// Package mongodb provides the MongoDB collection source connector.
package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ajitpratap0/strata/pkg/config"
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/json"
	"github.com/ajitpratap0/strata/pkg/logger"
	"github.com/ajitpratap0/strata/pkg/models"
)

// MongoSource reads the documents of one collection. Top-level fields
// become columns in first-seen order; nested documents and arrays are kept
// as JSON text.
type MongoSource struct {
	name    string
	opts    config.MongoDBSourceConfig
	filter  bson.D
	timeout time.Duration
	client  *mongo.Client
	coll    *mongo.Collection
	logger  *zap.Logger
}

// NewMongoSource creates a MongoDB source from its connector configuration.
// The client connects on first Load.
func NewMongoSource(cfg *config.ConnectorConfig) (*MongoSource, error) {
	var opts config.MongoDBSourceConfig
	if err := cfg.Decode(&opts); err != nil {
		return nil, err
	}
	required := []struct{ key, value string }{
		{"uri", opts.URI}, {"database", opts.Database}, {"collection", opts.Collection},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, errors.Newf(errors.ErrorTypeConfig, "mongodb source: option %q is required", r.key)
		}
	}

	filter := bson.D{}
	if opts.Filter != "" {
		if err := bson.UnmarshalExtJSON([]byte(opts.Filter), false, &filter); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "mongodb source: invalid filter")
		}
	}

	return &MongoSource{
		name:    cfg.Name,
		opts:    opts,
		filter:  filter,
		timeout: cfg.GetTimeout(),
		logger: logger.Get().With(
			zap.String("connector", "mongodb"),
			zap.String("collection", opts.Database+"."+opts.Collection)),
	}, nil
}

func (s *MongoSource) connect(ctx context.Context) error {
	if s.coll != nil {
		return nil
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(s.opts.URI))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to connect to MongoDB")
	}
	s.client = client
	s.coll = client.Database(s.opts.Database).Collection(s.opts.Collection)
	return nil
}

// Load runs the find and collects every document.
func (s *MongoSource) Load(ctx context.Context) (*models.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if s.opts.Limit > 0 {
		findOpts.SetLimit(s.opts.Limit)
	}
	cursor, err := s.coll.Find(ctx, s.filter, findOpts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "mongodb find failed")
	}
	defer cursor.Close(ctx)

	t := models.NewTable(s.name)
	for cursor.Next(ctx) {
		var doc bson.D
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode document")
		}
		row := make(models.Row, len(doc))
		for _, e := range doc {
			t.AddColumn(e.Key)
			if v := Scalar(e.Value); v != nil {
				row[e.Key] = v
			}
		}
		t.AppendRow(row)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeQuery, "mongodb cursor failed")
	}
	s.logger.Debug("mongodb loaded", zap.Int("rows", t.Len()))
	return t, nil
}

// Scalar converts a BSON value into a table scalar.
func Scalar(v interface{}) interface{} {
	switch x := v.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return nil
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Decimal128:
		return x.String()
	case bson.D, bson.A, bson.M:
		raw, err := json.Marshal(plain(x))
		if err != nil {
			return models.Stringify(x)
		}
		return string(raw)
	default:
		return models.NormalizeValue(x)
	}
}

// plain converts nested BSON into values the JSON encoder understands.
func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case bson.D:
		m := make(map[string]interface{}, len(x))
		for _, e := range x {
			m[e.Key] = plain(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]interface{}, len(x))
		for k, e := range x {
			m[k] = plain(e)
		}
		return m
	case bson.A:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	default:
		return Scalar(x)
	}
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	err := s.client.Disconnect(ctx)
	s.client, s.coll = nil, nil
	return err
}
