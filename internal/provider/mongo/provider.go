// Package mongo implements the page-fetch primitive against a MongoDB
// database: one collection per resource, equality filters, single-field
// sort and skip/limit pagination, with CountDocuments supplying totals.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"refetch/pkg/model"
)

// Config holds the MongoDB provider settings.
type Config struct {
	URI      string        `yaml:"uri"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the default MongoDB provider settings.
func DefaultConfig() Config {
	return Config{
		URI:      "mongodb://localhost:27017",
		Database: "refetch",
		Timeout:  10 * time.Second,
	}
}

// Provider fetches pages from MongoDB collections.
type Provider struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and returns a Provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	slog.Info("Connected to MongoDB", "database", cfg.Database)
	return &Provider{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Close disconnects the underlying client.
func (p *Provider) Close(ctx context.Context) error {
	return p.client.Disconnect(ctx)
}

// FetchPage implements provider.PageFetcher.
func (p *Provider) FetchPage(ctx context.Context, req model.PageRequest) (*model.PageResult, error) {
	if req.Pagination.Page < 1 || req.Pagination.PerPage < 1 {
		return nil, &model.RequestError{Message: fmt.Sprintf("invalid pagination: page=%d perPage=%d", req.Pagination.Page, req.Pagination.PerPage), Status: 400}
	}

	collection := p.db.Collection(req.Resource)
	filter := makeFilterBSON(req)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, wrapMongoError("count failed", err)
	}

	findOptions := options.Find().
		SetSkip(int64(req.Pagination.Page-1) * int64(req.Pagination.PerPage)).
		SetLimit(int64(req.Pagination.PerPage))

	if req.Sort.Field != "" {
		dir := 1
		if strings.EqualFold(req.Sort.Order, model.OrderDesc) {
			dir = -1
		}
		findOptions.SetSort(bson.D{{Key: mapField(req.Sort.Field), Value: dir}})
	}

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, wrapMongoError("find failed", err)
	}
	defer cursor.Close(ctx)

	var records []model.Record
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, wrapMongoError("decode failed", err)
		}
		records = append(records, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapMongoError("cursor failed", err)
	}

	return &model.PageResult{
		Records: records,
		Total:   model.Int64(total),
		Meta:    req.Meta,
	}, nil
}

// makeFilterBSON converts the filter map plus the forced owner linkage
// into an equality match document.
func makeFilterBSON(req model.PageRequest) bson.M {
	filter := bson.M{}
	for field, value := range req.Filter {
		filter[mapField(field)] = value
	}
	if req.TargetField != "" {
		filter[mapField(req.TargetField)] = req.OwnerID
	}
	return filter
}

// mapField maps the logical "id" field to the Mongo primary key.
func mapField(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

// fromBSON converts a raw document to a Record, restoring the logical
// "id" field.
func fromBSON(raw bson.M) model.Record {
	rec := make(model.Record, len(raw))
	for k, v := range raw {
		if k == "_id" {
			rec["id"] = model.StringID(v)
			continue
		}
		rec[k] = v
	}
	return rec
}

func wrapMongoError(msg string, err error) error {
	if wrapped := model.WrapError(err); wrapped == model.ErrCanceled {
		return wrapped
	}
	return &model.RequestError{Message: msg, Status: 500, Err: err}
}
