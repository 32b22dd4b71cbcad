package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storesight/internal/config"
	"storesight/internal/types"
)

// MongoStorage writes products and reviews to MongoDB collections.
type MongoStorage struct {
	client   *mongo.Client
	products *mongo.Collection
	reviews  *mongo.Collection
	logger   *slog.Logger
}

// NewMongoStorage connects to MongoDB and verifies the connection
// with a ping before returning.
func NewMongoStorage(cfg config.StorageConfig, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("connect: %w", err)}
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("ping: %w", err)}
	}

	db := client.Database(cfg.Database)
	return &MongoStorage{
		client:   client,
		products: db.Collection(cfg.ProductsCollection),
		reviews:  db.Collection(cfg.ReviewsCollection),
		logger:   logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) SaveProducts(ctx context.Context, sourceURL string, products []types.ProductRecord) error {
	if len(products) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]any, len(products))
	for i, p := range products {
		doc := map[string]any{
			"title":        p.Title,
			"price":        p.Price,
			"availability": p.Availability,
			"rating":       p.Rating,
			"reviews":      p.Reviews,
			"source_url":   sourceURL,
			"scraped_at":   now,
		}
		// Passthrough fields ride along without widening the schema.
		for k, v := range p.Extra {
			if _, taken := doc[k]; !taken {
				doc[k] = v
			}
		}
		docs[i] = doc
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.products.InsertMany(ctx, docs); err != nil {
		return &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("insert products: %w", err)}
	}

	s.logger.Debug("products stored", "count", len(products), "source_url", sourceURL)
	return nil
}

func (s *MongoStorage) SaveReviews(ctx context.Context, productName string, reviews []string) error {
	if len(reviews) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]any, len(reviews))
	for i, text := range reviews {
		docs[i] = map[string]any{
			"product":    productName,
			"text":       text,
			"scraped_at": now,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.reviews.InsertMany(ctx, docs); err != nil {
		return &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("insert reviews: %w", err)}
	}

	s.logger.Debug("reviews stored", "count", len(reviews), "product", productName)
	return nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
