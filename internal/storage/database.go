package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// --- MongoDB ---

// MongoStorage upserts records into a MongoDB collection, keyed by the
// property URL so re-running a session never duplicates documents.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(rec *types.PropertyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter := bson.M{"url": rec.URL}
	update := bson.M{"$set": rec.ToMap()}
	_, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return &types.StorageError{Backend: "mongodb", Err: err}
	}

	s.count++
	s.logger.Debug("record stored in mongodb", "url", rec.URL, "total", s.count)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_records", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// --- PostgreSQL ---

// PostgresStorage upserts records into a PostgreSQL table via pgx,
// conflict-keyed on the property URL.
type PostgresStorage struct {
	pool   *pgxpool.Pool
	table  string
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewPostgresStorage connects to PostgreSQL and ensures the target table
// exists.
func NewPostgresStorage(dsn, table string, logger *slog.Logger) (*PostgresStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStorage{
		pool:   pool,
		table:  table,
		logger: logger.With("component", "postgres_storage"),
	}
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		url TEXT PRIMARY KEY,
		title TEXT,
		location TEXT,
		price TEXT,
		price_numeric DOUBLE PRECISION,
		original_price TEXT,
		original_price_numeric DOUBLE PRECISION,
		savings TEXT,
		property_type TEXT,
		land_area TEXT,
		building_area TEXT,
		bedrooms TEXT,
		bathrooms TEXT,
		floors TEXT,
		certificate TEXT,
		electricity TEXT,
		furnishing TEXT,
		updated_date TEXT,
		posted_by TEXT,
		installment_info TEXT,
		description TEXT,
		specifications TEXT,
		scraped_at TIMESTAMPTZ
	)`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres create table: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Name() string { return "postgres" }

func (s *PostgresStorage) Store(rec *types.PropertyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	query := fmt.Sprintf(`INSERT INTO %s (
		url, title, location, price, price_numeric,
		original_price, original_price_numeric, savings, property_type,
		land_area, building_area, bedrooms, bathrooms, floors,
		certificate, electricity, furnishing, updated_date, posted_by,
		installment_info, description, specifications, scraped_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
	ON CONFLICT (url) DO UPDATE SET
		title = EXCLUDED.title,
		location = EXCLUDED.location,
		price = EXCLUDED.price,
		price_numeric = EXCLUDED.price_numeric,
		original_price = EXCLUDED.original_price,
		original_price_numeric = EXCLUDED.original_price_numeric,
		savings = EXCLUDED.savings,
		property_type = EXCLUDED.property_type,
		land_area = EXCLUDED.land_area,
		building_area = EXCLUDED.building_area,
		bedrooms = EXCLUDED.bedrooms,
		bathrooms = EXCLUDED.bathrooms,
		floors = EXCLUDED.floors,
		certificate = EXCLUDED.certificate,
		electricity = EXCLUDED.electricity,
		furnishing = EXCLUDED.furnishing,
		updated_date = EXCLUDED.updated_date,
		posted_by = EXCLUDED.posted_by,
		installment_info = EXCLUDED.installment_info,
		description = EXCLUDED.description,
		specifications = EXCLUDED.specifications,
		scraped_at = EXCLUDED.scraped_at`, s.table)

	_, err := s.pool.Exec(ctx, query,
		rec.URL, rec.Title, rec.Location, rec.Price, rec.PriceNumeric,
		rec.OriginalPrice, rec.OriginalPriceNumeric, rec.Savings, rec.PropertyType,
		rec.LandArea, rec.BuildingArea, rec.Bedrooms, rec.Bathrooms, rec.Floors,
		rec.Certificate, rec.Electricity, rec.Furnishing, rec.UpdatedDate, rec.PostedBy,
		rec.InstallmentInfo, rec.Description, rec.SpecsText(), rec.ScrapedAt,
	)
	if err != nil {
		return &types.StorageError{Backend: "postgres", Err: err}
	}

	s.count++
	s.logger.Debug("record stored in postgres", "url", rec.URL, "total", s.count)
	return nil
}

func (s *PostgresStorage) Close() error {
	s.logger.Info("postgres storage closing", "total_records", s.count)
	s.pool.Close()
	return nil
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes records to multiple backends. A failing backend is
// logged and does not stop the others.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Store(rec *types.PropertyRecord) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(rec); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
