package storage

import (
	"fmt"
	"log/slog"

	"github.com/MuhammadRizki8/house-property-data-scraper/internal/config"
	"github.com/MuhammadRizki8/house-property-data-scraper/internal/types"
)

// Storage is the interface for all record sinks. Records are written one at
// a time so a crash mid-run loses at most the record in flight.
type Storage interface {
	// Store persists a single record.
	Store(rec *types.PropertyRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New builds the record sink configured in cfg.Storage. The CSV file under
// the session directory is always written; mongodb and postgres add a
// second backend behind a fan-out.
func New(cfg *config.Config, csvPath string, resume bool, logger *slog.Logger) (Storage, error) {
	csvSink, err := NewCSVStorage(csvPath, resume, logger)
	if err != nil {
		return nil, err
	}

	switch cfg.Storage.Type {
	case "", "csv":
		return csvSink, nil
	case "mongodb":
		mongoSink, err := NewMongoStorage(cfg.Storage.MongoURI, cfg.Storage.MongoDatabase, cfg.Storage.MongoCollection, logger)
		if err != nil {
			csvSink.Close()
			return nil, err
		}
		return NewMultiStorage([]Storage{csvSink, mongoSink}, logger), nil
	case "postgres":
		pgSink, err := NewPostgresStorage(cfg.Storage.PostgresDSN, cfg.Storage.PostgresTable, logger)
		if err != nil {
			csvSink.Close()
			return nil, err
		}
		return NewMultiStorage([]Storage{csvSink, pgSink}, logger), nil
	default:
		csvSink.Close()
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
