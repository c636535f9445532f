package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

// Storages groups the repositories of the PIM database into a single value
// that can be passed around the service layer.
type Storages struct {
	DB         *DB
	Categories CategoryRepository
	Passwords  PasswordRepository
	Anchors    AnchorRepository
}

// NewStorages connects to the database named in cfg, runs pending
// migrations and wires the repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Str("func", "NewStorages").Msg("creating new storages...")

	db, err := NewConnect(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return NewStoragesFromDB(db), nil
}

// NewStoragesFromDB wires the repositories on an already opened database.
func NewStoragesFromDB(db *DB) *Storages {
	return &Storages{
		DB:         db,
		Categories: NewCategoryRepository(db, db.DB),
		Passwords:  NewPasswordRepository(db),
		Anchors:    NewAnchorRepository(db),
	}
}

// Records returns the record repository of dataset executing on runner.
func (s *Storages) Records(runner Runner, dataset models.Dataset) RecordRepository {
	return NewRecordRepository(s.DB, runner, dataset)
}

// Close releases the database handle.
func (s *Storages) Close() error {
	return s.DB.Close()
}
