package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

// anchorRepository is the SQL implementation of [AnchorRepository].
type anchorRepository struct {
	*DB
}

// NewAnchorRepository returns an [AnchorRepository] on db.
func NewAnchorRepository(db *DB) AnchorRepository {
	return &anchorRepository{DB: db}
}

// Get returns the stored anchor or nil when the pair never synced.
func (a *anchorRepository) Get(ctx context.Context, peer string, dataset models.Dataset) (*time.Time, error) {
	query, args, err := buildGetAnchorQuery(a.builder, peer, dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var ms int64
	err = a.DB.QueryRowContext(ctx, query, args...).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "anchorRepository.Get").
			Str("peer", peer).
			Str("dataset", dataset.String()).
			Msg("failed to read anchor")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	anchor := fromUnixMilli(ms)
	return &anchor, nil
}

func (a *anchorRepository) Put(ctx context.Context, peer string, dataset models.Dataset, anchor time.Time) error {
	query, args, err := buildPutAnchorQuery(a.builder, peer, dataset, anchor)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return a.WithRetry(ctx, func(ctx context.Context) error {
		if _, err := a.DB.ExecContext(ctx, query, args...); err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "anchorRepository.Put").
				Str("peer", peer).
				Str("dataset", dataset.String()).
				Msg("failed to store anchor")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
}

func (a *anchorRepository) Reset(ctx context.Context) error {
	query, args, err := buildResetAnchorsQuery(a.builder)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := a.DB.ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "anchorRepository.Reset").Msg("failed to reset anchors")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
