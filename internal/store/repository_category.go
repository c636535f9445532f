package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

// categoryRepository is the SQL implementation of [CategoryRepository].
// Category ids are UUIDv7 strings.
type categoryRepository struct {
	*DB
	runner Runner
	now    func() time.Time
}

// NewCategoryRepository returns a [CategoryRepository] executing on runner.
func NewCategoryRepository(db *DB, runner Runner) CategoryRepository {
	return &categoryRepository{
		DB:     db,
		runner: runner,
		now:    time.Now,
	}
}

func (c *categoryRepository) IDForLabel(ctx context.Context, label string) (string, bool, error) {
	query, args, err := buildCategoryByLabelQuery(c.builder, label)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return c.lookup(ctx, "categoryRepository.IDForLabel", query, args)
}

func (c *categoryRepository) LabelForID(ctx context.Context, id string) (string, bool, error) {
	query, args, err := buildCategoryByIDQuery(c.builder, id)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return c.lookup(ctx, "categoryRepository.LabelForID", query, args)
}

func (c *categoryRepository) Create(ctx context.Context, label string) (string, error) {
	log := logger.FromContext(ctx)

	id, found, err := c.IDForLabel(ctx, label)
	if err != nil {
		return "", err
	}
	if found {
		return id, nil
	}

	id = uuid.Must(uuid.NewV7()).String()
	query, args, err := buildInsertCategoryQuery(c.builder, id, label, c.now())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := c.runner.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "categoryRepository.Create").
			Str("label", label).
			Msg("failed to insert category")
		return "", fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().
		Str("func", "categoryRepository.Create").
		Str("label", label).
		Str("category_id", id).
		Msg("category created")
	return id, nil
}

func (c *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query, args, err := buildListCategoriesQuery(c.builder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.runner.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "categoryRepository.List").Msg("failed to list categories")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Label); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return categories, nil
}

func (c *categoryRepository) lookup(ctx context.Context, fn, query string, args []any) (string, bool, error) {
	var value string
	err := c.runner.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", fn).Msg("failed to look up category")
		return "", false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return value, true, nil
}
