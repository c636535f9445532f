package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-pim-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RecordRepository reads and writes the records of one dataset. It is bound
// either to the database or to an open transaction, see [Storages.Records].
//
// Delta queries take an open interval (since, until) of change stamps.
type RecordRepository interface {
	// Added lists live records created inside the interval.
	Added(ctx context.Context, since, until time.Time) ([]string, error)
	// Removed lists records removed inside the interval that existed before it.
	Removed(ctx context.Context, since, until time.Time) ([]string, error)
	// Modified lists governing records whose row, or one of whose exception
	// rows, changed inside the interval. Exception rows are never listed.
	Modified(ctx context.Context, since, until time.Time) ([]string, error)
	// All lists every live record, exception rows excluded.
	All(ctx context.Context) ([]string, error)

	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (models.Record, error)
	Add(ctx context.Context, record models.Record, stamp time.Time) error
	Update(ctx context.Context, record models.Record, stamp time.Time) error
	Remove(ctx context.Context, id string, stamp time.Time) error

	// RestoreExceptions returns every occurrence of a recurring record to its
	// default: exception markers and replacement rows are deleted.
	RestoreExceptions(ctx context.Context, id string, stamp time.Time) error
	// ReplaceCategory rewrites every reference to placeholder with id.
	ReplaceCategory(ctx context.Context, placeholder, id string) (int64, error)
}

// CategoryRepository resolves category labels to ids and back.
type CategoryRepository interface {
	IDForLabel(ctx context.Context, label string) (string, bool, error)
	LabelForID(ctx context.Context, id string) (string, bool, error)
	// Create returns the id of label, creating the category when needed.
	Create(ctx context.Context, label string) (string, error)
	List(ctx context.Context) ([]models.Category, error)
}

// PasswordRepository persists the ordered list of accepted peer credentials.
type PasswordRepository interface {
	List(ctx context.Context) ([]models.StoredCredential, error)
	// Save replaces the whole list, preserving order.
	Save(ctx context.Context, credentials []models.StoredCredential) error
}

// AnchorRepository persists the last sync anchor per peer and dataset.
type AnchorRepository interface {
	Get(ctx context.Context, peer string, dataset models.Dataset) (*time.Time, error)
	Put(ctx context.Context, peer string, dataset models.Dataset, anchor time.Time) error
	// Reset forgets every anchor so the next session of any peer slow syncs.
	Reset(ctx context.Context) error
}
