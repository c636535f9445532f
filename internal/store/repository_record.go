package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

// recordRepository is the SQL implementation of [RecordRepository] for one
// dataset. It runs every statement on runner, which is either the database
// handle or an open transaction.
type recordRepository struct {
	*DB
	runner  Runner
	dataset models.Dataset
}

// NewRecordRepository returns a [RecordRepository] for dataset executing on
// runner. Pass db itself to read committed state, or a *sql.Tx to work inside
// a transaction.
func NewRecordRepository(db *DB, runner Runner, dataset models.Dataset) RecordRepository {
	return &recordRepository{
		DB:      db,
		runner:  runner,
		dataset: dataset,
	}
}

// recordBody is the stored form of the kind specific part of a record.
type recordBody struct {
	Contact     *models.Contact     `json:"contact,omitempty"`
	Task        *models.Task        `json:"task,omitempty"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
}

func (r *recordRepository) Added(ctx context.Context, since, until time.Time) ([]string, error) {
	query, args, err := buildAddedQuery(r.builder, r.dataset, since, until)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.selectIDs(ctx, "recordRepository.Added", query, args)
}

func (r *recordRepository) Removed(ctx context.Context, since, until time.Time) ([]string, error) {
	query, args, err := buildRemovedQuery(r.builder, r.dataset, since, until)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.selectIDs(ctx, "recordRepository.Removed", query, args)
}

func (r *recordRepository) Modified(ctx context.Context, since, until time.Time) ([]string, error) {
	query, args, err := buildModifiedQuery(r.builder, r.dataset, since, until)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.selectIDs(ctx, "recordRepository.Modified", query, args)
}

func (r *recordRepository) All(ctx context.Context) ([]string, error) {
	query, args, err := buildAllQuery(r.builder, r.dataset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.selectIDs(ctx, "recordRepository.All", query, args)
}

func (r *recordRepository) Exists(ctx context.Context, id string) (bool, error) {
	query, args, err := buildExistsQuery(r.builder, r.dataset, id)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err := r.runner.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "recordRepository.Exists").
			Str("record_id", id).
			Msg("failed to check record existence")
		return false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	return count > 0, nil
}

// Get loads a live governing record with its categories, custom fields and,
// for appointments, its exception list.
func (r *recordRepository) Get(ctx context.Context, id string) (models.Record, error) {
	record, err := r.getRow(ctx, id, false)
	if err != nil {
		return models.Record{}, err
	}

	if record.Appointment != nil {
		exceptions, err := r.getExceptions(ctx, id)
		if err != nil {
			return models.Record{}, err
		}
		if len(exceptions) > 0 {
			record.Appointment.Exceptions = exceptions
		}
	}

	return record, nil
}

// Add inserts record under record.ID. A tombstone left by an earlier removal
// of the same id is purged first.
func (r *recordRepository) Add(ctx context.Context, record models.Record, stamp time.Time) error {
	log := logger.FromContext(ctx)

	if !record.HasLocalID() {
		return fmt.Errorf("%w: empty record id", ErrExecutingStatement)
	}

	exists, err := r.Exists(ctx, record.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrRecordExists, record.ID)
	}

	query, args, err := buildPurgeTombstoneQuery(r.builder, record.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if err := r.exec(ctx, "recordRepository.Add", query, args); err != nil {
		return err
	}

	if err := r.insertRow(ctx, record, nil, stamp); err != nil {
		return err
	}

	if err := r.insertExceptions(ctx, record, stamp); err != nil {
		return err
	}

	log.Debug().
		Str("func", "recordRepository.Add").
		Str("dataset", r.dataset.String()).
		Str("record_id", record.ID).
		Msg("record added")
	return nil
}

// Update overwrites a live record. For appointments the stored exception
// list is replaced by record's.
func (r *recordRepository) Update(ctx context.Context, record models.Record, stamp time.Time) error {
	data, customFields, err := encodeBody(record)
	if err != nil {
		return err
	}

	query, args, err := buildUpdateRecordQuery(r.builder, r.dataset, record.ID, data, customFields, stamp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	affected, err := r.execAffected(ctx, "recordRepository.Update", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, record.ID)
	}

	if err := r.replaceCategories(ctx, record.ID, record.Categories); err != nil {
		return err
	}

	if record.Kind == models.KindAppointment {
		if err := r.deleteExceptions(ctx, record.ID); err != nil {
			return err
		}
		if err := r.insertExceptions(ctx, record, stamp); err != nil {
			return err
		}
	}

	return nil
}

// Remove marks a live record removed at stamp. Its exception rows are
// deleted.
func (r *recordRepository) Remove(ctx context.Context, id string, stamp time.Time) error {
	query, args, err := buildRemoveRecordQuery(r.builder, r.dataset, id, stamp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	affected, err := r.execAffected(ctx, "recordRepository.Remove", query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}

	return r.deleteExceptions(ctx, id)
}

func (r *recordRepository) RestoreExceptions(ctx context.Context, id string, stamp time.Time) error {
	if err := r.deleteExceptions(ctx, id); err != nil {
		return err
	}

	query, args, err := buildTouchRecordQuery(r.builder, r.dataset, id, stamp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.exec(ctx, "recordRepository.RestoreExceptions", query, args)
}

func (r *recordRepository) ReplaceCategory(ctx context.Context, placeholder, id string) (int64, error) {
	query, args, err := buildReplaceCategoryQuery(r.builder, r.dataset, placeholder, id)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.execAffected(ctx, "recordRepository.ReplaceCategory", query, args)
}

// ── rows ──────────────────────────────────────────────────────────────────────

func (r *recordRepository) getRow(ctx context.Context, id string, hidden bool) (models.Record, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetRecordQuery(r.builder, r.dataset, id, hidden)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		recordID     string
		parentID     sql.NullString
		data         string
		customFields string
		createdAt    int64
		modifiedAt   int64
	)
	err = r.runner.QueryRowContext(ctx, query, args...).
		Scan(&recordID, &parentID, &data, &customFields, &createdAt, &modifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.getRow").
			Str("record_id", id).
			Msg("failed to scan record row")
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	record, err := decodeBody(r.dataset.Kind(), data, customFields)
	if err != nil {
		return models.Record{}, err
	}
	record.ID = recordID

	categories, err := r.getCategories(ctx, recordID)
	if err != nil {
		return models.Record{}, err
	}
	if len(categories) > 0 {
		record.Categories = categories
	}

	return record, nil
}

func (r *recordRepository) insertRow(ctx context.Context, record models.Record, parentID *string, stamp time.Time) error {
	data, customFields, err := encodeBody(record)
	if err != nil {
		return err
	}

	query, args, err := buildInsertRecordQuery(r.builder, r.dataset, record.ID, parentID, data, customFields, stamp)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if err := r.exec(ctx, "recordRepository.insertRow", query, args); err != nil {
		return err
	}

	return r.insertCategories(ctx, record.ID, record.Categories)
}

// ── exceptions ────────────────────────────────────────────────────────────────

func (r *recordRepository) getExceptions(ctx context.Context, id string) ([]models.Exception, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectExceptionsQuery(r.builder, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.runner.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "recordRepository.getExceptions").Str("record_id", id).Msg("failed to query exceptions")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	type exceptionRow struct {
		originalDate  int64
		replacementID sql.NullString
	}
	var stored []exceptionRow
	for rows.Next() {
		var row exceptionRow
		if err := rows.Scan(&row.originalDate, &row.replacementID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		stored = append(stored, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	rows.Close()

	exceptions := make([]models.Exception, 0, len(stored))
	for _, row := range stored {
		exception := models.Exception{OriginalDate: fromUnixMilli(row.originalDate)}
		if row.replacementID.Valid {
			replacement, err := r.getRow(ctx, row.replacementID.String, true)
			if err != nil {
				return nil, err
			}
			exception.Replacement = &replacement
		}
		exceptions = append(exceptions, exception)
	}

	return exceptions, nil
}

func (r *recordRepository) insertExceptions(ctx context.Context, record models.Record, stamp time.Time) error {
	if record.Appointment == nil {
		return nil
	}

	parentID := record.ID
	for _, exception := range record.Appointment.Exceptions {
		var replacementID *string
		if exception.Replacement != nil {
			replacement := *exception.Replacement
			replacement.Kind = models.KindAppointment
			if replacement.ID == "" {
				replacement.ID = uuid.Must(uuid.NewV7()).String()
			}
			if replacement.Appointment != nil {
				appointment := *replacement.Appointment
				appointment.Repeat = nil
				appointment.Exceptions = nil
				replacement.Appointment = &appointment
			}
			if err := r.insertRow(ctx, replacement, &parentID, stamp); err != nil {
				return err
			}
			replacementID = &replacement.ID
		}

		query, args, err := buildInsertExceptionQuery(r.builder, parentID, exception.OriginalDate, replacementID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if err := r.exec(ctx, "recordRepository.insertExceptions", query, args); err != nil {
			return err
		}
	}

	return nil
}

// deleteExceptions drops the exception markers, the replacement rows and
// their category links of a governing record.
func (r *recordRepository) deleteExceptions(ctx context.Context, id string) error {
	query, args, err := buildSelectReplacementIDsQuery(r.builder, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	replacementIDs, err := r.selectIDs(ctx, "recordRepository.deleteExceptions", query, args)
	if err != nil {
		return err
	}

	if len(replacementIDs) > 0 {
		query, args, err = buildDeleteRecordCategoriesQuery(r.builder, replacementIDs...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if err := r.exec(ctx, "recordRepository.deleteExceptions", query, args); err != nil {
			return err
		}

		query, args, err = buildDeleteReplacementsQuery(r.builder, id)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if err := r.exec(ctx, "recordRepository.deleteExceptions", query, args); err != nil {
			return err
		}
	}

	query, args, err = buildDeleteExceptionsQuery(r.builder, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.exec(ctx, "recordRepository.deleteExceptions", query, args)
}

// ── categories ────────────────────────────────────────────────────────────────

func (r *recordRepository) getCategories(ctx context.Context, id string) ([]string, error) {
	query, args, err := buildSelectRecordCategoriesQuery(r.builder, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.selectIDs(ctx, "recordRepository.getCategories", query, args)
}

func (r *recordRepository) insertCategories(ctx context.Context, id string, categories []string) error {
	categories = dedupe(categories)
	if len(categories) == 0 {
		return nil
	}

	query, args, err := buildInsertRecordCategoriesQuery(r.builder, r.dataset, id, categories)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return r.exec(ctx, "recordRepository.insertCategories", query, args)
}

func (r *recordRepository) replaceCategories(ctx context.Context, id string, categories []string) error {
	query, args, err := buildDeleteRecordCategoriesQuery(r.builder, id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if err := r.exec(ctx, "recordRepository.replaceCategories", query, args); err != nil {
		return err
	}
	return r.insertCategories(ctx, id, categories)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func (r *recordRepository) selectIDs(ctx context.Context, fn, query string, args []any) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.runner.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", fn).Str("dataset", r.dataset.String()).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]string, 0, 16)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Err(err).Str("func", fn).Msg("failed to scan id row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", fn).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

func (r *recordRepository) exec(ctx context.Context, fn, query string, args []any) error {
	_, err := r.execAffected(ctx, fn, query, args)
	return err
}

func (r *recordRepository) execAffected(ctx context.Context, fn, query string, args []any) (int64, error) {
	result, err := r.runner.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", fn).
			Str("dataset", r.dataset.String()).
			Msg("failed to execute statement")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return affected, nil
}

func encodeBody(record models.Record) (string, string, error) {
	body := recordBody{Contact: record.Contact, Task: record.Task}
	if record.Appointment != nil {
		appointment := *record.Appointment
		appointment.Exceptions = nil
		body.Appointment = &appointment
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	customFields := record.CustomFields
	if customFields == nil {
		customFields = map[string]string{}
	}
	fields, err := json.Marshal(customFields)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	return string(data), string(fields), nil
}

func decodeBody(kind models.Kind, data, customFields string) (models.Record, error) {
	var body recordBody
	if err := json.Unmarshal([]byte(data), &body); err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
	}

	record := models.Record{
		Kind:        kind,
		Contact:     body.Contact,
		Task:        body.Task,
		Appointment: body.Appointment,
	}
	switch kind {
	case models.KindContact:
		if record.Contact == nil {
			record.Contact = &models.Contact{}
		}
	case models.KindTask:
		if record.Task == nil {
			record.Task = &models.Task{}
		}
	case models.KindAppointment:
		if record.Appointment == nil {
			record.Appointment = &models.Appointment{}
		}
	}

	if customFields != "" {
		if err := json.Unmarshal([]byte(customFields), &record.CustomFields); err != nil {
			return models.Record{}, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
		}
	}
	if len(record.CustomFields) == 0 {
		record.CustomFields = nil
	}

	return record, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
