package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-pim-sync/models"
)

const (
	recordsTable          = "records"
	recordExceptionsTable = "record_exceptions"
	recordCategoriesTable = "record_categories"
	categoriesTable       = "categories"
	credentialsTable      = "peer_credentials"
	anchorsTable          = "sync_anchors"
)

var recordColumns = []string{"id", "parent_id", "data", "custom_fields", "created_at", "modified_at"}

// liveGoverning matches the visible, non-removed records of a dataset.
func liveGoverning(dataset models.Dataset) sq.Eq {
	return sq.Eq{"dataset": string(dataset), "parent_id": nil, "removed_at": nil}
}

func buildAddedQuery(sb sq.StatementBuilderType, dataset models.Dataset, since, until time.Time) (string, []any, error) {
	return sb.Select("id").
		From(recordsTable).
		Where(liveGoverning(dataset)).
		Where(sq.Gt{"created_at": unixMilli(since)}).
		Where(sq.Lt{"created_at": unixMilli(until)}).
		OrderBy("created_at", "id").
		ToSql()
}

func buildRemovedQuery(sb sq.StatementBuilderType, dataset models.Dataset, since, until time.Time) (string, []any, error) {
	return sb.Select("id").
		From(recordsTable).
		Where(sq.Eq{"dataset": string(dataset), "parent_id": nil}).
		Where(sq.Gt{"removed_at": unixMilli(since)}).
		Where(sq.Lt{"removed_at": unixMilli(until)}).
		Where(sq.LtOrEq{"created_at": unixMilli(since)}).
		OrderBy("removed_at", "id").
		ToSql()
}

// buildModifiedQuery folds exception rows onto their governing record so a
// record is listed once no matter how many of its rows changed.
func buildModifiedQuery(sb sq.StatementBuilderType, dataset models.Dataset, since, until time.Time) (string, []any, error) {
	return sb.Select("COALESCE(parent_id, id) AS governing_id").
		Distinct().
		From(recordsTable).
		Where(sq.Eq{"dataset": string(dataset), "removed_at": nil}).
		Where(sq.Gt{"modified_at": unixMilli(since)}).
		Where(sq.Lt{"modified_at": unixMilli(until)}).
		Where(sq.LtOrEq{"created_at": unixMilli(since)}).
		OrderBy("governing_id").
		ToSql()
}

func buildAllQuery(sb sq.StatementBuilderType, dataset models.Dataset) (string, []any, error) {
	return sb.Select("id").
		From(recordsTable).
		Where(liveGoverning(dataset)).
		OrderBy("created_at", "id").
		ToSql()
}

func buildExistsQuery(sb sq.StatementBuilderType, dataset models.Dataset, id string) (string, []any, error) {
	return sb.Select("COUNT(*)").
		From(recordsTable).
		Where(liveGoverning(dataset)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

// buildGetRecordQuery selects one live row; exception rows are reachable
// only when hidden is set.
func buildGetRecordQuery(sb sq.StatementBuilderType, dataset models.Dataset, id string, hidden bool) (string, []any, error) {
	q := sb.Select(recordColumns...).
		From(recordsTable).
		Where(sq.Eq{"id": id, "dataset": string(dataset), "removed_at": nil})
	if !hidden {
		q = q.Where(sq.Eq{"parent_id": nil})
	}
	return q.ToSql()
}

func buildInsertRecordQuery(sb sq.StatementBuilderType, dataset models.Dataset, id string, parentID *string, data, customFields string, stamp time.Time) (string, []any, error) {
	ms := unixMilli(stamp)
	return sb.Insert(recordsTable).
		Columns("id", "dataset", "parent_id", "data", "custom_fields", "created_at", "modified_at").
		Values(id, string(dataset), parentID, data, customFields, ms, ms).
		ToSql()
}

func buildPurgeTombstoneQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Delete(recordsTable).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"removed_at": nil}).
		ToSql()
}

func buildUpdateRecordQuery(sb sq.StatementBuilderType, dataset models.Dataset, id, data, customFields string, stamp time.Time) (string, []any, error) {
	return sb.Update(recordsTable).
		Set("data", data).
		Set("custom_fields", customFields).
		Set("modified_at", unixMilli(stamp)).
		Where(liveGoverning(dataset)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildTouchRecordQuery(sb sq.StatementBuilderType, dataset models.Dataset, id string, stamp time.Time) (string, []any, error) {
	return sb.Update(recordsTable).
		Set("modified_at", unixMilli(stamp)).
		Where(liveGoverning(dataset)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildRemoveRecordQuery(sb sq.StatementBuilderType, dataset models.Dataset, id string, stamp time.Time) (string, []any, error) {
	ms := unixMilli(stamp)
	return sb.Update(recordsTable).
		Set("removed_at", ms).
		Set("modified_at", ms).
		Where(liveGoverning(dataset)).
		Where(sq.Eq{"id": id}).
		ToSql()
}

func buildSelectExceptionsQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Select("original_date", "replacement_id").
		From(recordExceptionsTable).
		Where(sq.Eq{"record_id": id}).
		OrderBy("original_date").
		ToSql()
}

func buildInsertExceptionQuery(sb sq.StatementBuilderType, id string, originalDate time.Time, replacementID *string) (string, []any, error) {
	return sb.Insert(recordExceptionsTable).
		Columns("record_id", "original_date", "replacement_id").
		Values(id, unixMilli(originalDate), replacementID).
		ToSql()
}

func buildDeleteExceptionsQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Delete(recordExceptionsTable).
		Where(sq.Eq{"record_id": id}).
		ToSql()
}

func buildSelectReplacementIDsQuery(sb sq.StatementBuilderType, parentID string) (string, []any, error) {
	return sb.Select("id").
		From(recordsTable).
		Where(sq.Eq{"parent_id": parentID}).
		ToSql()
}

func buildDeleteReplacementsQuery(sb sq.StatementBuilderType, parentID string) (string, []any, error) {
	return sb.Delete(recordsTable).
		Where(sq.Eq{"parent_id": parentID}).
		ToSql()
}

func buildSelectRecordCategoriesQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Select("category_id").
		From(recordCategoriesTable).
		Where(sq.Eq{"record_id": id}).
		OrderBy("position").
		ToSql()
}

func buildInsertRecordCategoriesQuery(sb sq.StatementBuilderType, dataset models.Dataset, id string, categories []string) (string, []any, error) {
	q := sb.Insert(recordCategoriesTable).Columns("record_id", "dataset", "category_id", "position")
	for i, category := range categories {
		q = q.Values(id, string(dataset), category, i)
	}
	return q.ToSql()
}

func buildDeleteRecordCategoriesQuery(sb sq.StatementBuilderType, ids ...string) (string, []any, error) {
	return sb.Delete(recordCategoriesTable).
		Where(sq.Eq{"record_id": ids}).
		ToSql()
}

func buildReplaceCategoryQuery(sb sq.StatementBuilderType, dataset models.Dataset, placeholder, id string) (string, []any, error) {
	return sb.Update(recordCategoriesTable).
		Set("category_id", id).
		Where(sq.Eq{"dataset": string(dataset), "category_id": placeholder}).
		ToSql()
}

func buildCategoryByLabelQuery(sb sq.StatementBuilderType, label string) (string, []any, error) {
	return sb.Select("id").From(categoriesTable).Where(sq.Eq{"label": label}).ToSql()
}

func buildCategoryByIDQuery(sb sq.StatementBuilderType, id string) (string, []any, error) {
	return sb.Select("label").From(categoriesTable).Where(sq.Eq{"id": id}).ToSql()
}

func buildInsertCategoryQuery(sb sq.StatementBuilderType, id, label string, stamp time.Time) (string, []any, error) {
	return sb.Insert(categoriesTable).
		Columns("id", "label", "created_at").
		Values(id, label, unixMilli(stamp)).
		ToSql()
}

func buildListCategoriesQuery(sb sq.StatementBuilderType) (string, []any, error) {
	return sb.Select("id", "label").From(categoriesTable).OrderBy("label").ToSql()
}

func buildListCredentialsQuery(sb sq.StatementBuilderType) (string, []any, error) {
	return sb.Select("salt", "hash", "created_at").From(credentialsTable).OrderBy("position").ToSql()
}

func buildDeleteCredentialsQuery(sb sq.StatementBuilderType) (string, []any, error) {
	return sb.Delete(credentialsTable).ToSql()
}

func buildInsertCredentialsQuery(sb sq.StatementBuilderType, rows [][]any) (string, []any, error) {
	q := sb.Insert(credentialsTable).Columns("position", "salt", "hash", "created_at")
	for _, row := range rows {
		q = q.Values(row...)
	}
	return q.ToSql()
}

func buildGetAnchorQuery(sb sq.StatementBuilderType, peer string, dataset models.Dataset) (string, []any, error) {
	return sb.Select("anchor").
		From(anchorsTable).
		Where(sq.Eq{"peer": peer, "dataset": string(dataset)}).
		ToSql()
}

func buildPutAnchorQuery(sb sq.StatementBuilderType, peer string, dataset models.Dataset, anchor time.Time) (string, []any, error) {
	return sb.Insert(anchorsTable).
		Columns("peer", "dataset", "anchor").
		Values(peer, string(dataset), unixMilli(anchor)).
		Suffix("ON CONFLICT (peer, dataset) DO UPDATE SET anchor = excluded.anchor").
		ToSql()
}

func buildResetAnchorsQuery(sb sq.StatementBuilderType) (string, []any, error) {
	return sb.Delete(anchorsTable).ToSql()
}
