package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/models"
)

// passwordRepository is the SQL implementation of [PasswordRepository].
// Salts and hashes are stored base64 encoded.
type passwordRepository struct {
	*DB
}

// NewPasswordRepository returns a [PasswordRepository] on db.
func NewPasswordRepository(db *DB) PasswordRepository {
	return &passwordRepository{DB: db}
}

func (p *passwordRepository) List(ctx context.Context) ([]models.StoredCredential, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListCredentialsQuery(p.builder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := p.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "passwordRepository.List").Msg("failed to list credentials")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	credentials := make([]models.StoredCredential, 0, 10)
	for rows.Next() {
		var (
			salt, hash string
			createdAt  int64
		)
		if err := rows.Scan(&salt, &hash, &createdAt); err != nil {
			log.Err(err).Str("func", "passwordRepository.List").Msg("failed to scan credential row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		credential := models.StoredCredential{CreatedAt: fromUnixMilli(createdAt)}
		if credential.Salt, err = base64.StdEncoding.DecodeString(salt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
		}
		if credential.Hash, err = base64.StdEncoding.DecodeString(hash); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodingRecord, err)
		}
		credentials = append(credentials, credential)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return credentials, nil
}

func (p *passwordRepository) Save(ctx context.Context, credentials []models.StoredCredential) error {
	log := logger.FromContext(ctx)

	return p.InTx(ctx, func(tx *sql.Tx) error {
		query, args, err := buildDeleteCredentialsQuery(p.builder)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Str("func", "passwordRepository.Save").Msg("failed to clear credentials")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		if len(credentials) == 0 {
			return nil
		}

		values := make([][]any, 0, len(credentials))
		for i, credential := range credentials {
			values = append(values, []any{
				i,
				base64.StdEncoding.EncodeToString(credential.Salt),
				base64.StdEncoding.EncodeToString(credential.Hash),
				unixMilli(credential.CreatedAt),
			})
		}

		query, args, err = buildInsertCredentialsQuery(p.builder, values)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).Str("func", "passwordRepository.Save").Msg("failed to insert credentials")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
}
