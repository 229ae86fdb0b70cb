package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"procura/internal/exclusion/models"
	"procura/internal/validity"
	id "procura/pkg/domain"
	"procura/pkg/platform/sentinel"
)

// PostgresStore persists exclusions in PostgreSQL. The provider-wide variant
// stores an empty exclusion_type; the column is NOT NULL so the scope key
// expression stays total.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const exclusionColumns = `id, provider_id, exclusion_type, valid_from, valid_until, cause, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, e *models.Exclusion) error {
	query := `
		INSERT INTO exclusions (` + exclusionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(e.ID),
		uuid.UUID(e.ProviderID),
		string(e.Type),
		nullDate(e.Window.Start),
		nullDate(e.Window.End),
		e.Cause,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create exclusion: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, exclusionID id.ExclusionID) (*models.Exclusion, error) {
	query := `SELECT ` + exclusionColumns + ` FROM exclusions WHERE id = $1`
	e, err := scanExclusion(s.db.QueryRowContext(ctx, query, uuid.UUID(exclusionID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find exclusion by id: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ListByProvider(ctx context.Context, providerID id.ProviderID) ([]*models.Exclusion, error) {
	query := `
		SELECT ` + exclusionColumns + `
		FROM exclusions
		WHERE provider_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(providerID))
	if err != nil {
		return nil, fmt.Errorf("list exclusions by provider: %w", err)
	}
	defer rows.Close()

	var out []*models.Exclusion
	for rows.Next() {
		e, err := scanExclusion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, e *models.Exclusion) error {
	query := `
		UPDATE exclusions
		SET provider_id = $2, exclusion_type = $3, valid_from = $4,
		    valid_until = $5, cause = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(e.ID),
		uuid.UUID(e.ProviderID),
		string(e.Type),
		nullDate(e.Window.Start),
		nullDate(e.Window.End),
		e.Cause,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update exclusion: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, exclusionID id.ExclusionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exclusions WHERE id = $1`, uuid.UUID(exclusionID))
	if err != nil {
		return fmt.Errorf("delete exclusion: %w", err)
	}
	return requireRow(res)
}

// FetchByScope mirrors models.ScopeKey in SQL: typed bans carry a type
// suffix, provider-wide bans do not.
func (s *PostgresStore) FetchByScope(ctx context.Context, scopeKey string) ([]validity.Record, error) {
	query := `
		SELECT id, valid_from, valid_until
		FROM exclusions
		WHERE CASE
			WHEN exclusion_type = '' THEN 'exclusion:' || provider_id
			ELSE 'exclusion:' || provider_id || '/' || exclusion_type
		END = $1
	`
	rows, err := s.db.QueryContext(ctx, query, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("fetch exclusions by scope: %w", err)
	}
	defer rows.Close()

	var out []validity.Record
	for rows.Next() {
		var recordID uuid.UUID
		var from, until sql.NullTime
		if err := rows.Scan(&recordID, &from, &until); err != nil {
			return nil, fmt.Errorf("scan scope record: %w", err)
		}
		out = append(out, validity.Record{
			ID:     recordID,
			Window: validity.Interval{Start: timePtr(from), End: timePtr(until)},
		})
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExclusion(row rowScanner) (*models.Exclusion, error) {
	var e models.Exclusion
	var exclusionID, providerID uuid.UUID
	var exclusionType string
	var from, until sql.NullTime
	err := row.Scan(&exclusionID, &providerID, &exclusionType, &from, &until, &e.Cause, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.ID = id.ExclusionID(exclusionID)
	e.ProviderID = id.ProviderID(providerID)
	e.Type = models.Type(exclusionType)
	e.Window = validity.Interval{Start: timePtr(from), End: timePtr(until)}
	return &e, nil
}

// requireRow maps a zero-row write to the not-found sentinel.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
