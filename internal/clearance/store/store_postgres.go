package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"procura/internal/clearance/models"
	"procura/internal/validity"
	id "procura/pkg/domain"
	"procura/pkg/platform/sentinel"
)

// PostgresStore persists clearances in PostgreSQL. Validity bounds map to
// two nullable DATE columns; an absent bound is NULL, never a sentinel date.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const clearanceColumns = `id, provider_id, representative_id, valid_from, valid_until, cause, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.Clearance) error {
	query := `
		INSERT INTO clearances (` + clearanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID),
		uuid.UUID(c.ProviderID),
		uuid.UUID(c.RepresentativeID),
		nullDate(c.Window.Start),
		nullDate(c.Window.End),
		c.Cause,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create clearance: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, clearanceID id.ClearanceID) (*models.Clearance, error) {
	query := `SELECT ` + clearanceColumns + ` FROM clearances WHERE id = $1`
	c, err := scanClearance(s.db.QueryRowContext(ctx, query, uuid.UUID(clearanceID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find clearance by id: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) ListByProvider(ctx context.Context, providerID id.ProviderID) ([]*models.Clearance, error) {
	query := `
		SELECT ` + clearanceColumns + `
		FROM clearances
		WHERE provider_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(providerID))
	if err != nil {
		return nil, fmt.Errorf("list clearances by provider: %w", err)
	}
	defer rows.Close()

	var out []*models.Clearance
	for rows.Next() {
		c, err := scanClearance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clearance: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, c *models.Clearance) error {
	query := `
		UPDATE clearances
		SET provider_id = $2, representative_id = $3, valid_from = $4,
		    valid_until = $5, cause = $6, updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID),
		uuid.UUID(c.ProviderID),
		uuid.UUID(c.RepresentativeID),
		nullDate(c.Window.Start),
		nullDate(c.Window.End),
		c.Cause,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update clearance: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, clearanceID id.ClearanceID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM clearances WHERE id = $1`, uuid.UUID(clearanceID))
	if err != nil {
		return fmt.Errorf("delete clearance: %w", err)
	}
	return requireRow(res)
}

// FetchByScope returns every record for the scope with no date filtering;
// that is the validator's job. The scope key format is owned by
// models.ScopeKey, so this query filters on the underlying columns rather
// than parsing the key.
func (s *PostgresStore) FetchByScope(ctx context.Context, scopeKey string) ([]validity.Record, error) {
	query := `
		SELECT id, valid_from, valid_until
		FROM clearances
		WHERE 'clearance:' || provider_id || '/' || representative_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, scopeKey)
	if err != nil {
		return nil, fmt.Errorf("fetch clearances by scope: %w", err)
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

func scanClearance(row rowScanner) (*models.Clearance, error) {
	var c models.Clearance
	var clearanceID, providerID, representativeID uuid.UUID
	var from, until sql.NullTime
	err := row.Scan(&clearanceID, &providerID, &representativeID, &from, &until, &c.Cause, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = id.ClearanceID(clearanceID)
	c.ProviderID = id.ProviderID(providerID)
	c.RepresentativeID = id.RepresentativeID(representativeID)
	c.Window = validity.Interval{Start: timePtr(from), End: timePtr(until)}
	return &c, nil
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
