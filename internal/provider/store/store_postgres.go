package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"procura/internal/provider/models"
	id "procura/pkg/domain"
	"procura/pkg/platform/sentinel"
)

// PostgresStore persists the registry in PostgreSQL. The providers.name
// column carries a unique index; name collisions surface as ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const providerColumns = `id, name, country_code, registration_number, active, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Provider) error {
	query := `
		INSERT INTO providers (` + providerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Name, p.CountryCode, p.RegistrationNumber, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return translateProviderErr("create provider", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, providerID id.ProviderID) (*models.Provider, error) {
	query := `SELECT ` + providerColumns + ` FROM providers WHERE id = $1`
	p, err := scanProvider(s.db.QueryRowContext(ctx, query, uuid.UUID(providerID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find provider by id: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) SearchByName(ctx context.Context, pattern string) ([]*models.Provider, error) {
	query := `
		SELECT ` + providerColumns + `
		FROM providers
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("search providers by name: %w", err)
	}
	defer rows.Close()

	var out []*models.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Provider) error {
	query := `
		UPDATE providers
		SET name = $2, country_code = $3, registration_number = $4, active = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Name, p.CountryCode, p.RegistrationNumber, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return translateProviderErr("update provider", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, providerID id.ProviderID) error {
	// Representatives cascade via the schema's ON DELETE CASCADE.
	res, err := s.db.ExecContext(ctx, `DELETE FROM providers WHERE id = $1`, uuid.UUID(providerID))
	if err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}
	return requireRow(res)
}

const representativeColumns = `id, provider_id, full_name, national_id, created_at`

func (s *PostgresStore) CreateRepresentative(ctx context.Context, r *models.Representative) error {
	query := `
		INSERT INTO representatives (` + representativeColumns + `)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(r.ID), uuid.UUID(r.ProviderID), r.FullName, r.NationalID, r.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return sentinel.ErrConflict
			case "foreign_key_violation":
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("create representative: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindRepresentative(ctx context.Context, representativeID id.RepresentativeID) (*models.Representative, error) {
	query := `SELECT ` + representativeColumns + ` FROM representatives WHERE id = $1`
	r, err := scanRepresentative(s.db.QueryRowContext(ctx, query, uuid.UUID(representativeID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find representative: %w", err)
	}
	return r, nil
}

func (s *PostgresStore) ListRepresentatives(ctx context.Context, providerID id.ProviderID) ([]*models.Representative, error) {
	query := `
		SELECT ` + representativeColumns + `
		FROM representatives
		WHERE provider_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(providerID))
	if err != nil {
		return nil, fmt.Errorf("list representatives: %w", err)
	}
	defer rows.Close()

	var out []*models.Representative
	for rows.Next() {
		r, err := scanRepresentative(rows)
		if err != nil {
			return nil, fmt.Errorf("scan representative: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteRepresentative(ctx context.Context, representativeID id.RepresentativeID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM representatives WHERE id = $1`, uuid.UUID(representativeID))
	if err != nil {
		return fmt.Errorf("delete representative: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProvider(row rowScanner) (*models.Provider, error) {
	var p models.Provider
	var providerID uuid.UUID
	err := row.Scan(&providerID, &p.Name, &p.CountryCode, &p.RegistrationNumber, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.ID = id.ProviderID(providerID)
	return &p, nil
}

func scanRepresentative(row rowScanner) (*models.Representative, error) {
	var r models.Representative
	var repID, providerID uuid.UUID
	err := row.Scan(&repID, &providerID, &r.FullName, &r.NationalID, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.ID = id.RepresentativeID(repID)
	r.ProviderID = id.ProviderID(providerID)
	return &r, nil
}

func translateProviderErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
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
