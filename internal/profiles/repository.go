package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridealong/event-carpool/pkg/database"
)

// ErrProfileNotFound is returned when no profile matches the lookup.
var ErrProfileNotFound = errors.New("profile not found")

// Repository handles database operations for matching profiles. The config
// column is stored as JSONB so profile shape can evolve without migrations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new profiles repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanProfile(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	var configJSON []byte
	err := row.Scan(&p.ID, &p.Name, &configJSON, &p.IsDefault, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(configJSON, &p.Config); err != nil {
		return nil, fmt.Errorf("failed to decode profile config: %w", err)
	}
	return p, nil
}

// Create inserts a new profile.
func (r *Repository) Create(ctx context.Context, p *Profile) error {
	configJSON, err := json.Marshal(p.Config)
	if err != nil {
		return fmt.Errorf("failed to encode profile config: %w", err)
	}

	query := `
		INSERT INTO match_profiles (id, name, config, is_default)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	p.ID = uuid.New()
	err = r.db.QueryRow(ctx, query, p.ID, p.Name, configJSON, p.IsDefault).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT id, name, config, is_default, created_at, updated_at
		FROM match_profiles WHERE id = $1
	`
	p, err := database.RetryableQueryRow(ctx, r.db, query, []interface{}{id}, scanProfile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetByName retrieves a profile by its unique name.
func (r *Repository) GetByName(ctx context.Context, name string) (*Profile, error) {
	query := `
		SELECT id, name, config, is_default, created_at, updated_at
		FROM match_profiles WHERE name = $1
	`
	p, err := database.RetryableQueryRow(ctx, r.db, query, []interface{}{name}, scanProfile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetDefault retrieves the profile flagged as default, if any.
func (r *Repository) GetDefault(ctx context.Context) (*Profile, error) {
	query := `
		SELECT id, name, config, is_default, created_at, updated_at
		FROM match_profiles WHERE is_default = true
		ORDER BY updated_at DESC LIMIT 1
	`
	p, err := database.RetryableQueryRow(ctx, r.db, query, nil, scanProfile)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default profile: %w", err)
	}
	return p, nil
}

// List returns all profiles ordered by name.
func (r *Repository) List(ctx context.Context) ([]*Profile, error) {
	query := `
		SELECT id, name, config, is_default, created_at, updated_at
		FROM match_profiles ORDER BY name
	`
	items, err := database.RetryableQuery(ctx, r.db, query, nil, func(rows pgx.Rows) ([]*Profile, error) {
		out := make([]*Profile, 0)
		for rows.Next() {
			p, err := scanProfile(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan profile: %w", err)
			}
			out = append(out, p)
		}
		return out, rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return items, nil
}

// Update replaces a profile's contents.
func (r *Repository) Update(ctx context.Context, p *Profile) error {
	configJSON, err := json.Marshal(p.Config)
	if err != nil {
		return fmt.Errorf("failed to encode profile config: %w", err)
	}

	query := `
		UPDATE match_profiles
		SET name = $2, config = $3, is_default = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, query, p.ID, p.Name, configJSON, p.IsDefault).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrProfileNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// Delete removes a profile.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := database.RetryableExec(ctx, r.db, `DELETE FROM match_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// ClearDefault unsets the default flag everywhere. Run inside the same
// request as the update that sets a new default so exactly one remains.
func (r *Repository) ClearDefault(ctx context.Context) error {
	_, err := database.RetryableExec(ctx, r.db, `UPDATE match_profiles SET is_default = false WHERE is_default = true`)
	if err != nil {
		return fmt.Errorf("failed to clear default profile: %w", err)
	}
	return nil
}

// compile-time check that the pool-backed repository satisfies the service's
// expectations.
var _ RepositoryInterface = (*Repository)(nil)

// RepositoryInterface is what the profiles service needs from storage.
type RepositoryInterface interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByName(ctx context.Context, name string) (*Profile, error)
	GetDefault(ctx context.Context) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Update(ctx context.Context, p *Profile) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearDefault(ctx context.Context) error
}
