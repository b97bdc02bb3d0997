package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/teamhub/internal/apperr"
	"github.com/daap14/teamhub/internal/profile"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

const teamColumns = `id, name, slug, invite_code, created_at`

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	return r.getBy(ctx, "id", id)
}

// GetByName retrieves a single team by its exact name.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*Team, error) {
	return r.getBy(ctx, "name", name)
}

// GetBySlug retrieves a single team by its slug.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Team, error) {
	return r.getBy(ctx, "slug", slug)
}

// GetByInviteCode retrieves the team whose invite code matches exactly.
func (r *PostgresRepository) GetByInviteCode(ctx context.Context, code string) (*Team, error) {
	return r.getBy(ctx, "invite_code", code)
}

// getBy is only called with fixed column names.
func (r *PostgresRepository) getBy(ctx context.Context, column string, value any) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE ` + column + ` = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, value).Scan(&t.ID, &t.Name, &t.Slug, &t.InviteCode, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, apperr.FromDatastore("querying team", err)
	}

	return &t, nil
}

// CreateWithOwner inserts the team and sets the profile's team_id. The
// profile row is locked for the duration of the transaction.
func (r *PostgresRepository) CreateWithOwner(ctx context.Context, t *Team, profileID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.FromDatastore("beginning transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := lockUnaffiliated(ctx, tx, profileID); err != nil {
		return err
	}

	insert := `
		INSERT INTO teams (name, slug, invite_code)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	if err := tx.QueryRow(ctx, insert, t.Name, t.Slug, t.InviteCode).Scan(&t.ID, &t.CreatedAt); err != nil {
		return mapTeamConstraint(err)
	}

	if _, err := tx.Exec(ctx, `UPDATE profiles SET team_id = $2, updated_at = NOW() WHERE id = $1`, profileID, t.ID); err != nil {
		return apperr.FromDatastore("assigning team owner", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromDatastore("committing team creation", err)
	}
	return nil
}

// AssignProfile sets the profile's team_id if it has none.
func (r *PostgresRepository) AssignProfile(ctx context.Context, profileID, teamID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.FromDatastore("beginning transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := lockUnaffiliated(ctx, tx, profileID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `UPDATE profiles SET team_id = $2, updated_at = NOW() WHERE id = $1`, profileID, teamID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrTeamNotFound
		}
		return apperr.FromDatastore("assigning team", err)
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrProfileNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.FromDatastore("committing team assignment", err)
	}
	return nil
}

func lockUnaffiliated(ctx context.Context, tx pgx.Tx, profileID uuid.UUID) error {
	var current *uuid.UUID
	err := tx.QueryRow(ctx, `SELECT team_id FROM profiles WHERE id = $1 FOR UPDATE`, profileID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.ErrProfileNotFound
		}
		return apperr.FromDatastore("locking profile", err)
	}
	if current != nil {
		return ErrAlreadyInTeam
	}
	return nil
}

func mapTeamConstraint(err error) error {
	constraint, ok := apperr.UniqueViolation(err)
	if !ok {
		return apperr.FromDatastore("inserting team", err)
	}
	switch constraint {
	case "teams_name_key":
		return ErrDuplicateTeamName
	case "teams_slug_key":
		return ErrDuplicateSlug
	case "teams_invite_code_key":
		return ErrDuplicateInviteCode
	default:
		return fmt.Errorf("inserting team: %w", err)
	}
}
