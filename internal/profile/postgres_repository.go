package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daap14/teamhub/internal/apperr"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

const emailConstraint = "profiles_email_key"

const profileColumns = `
	p.id, p.name, p.email, p.avatar_url, p.team_id, p.profile_completed,
	p.created_at, p.updated_at,
	t.id, t.name, t.slug, t.invite_code, t.created_at`

// Ensure creates the profile row for a newly seen identity. Existing rows are
// left untouched. When another profile already owns the e-mail address the
// row is created without one.
func (r *PostgresRepository) Ensure(ctx context.Context, id uuid.UUID, email *string) error {
	query := `
		INSERT INTO profiles (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query, id, email)
	if constraint, ok := apperr.UniqueViolation(err); ok && constraint == emailConstraint {
		_, err = r.pool.Exec(ctx, query, id, nil)
	}
	if err != nil {
		return apperr.FromDatastore("ensuring profile", err)
	}
	return nil
}

// GetByID retrieves a profile joined with its team.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `
		SELECT` + profileColumns + `
		FROM profiles p
		LEFT JOIN teams t ON t.id = p.team_id
		WHERE p.id = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves the profile that owns the given e-mail address.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	query := `
		SELECT` + profileColumns + `
		FROM profiles p
		LEFT JOIN teams t ON t.id = p.team_id
		WHERE p.email = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

// Update writes the name, optional e-mail and avatar, and marks the profile
// as completed.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Profile, error) {
	query := `
		WITH p AS (
			UPDATE profiles
			SET name = $2,
			    email = COALESCE($3, email),
			    avatar_url = COALESCE($4, avatar_url),
			    profile_completed = TRUE,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT` + profileColumns + `
		FROM p
		LEFT JOIN teams t ON t.id = p.team_id`

	p, err := r.scanOne(r.pool.QueryRow(ctx, query, id, fields.Name, fields.Email, fields.AvatarURL))
	if err != nil {
		if constraint, ok := apperr.UniqueViolation(err); ok && constraint == emailConstraint {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return p, nil
}

// ListByTeam returns the profiles affiliated with a team, ordered by name.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Profile, error) {
	query := `
		SELECT` + profileColumns + `
		FROM profiles p
		LEFT JOIN teams t ON t.id = p.team_id
		WHERE p.team_id = $1
		ORDER BY p.name ASC, p.created_at ASC`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, apperr.FromDatastore("listing team profiles", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperr.FromDatastore("scanning profile row", err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromDatastore("iterating profile rows", err)
	}

	return profiles, nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Profile, error) {
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, apperr.FromDatastore("scanning profile row", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var (
		p          Profile
		teamID     *uuid.UUID
		teamName   *string
		teamSlug   *string
		inviteCode *string
		teamTime   *time.Time
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.AvatarURL, &p.TeamID, &p.ProfileCompleted,
		&p.CreatedAt, &p.UpdatedAt,
		&teamID, &teamName, &teamSlug, &inviteCode, &teamTime,
	)
	if err != nil {
		return nil, err
	}
	if teamID != nil {
		p.Team = &TeamSummary{
			ID:         *teamID,
			Name:       deref(teamName),
			Slug:       deref(teamSlug),
			InviteCode: deref(inviteCode),
		}
		if teamTime != nil {
			p.Team.CreatedAt = *teamTime
		}
	}
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
