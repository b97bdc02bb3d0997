package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

const productColumns = `
	p.id, p.team_id, p.created_by, p.title, p.description, p.image, p.status,
	p.created_at, p.updated_at, p.deleted_at`

const withCreatorColumns = productColumns + `,
	pr.name, pr.avatar_url`

// Create inserts a new product record in Draft status.
func (r *PostgresRepository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (team_id, created_by, title, description, image, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.TeamID, p.CreatedBy, p.Title, p.Description, p.Image, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return apperr.FromDatastore("inserting product", err)
	}

	return nil
}

// GetByID retrieves a product joined with its creator's profile.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*WithCreator, error) {
	query := `
		SELECT` + withCreatorColumns + `
		FROM products p
		LEFT JOIN profiles pr ON pr.id = p.created_by
		WHERE p.id = $1`

	p, err := scanWithCreator(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.FromDatastore("querying product", err)
	}
	return p, nil
}

// List retrieves a filtered, sorted page of products and the total number
// of matching rows.
func (r *PostgresRepository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.TeamID != nil {
		conditions = append(conditions, fmt.Sprintf("p.team_id = $%d", argIdx))
		args = append(args, *params.TeamID)
		argIdx++
	}
	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIdx))
		args = append(args, string(*params.Status))
		argIdx++
	}
	if params.CreatedBy != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_by = $%d", argIdx))
		args = append(args, *params.CreatedBy)
		argIdx++
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(search)+"%")
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, apperr.FromDatastore("counting products", err)
	}

	offset := params.Offset()
	if total == 0 || offset >= int64(total) {
		return &ListResult{
			Data:       []WithCreator{},
			Pagination: NewPagination(params.Page, params.Limit, total),
		}, nil
	}

	// SortBy and SortOrder are whitelisted by Normalize.
	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN profiles pr ON pr.id = p.created_by
		%s
		ORDER BY p.%s %s, p.id %s
		LIMIT $%d OFFSET $%d`,
		withCreatorColumns, whereClause, params.SortBy, params.SortOrder, params.SortOrder, argIdx, argIdx+1)

	args = append(args, params.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, apperr.FromDatastore("listing products", err)
	}
	defer rows.Close()

	products := []WithCreator{}
	for rows.Next() {
		p, err := scanWithCreator(rows)
		if err != nil {
			return nil, apperr.FromDatastore("scanning product row", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.FromDatastore("iterating product rows", err)
	}

	return &ListResult{
		Data:       products,
		Pagination: NewPagination(params.Page, params.Limit, total),
	}, nil
}

// Update applies the patch to a product that is still in the expected status.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, expected Status, patch Patch, now time.Time) (*Product, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if patch.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *patch.Title)
		argIdx++
	}
	if patch.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *patch.Description)
		argIdx++
	}
	if patch.Image != nil {
		setClauses = append(setClauses, fmt.Sprintf("image = $%d", argIdx))
		args = append(args, *patch.Image)
		argIdx++
	}
	if patch.Status != nil {
		setClauses = append(setClauses,
			fmt.Sprintf("status = $%d", argIdx),
			fmt.Sprintf("deleted_at = CASE WHEN $%d::text = 'Deleted' THEN COALESCE(deleted_at, $%d) ELSE NULL END", argIdx, argIdx+1),
		)
		args = append(args, string(*patch.Status), now)
		argIdx += 2
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, now)
	argIdx++

	args = append(args, id, string(expected))

	query := fmt.Sprintf(`
		UPDATE products p
		SET %s
		WHERE p.id = $%d AND p.status = $%d
		RETURNING %s`,
		strings.Join(setClauses, ", "), argIdx, argIdx+1, productColumns)

	p, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.FromDatastore("updating product", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return nil, apperr.FromDatastore("checking product", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}
	return nil, ErrConcurrentUpdate
}

// PurgeDeletedBefore hard-deletes soft-deleted products older than cutoff.
func (r *PostgresRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM products
		WHERE status = 'Deleted' AND deleted_at < $1`

	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, apperr.FromDatastore("purging deleted products", err)
	}
	return tag.RowsAffected(), nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var status string
	err := row.Scan(
		&p.ID, &p.TeamID, &p.CreatedBy, &p.Title, &p.Description, &p.Image, &status,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}

func scanWithCreator(row pgx.Row) (*WithCreator, error) {
	var (
		p           WithCreator
		status      string
		creatorName *string
	)
	err := row.Scan(
		&p.ID, &p.TeamID, &p.CreatedBy, &p.Title, &p.Description, &p.Image, &status,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
		&creatorName, &p.CreatorAvatar,
	)
	if err != nil {
		return nil, err
	}
	p.Status = Status(status)
	p.CreatorName = UnknownCreator
	if creatorName != nil && *creatorName != "" {
		p.CreatorName = *creatorName
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
