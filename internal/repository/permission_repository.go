package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/records-service/internal/domain"
)

// PermissionRepository manages permission persistence.
type PermissionRepository interface {
	Create(ctx context.Context, perm *domain.Permission) error
	Update(ctx context.Context, perm *domain.Permission) error
	GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Permission, error)
	FindByName(ctx context.Context, name, excludeID string) (*domain.Permission, error)
	ListActive(ctx context.Context, params ListParams) ([]domain.Permission, int64, error)
	ListArchived(ctx context.Context, params ListParams) ([]domain.Permission, int64, error)
	ListAll(ctx context.Context, filter AllFilter) ([]domain.Permission, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository builds the repository.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

const permissionColumns = `id, name, description, created_at, updated_at, archived_at`

func (r *permissionRepository) Create(ctx context.Context, perm *domain.Permission) error {
	const query = `
        INSERT INTO permissions (name, description)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		perm.Name,
		perm.Description,
	).Scan(&perm.ID, &perm.CreatedAt, &perm.UpdatedAt)
}

func (r *permissionRepository) Update(ctx context.Context, perm *domain.Permission) error {
	const query = `
        UPDATE permissions SET name=$1, description=$2, updated_at=NOW()
        WHERE id=$3 AND archived_at IS NULL
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		perm.Name,
		perm.Description,
		perm.ID,
	).Scan(&perm.UpdatedAt)
}

func (r *permissionRepository) GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions WHERE id=$1`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	var perm domain.Permission
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&perm.ID,
		&perm.Name,
		&perm.Description,
		&perm.CreatedAt,
		&perm.UpdatedAt,
		&perm.ArchivedAt,
	); err != nil {
		return nil, err
	}
	return &perm, nil
}

// FindByName matches case-insensitively across active and archived rows,
// optionally excluding one id (the record being updated).
func (r *permissionRepository) FindByName(ctx context.Context, name, excludeID string) (*domain.Permission, error) {
	const query = `
        SELECT ` + permissionColumns + `
        FROM permissions WHERE lower(name)=lower($1) AND id::text <> $2`
	var perm domain.Permission
	if err := r.pool.QueryRow(ctx, query, name, excludeID).Scan(
		&perm.ID,
		&perm.Name,
		&perm.Description,
		&perm.CreatedAt,
		&perm.UpdatedAt,
		&perm.ArchivedAt,
	); err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *permissionRepository) ListActive(ctx context.Context, params ListParams) ([]domain.Permission, int64, error) {
	const where = ` FROM permissions
        WHERE archived_at IS NULL
          AND (name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + permissionColumns + where + `
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanPermissions(rows)
	return result, total, err
}

func (r *permissionRepository) ListArchived(ctx context.Context, params ListParams) ([]domain.Permission, int64, error) {
	const where = ` FROM permissions
        WHERE archived_at IS NOT NULL
          AND (name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + permissionColumns + where + `
        ORDER BY archived_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanPermissions(rows)
	return result, total, err
}

func (r *permissionRepository) ListAll(ctx context.Context, filter AllFilter) ([]domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM permissions
        WHERE ($1 OR archived_at IS NULL)
          AND ($2::timestamptz IS NULL OR created_at >= $2)
          AND ($3::timestamptz IS NULL OR created_at <= $3)
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, filter.IncludeArchived, filter.CreatedFrom, filter.CreatedTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

func (r *permissionRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE permissions SET archived_at=NOW() WHERE id=$1 AND archived_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *permissionRepository) Restore(ctx context.Context, id string) error {
	const query = `UPDATE permissions SET archived_at=NULL WHERE id=$1 AND archived_at IS NOT NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *permissionRepository) Purge(ctx context.Context, id string) error {
	const query = `DELETE FROM permissions WHERE id=$1 AND archived_at IS NOT NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPermissions(rows pgx.Rows) ([]domain.Permission, error) {
	var result []domain.Permission
	for rows.Next() {
		var perm domain.Permission
		if err := rows.Scan(
			&perm.ID,
			&perm.Name,
			&perm.Description,
			&perm.CreatedAt,
			&perm.UpdatedAt,
			&perm.ArchivedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, perm)
	}
	return result, rows.Err()
}
