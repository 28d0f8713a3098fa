package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/records-service/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Department, error)
	FindByName(ctx context.Context, name, excludeID string) (*domain.Department, error)
	ListActive(ctx context.Context, params ListParams) ([]domain.Department, int64, error)
	ListArchived(ctx context.Context, params ListParams) ([]domain.Department, int64, error)
	ListAll(ctx context.Context, filter AllFilter) ([]domain.Department, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

const departmentColumns = `id, name, description, created_at, updated_at, archived_at`

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, description)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Description,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, description=$2, updated_at=NOW()
        WHERE id=$3 AND archived_at IS NULL
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.Description,
		dept.ID,
	).Scan(&dept.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id=$1`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Description,
		&dept.CreatedAt,
		&dept.UpdatedAt,
		&dept.ArchivedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

// FindByName matches case-insensitively across active and archived rows,
// optionally excluding one id (the record being updated).
func (r *departmentRepository) FindByName(ctx context.Context, name, excludeID string) (*domain.Department, error) {
	const query = `
        SELECT ` + departmentColumns + `
        FROM departments WHERE lower(name)=lower($1) AND id::text <> $2`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, name, excludeID).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Description,
		&dept.CreatedAt,
		&dept.UpdatedAt,
		&dept.ArchivedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) ListActive(ctx context.Context, params ListParams) ([]domain.Department, int64, error) {
	const where = ` FROM departments
        WHERE archived_at IS NULL
          AND (name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + departmentColumns + where + `
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanDepartments(rows)
	return result, total, err
}

func (r *departmentRepository) ListArchived(ctx context.Context, params ListParams) ([]domain.Department, int64, error) {
	const where = ` FROM departments
        WHERE archived_at IS NOT NULL
          AND (name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + departmentColumns + where + `
        ORDER BY archived_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanDepartments(rows)
	return result, total, err
}

func (r *departmentRepository) ListAll(ctx context.Context, filter AllFilter) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments
        WHERE ($1 OR archived_at IS NULL)
          AND ($2::timestamptz IS NULL OR created_at >= $2)
          AND ($3::timestamptz IS NULL OR created_at <= $3)
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, filter.IncludeArchived, filter.CreatedFrom, filter.CreatedTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *departmentRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE departments SET archived_at=NOW() WHERE id=$1 AND archived_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Restore(ctx context.Context, id string) error {
	const query = `UPDATE departments SET archived_at=NULL WHERE id=$1 AND archived_at IS NOT NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Purge(ctx context.Context, id string) error {
	const query = `DELETE FROM departments WHERE id=$1 AND archived_at IS NOT NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanDepartments(rows pgx.Rows) ([]domain.Department, error) {
	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(
			&dept.ID,
			&dept.Name,
			&dept.Description,
			&dept.CreatedAt,
			&dept.UpdatedAt,
			&dept.ArchivedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}
