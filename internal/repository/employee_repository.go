package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/records-service/internal/domain"
)

// EmployeeRepository manages employee persistence.
type EmployeeRepository interface {
	Create(ctx context.Context, emp *domain.Employee) error
	Update(ctx context.Context, emp *domain.Employee) error
	GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Employee, error)
	FindConflict(ctx context.Context, emp *domain.Employee, excludeID string) (*domain.Employee, error)
	ListActive(ctx context.Context, params ListParams) ([]domain.Employee, int64, error)
	ListArchived(ctx context.Context, params ListParams) ([]domain.Employee, int64, error)
	ListAll(ctx context.Context, filter AllFilter) ([]domain.Employee, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
}

type employeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository builds the repository.
func NewEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &employeeRepository{pool: pool}
}

const employeeColumns = `id, nik, fullname, date_of_birth, gender, address, domicile_address,
        religion, nationality, education, phone_primary, phone_secondary, email,
        bank_name, account_number, npwp, bpjs_tk, bpjs_ks, hire_date, nip, status,
        created_at, updated_at, archived_at`

func (r *employeeRepository) Create(ctx context.Context, emp *domain.Employee) error {
	const query = `
        INSERT INTO employees (nik, fullname, date_of_birth, gender, address, domicile_address,
            religion, nationality, education, phone_primary, phone_secondary, email,
            bank_name, account_number, npwp, bpjs_tk, bpjs_ks, hire_date, nip, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		emp.NIK,
		emp.Fullname,
		emp.DateOfBirth,
		emp.Gender,
		emp.Address,
		emp.DomicileAddress,
		emp.Religion,
		emp.Nationality,
		emp.Education,
		emp.PhonePrimary,
		emp.PhoneSecondary,
		emp.Email,
		emp.BankName,
		emp.AccountNumber,
		emp.NPWP,
		emp.BPJSTK,
		emp.BPJSKS,
		emp.HireDate,
		emp.NIP,
		emp.Status,
	).Scan(&emp.ID, &emp.CreatedAt, &emp.UpdatedAt)
}

func (r *employeeRepository) Update(ctx context.Context, emp *domain.Employee) error {
	const query = `
        UPDATE employees SET nik=$1, fullname=$2, date_of_birth=$3, gender=$4, address=$5,
            domicile_address=$6, religion=$7, nationality=$8, education=$9,
            phone_primary=$10, phone_secondary=$11, email=$12, bank_name=$13,
            account_number=$14, npwp=$15, bpjs_tk=$16, bpjs_ks=$17, hire_date=$18,
            nip=$19, status=$20, updated_at=NOW()
        WHERE id=$21 AND archived_at IS NULL
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		emp.NIK,
		emp.Fullname,
		emp.DateOfBirth,
		emp.Gender,
		emp.Address,
		emp.DomicileAddress,
		emp.Religion,
		emp.Nationality,
		emp.Education,
		emp.PhonePrimary,
		emp.PhoneSecondary,
		emp.Email,
		emp.BankName,
		emp.AccountNumber,
		emp.NPWP,
		emp.BPJSTK,
		emp.BPJSKS,
		emp.HireDate,
		emp.NIP,
		emp.Status,
		emp.ID,
	).Scan(&emp.UpdatedAt)
}

func (r *employeeRepository) GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id=$1`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	var emp domain.Employee
	if err := r.pool.QueryRow(ctx, query, id).Scan(employeeFields(&emp)...); err != nil {
		return nil, err
	}
	return &emp, nil
}

// FindConflict returns any non-purged employee sharing one of the
// uniqueness-constrained identity fields, excluding the given id. Identity
// numbers are compared as exact strings.
func (r *employeeRepository) FindConflict(ctx context.Context, emp *domain.Employee, excludeID string) (*domain.Employee, error) {
	const query = `
        SELECT ` + employeeColumns + ` FROM employees
        WHERE (nik=$1 OR email=$2 OR account_number=$3 OR npwp=$4 OR bpjs_tk=$5 OR bpjs_ks=$6 OR nip=$7)
          AND id::text <> $8
        LIMIT 1`
	var found domain.Employee
	if err := r.pool.QueryRow(ctx, query,
		emp.NIK,
		emp.Email,
		emp.AccountNumber,
		emp.NPWP,
		emp.BPJSTK,
		emp.BPJSKS,
		emp.NIP,
		excludeID,
	).Scan(employeeFields(&found)...); err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *employeeRepository) ListActive(ctx context.Context, params ListParams) ([]domain.Employee, int64, error) {
	const where = ` FROM employees
        WHERE archived_at IS NULL
          AND (fullname ILIKE '%'||$1||'%' OR nip ILIKE '%'||$1||'%')`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + employeeColumns + where + `
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanEmployees(rows)
	return result, total, err
}

func (r *employeeRepository) ListArchived(ctx context.Context, params ListParams) ([]domain.Employee, int64, error) {
	const where = ` FROM employees
        WHERE archived_at IS NOT NULL
          AND (fullname ILIKE '%'||$1||'%' OR nip ILIKE '%'||$1||'%')`

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, params.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + employeeColumns + where + `
        ORDER BY archived_at DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result, err := scanEmployees(rows)
	return result, total, err
}

func (r *employeeRepository) ListAll(ctx context.Context, filter AllFilter) ([]domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees
        WHERE ($1 OR archived_at IS NULL)
          AND ($2::timestamptz IS NULL OR created_at >= $2)
          AND ($3::timestamptz IS NULL OR created_at <= $3)
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, filter.IncludeArchived, filter.CreatedFrom, filter.CreatedTo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEmployees(rows)
}

func (r *employeeRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE employees SET archived_at=NOW() WHERE id=$1 AND archived_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) Restore(ctx context.Context, id string) error {
	const query = `UPDATE employees SET archived_at=NULL WHERE id=$1 AND archived_at IS NOT NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *employeeRepository) Purge(ctx context.Context, id string) error {
	const query = `DELETE FROM employees WHERE id=$1 AND archived_at IS NOT NULL`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func employeeFields(emp *domain.Employee) []any {
	return []any{
		&emp.ID,
		&emp.NIK,
		&emp.Fullname,
		&emp.DateOfBirth,
		&emp.Gender,
		&emp.Address,
		&emp.DomicileAddress,
		&emp.Religion,
		&emp.Nationality,
		&emp.Education,
		&emp.PhonePrimary,
		&emp.PhoneSecondary,
		&emp.Email,
		&emp.BankName,
		&emp.AccountNumber,
		&emp.NPWP,
		&emp.BPJSTK,
		&emp.BPJSKS,
		&emp.HireDate,
		&emp.NIP,
		&emp.Status,
		&emp.CreatedAt,
		&emp.UpdatedAt,
		&emp.ArchivedAt,
	}
}

func scanEmployees(rows pgx.Rows) ([]domain.Employee, error) {
	var result []domain.Employee
	for rows.Next() {
		var emp domain.Employee
		if err := rows.Scan(employeeFields(&emp)...); err != nil {
			return nil, err
		}
		result = append(result, emp)
	}
	return result, rows.Err()
}
