package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/records-service/internal/domain"
	"github.com/spec-kit/records-service/internal/events"
	"github.com/spec-kit/records-service/internal/repository"
	apperrors "github.com/spec-kit/records-service/pkg/util/errorutil"
)

type memEmployeeRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*domain.Employee
}

func newMemEmployeeRepo() *memEmployeeRepo {
	return &memEmployeeRepo{items: make(map[string]*domain.Employee)}
}

func (r *memEmployeeRepo) nextTime() time.Time {
	r.seq++
	return memBase.Add(time.Duration(r.seq) * time.Second)
}

func (r *memEmployeeRepo) Create(_ context.Context, emp *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nextTime()
	emp.ID = uuid.NewString()
	emp.CreatedAt = now
	emp.UpdatedAt = now
	stored := *emp
	r.items[emp.ID] = &stored
	return nil
}

func (r *memEmployeeRepo) Update(_ context.Context, emp *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[emp.ID]
	if !ok || stored.ArchivedAt != nil {
		return pgx.ErrNoRows
	}
	updatedAt := r.nextTime()
	copied := *emp
	copied.CreatedAt = stored.CreatedAt
	copied.UpdatedAt = updatedAt
	r.items[emp.ID] = &copied
	emp.UpdatedAt = updatedAt
	return nil
}

func (r *memEmployeeRepo) GetByID(_ context.Context, id string, includeArchived bool) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if stored.ArchivedAt != nil && !includeArchived {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *memEmployeeRepo) FindConflict(_ context.Context, emp *domain.Employee, excludeID string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.ID == excludeID {
			continue
		}
		if stored.NIK == emp.NIK || stored.Email == emp.Email ||
			stored.AccountNumber == emp.AccountNumber || stored.NPWP == emp.NPWP ||
			stored.BPJSTK == emp.BPJSTK || stored.BPJSKS == emp.BPJSKS ||
			stored.NIP == emp.NIP {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memEmployeeRepo) ListActive(_ context.Context, params repository.ListParams) ([]domain.Employee, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Employee
	for _, stored := range r.items {
		if stored.ArchivedAt == nil {
			matched = append(matched, *stored)
		}
	}
	total := int64(len(matched))
	if params.Offset >= len(matched) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[params.Offset:end], total, nil
}

func (r *memEmployeeRepo) ListArchived(_ context.Context, params repository.ListParams) ([]domain.Employee, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Employee
	for _, stored := range r.items {
		if stored.ArchivedAt != nil {
			matched = append(matched, *stored)
		}
	}
	total := int64(len(matched))
	if params.Offset >= len(matched) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[params.Offset:end], total, nil
}

func (r *memEmployeeRepo) ListAll(_ context.Context, filter repository.AllFilter) ([]domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Employee
	for _, stored := range r.items {
		if stored.ArchivedAt != nil && !filter.IncludeArchived {
			continue
		}
		matched = append(matched, *stored)
	}
	return matched, nil
}

func (r *memEmployeeRepo) Archive(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok || stored.ArchivedAt != nil {
		return pgx.ErrNoRows
	}
	archivedAt := r.nextTime()
	stored.ArchivedAt = &archivedAt
	return nil
}

func (r *memEmployeeRepo) Restore(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok || stored.ArchivedAt == nil {
		return pgx.ErrNoRows
	}
	stored.ArchivedAt = nil
	return nil
}

func (r *memEmployeeRepo) Purge(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok || stored.ArchivedAt == nil {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func newEmployeeFixture() *EmployeeService {
	return NewEmployeeService(newMemEmployeeRepo(), events.NewInMemoryDispatcher())
}

func validEmployeeInput(suffix string) EmployeeInput {
	return EmployeeInput{
		NIK:             "317404010101" + suffix,
		Fullname:        "Budi Santoso " + suffix,
		DateOfBirth:     time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:          "male",
		Address:         "Jl. Sudirman No. 1",
		DomicileAddress: "Jl. Thamrin No. 2",
		Religion:        "Islam",
		Nationality:     "Indonesian",
		Education:       "S1",
		PhonePrimary:    "0812000" + suffix,
		PhoneSecondary:  "0813000" + suffix,
		Email:           "budi" + suffix + "@example.com",
		BankName:        "BCA",
		AccountNumber:   "889900" + suffix,
		NPWP:            "09.254.294." + suffix,
		BPJSTK:          "1101" + suffix,
		BPJSKS:          "2202" + suffix,
		HireDate:        time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		NIP:             "EMP-" + suffix,
		Status:          "permanent",
	}
}

func TestEmployeeCreateReportsFirstMissingField(t *testing.T) {
	svc := newEmployeeFixture()
	ctx := context.Background()

	input := validEmployeeInput("01")
	input.NIK = "  "
	input.Email = ""

	_, err := svc.Create(ctx, input)
	requireDomainCode(t, err, "VALIDATION_FAILED")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "nik is required", domainErr.Message)

	input = validEmployeeInput("01")
	input.HireDate = time.Time{}
	_, err = svc.Create(ctx, input)
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "hire date is required", domainErr.Message)
}

func TestEmployeeIdentityConflictNamesField(t *testing.T) {
	svc := newEmployeeFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, validEmployeeInput("01"))
	require.NoError(t, err)

	dup := validEmployeeInput("02")
	dup.Email = "budi01@example.com"
	_, err = svc.Create(ctx, dup)
	requireDomainCode(t, err, "CONFLICT")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "email already exists", domainErr.Message)
	require.Equal(t, "email", domainErr.Details["field"])

	dup = validEmployeeInput("03")
	dup.NIP = "EMP-01"
	_, err = svc.Create(ctx, dup)
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NIP already exists", domainErr.Message)
}

func TestEmployeeConflictAgainstArchivedRecord(t *testing.T) {
	svc := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Create(ctx, validEmployeeInput("01"))
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, emp.ID))

	dup := validEmployeeInput("02")
	dup.NIK = emp.NIK
	_, err = svc.Create(ctx, dup)
	requireDomainCode(t, err, "CONFLICT")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "archived", domainErr.Details["conflict_with"])

	require.NoError(t, svc.Purge(ctx, emp.ID))
	_, err = svc.Create(ctx, dup)
	require.NoError(t, err)
}

func TestEmployeeUpdateKeepsOwnIdentity(t *testing.T) {
	svc := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Create(ctx, validEmployeeInput("01"))
	require.NoError(t, err)

	// Re-submitting the employee's own identity fields is not a conflict.
	input := validEmployeeInput("01")
	input.Fullname = "Budi Santoso, S.Kom"
	updated, err := svc.Update(ctx, emp.ID, input)
	require.NoError(t, err)
	require.Equal(t, "Budi Santoso, S.Kom", updated.Fullname)
	require.Equal(t, emp.CreatedAt, updated.CreatedAt)
	require.True(t, updated.UpdatedAt.After(emp.UpdatedAt))

	other, err := svc.Create(ctx, validEmployeeInput("02"))
	require.NoError(t, err)

	input = validEmployeeInput("02")
	input.NPWP = emp.NPWP
	_, err = svc.Update(ctx, other.ID, input)
	requireDomainCode(t, err, "CONFLICT")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NPWP already exists", domainErr.Message)
}

func TestEmployeeArchivedIsImmutable(t *testing.T) {
	svc := newEmployeeFixture()
	ctx := context.Background()

	emp, err := svc.Create(ctx, validEmployeeInput("01"))
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, emp.ID))

	_, err = svc.Update(ctx, emp.ID, validEmployeeInput("01"))
	requireDomainCode(t, err, "INVALID_STATE")

	err = svc.Archive(ctx, emp.ID)
	requireDomainCode(t, err, "INVALID_STATE")

	restored, err := svc.Restore(ctx, emp.ID)
	require.NoError(t, err)
	require.Nil(t, restored.ArchivedAt)
	require.Equal(t, emp.NIK, restored.NIK)
}

func TestEmployeeBatchRestorePartition(t *testing.T) {
	svc := newEmployeeFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, validEmployeeInput("01"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validEmployeeInput("02"))
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, first.ID))

	result, err := svc.BatchRestore(ctx, []string{first.ID, second.ID, uuid.NewString()})
	require.NoError(t, err)
	require.Equal(t, []string{first.ID}, result.Done)
	require.Len(t, result.Skipped, 2)
}
