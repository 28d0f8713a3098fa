package service

import (
	"context"
	"sort"
	"strings"
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

// memDepartmentRepo is an in-memory stand-in for the Postgres repository,
// mirroring its pgx.ErrNoRows contract for conditional transitions.
type memDepartmentRepo struct {
	mu    sync.Mutex
	seq   int
	items map[string]*domain.Department
}

func newMemDepartmentRepo() *memDepartmentRepo {
	return &memDepartmentRepo{items: make(map[string]*domain.Department)}
}

var memBase = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func (r *memDepartmentRepo) nextTime() time.Time {
	r.seq++
	return memBase.Add(time.Duration(r.seq) * time.Second)
}

func (r *memDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.nextTime()
	dept.ID = uuid.NewString()
	dept.CreatedAt = now
	dept.UpdatedAt = now
	stored := *dept
	r.items[dept.ID] = &stored
	return nil
}

func (r *memDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[dept.ID]
	if !ok || stored.ArchivedAt != nil {
		return pgx.ErrNoRows
	}
	stored.Name = dept.Name
	stored.Description = dept.Description
	stored.UpdatedAt = r.nextTime()
	dept.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *memDepartmentRepo) GetByID(_ context.Context, id string, includeArchived bool) (*domain.Department, error) {
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

func (r *memDepartmentRepo) FindByName(_ context.Context, name, excludeID string) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.items {
		if stored.ID == excludeID {
			continue
		}
		if strings.EqualFold(stored.Name, name) {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memDepartmentRepo) ListActive(_ context.Context, params repository.ListParams) ([]domain.Department, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Department
	for _, stored := range r.items {
		if stored.ArchivedAt != nil {
			continue
		}
		if !matchesSearch(stored, params.Search) {
			continue
		}
		matched = append(matched, *stored)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	return slicePage(matched, params.Offset, params.Limit), total, nil
}

func (r *memDepartmentRepo) ListArchived(_ context.Context, params repository.ListParams) ([]domain.Department, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Department
	for _, stored := range r.items {
		if stored.ArchivedAt == nil {
			continue
		}
		if !matchesSearch(stored, params.Search) {
			continue
		}
		matched = append(matched, *stored)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ArchivedAt.After(*matched[j].ArchivedAt)
	})
	total := int64(len(matched))
	return slicePage(matched, params.Offset, params.Limit), total, nil
}

func (r *memDepartmentRepo) ListAll(_ context.Context, filter repository.AllFilter) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Department
	for _, stored := range r.items {
		if stored.ArchivedAt != nil && !filter.IncludeArchived {
			continue
		}
		if filter.CreatedFrom != nil && stored.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && stored.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		matched = append(matched, *stored)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *memDepartmentRepo) Archive(_ context.Context, id string) error {
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

func (r *memDepartmentRepo) Restore(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok || stored.ArchivedAt == nil {
		return pgx.ErrNoRows
	}
	stored.ArchivedAt = nil
	return nil
}

func (r *memDepartmentRepo) Purge(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok || stored.ArchivedAt == nil {
		return pgx.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

func matchesSearch(dept *domain.Department, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(dept.Name), needle) ||
		strings.Contains(strings.ToLower(dept.Description), needle)
}

func slicePage(items []domain.Department, offset, limit int) []domain.Department {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, code, domainErr.Code)
}

func newDepartmentFixture() (*DepartmentService, *memDepartmentRepo) {
	repo := newMemDepartmentRepo()
	return NewDepartmentService(repo, events.NewInMemoryDispatcher()), repo
}

func TestDepartmentLifecycleScenario(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	dept, err := svc.Create(ctx, DepartmentInput{Name: "Engineering", Description: "Builds things"})
	require.NoError(t, err)
	require.NotEmpty(t, dept.ID)
	require.Nil(t, dept.ArchivedAt)

	_, err = svc.Create(ctx, DepartmentInput{Name: "engineering", Description: "dup"})
	requireDomainCode(t, err, "CONFLICT")

	require.NoError(t, svc.Archive(ctx, dept.ID))

	_, err = svc.GetByID(ctx, dept.ID, false)
	requireDomainCode(t, err, "NOT_FOUND")

	archived, err := svc.GetByID(ctx, dept.ID, true)
	require.NoError(t, err)
	require.NotNil(t, archived.ArchivedAt)

	_, err = svc.Update(ctx, dept.ID, DepartmentInput{Name: "Engineering", Description: "edited"})
	requireDomainCode(t, err, "INVALID_STATE")

	require.NoError(t, svc.Purge(ctx, dept.ID))

	_, err = svc.GetByID(ctx, dept.ID, true)
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestDepartmentCreateValidation(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, DepartmentInput{Name: "   ", Description: "x"})
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(ctx, DepartmentInput{Name: "Finance", Description: "\t "})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestDepartmentPurgeRequiresArchive(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	dept, err := svc.Create(ctx, DepartmentInput{Name: "Finance", Description: "Money"})
	require.NoError(t, err)

	err = svc.Purge(ctx, dept.ID)
	requireDomainCode(t, err, "INVALID_STATE")

	require.NoError(t, svc.Archive(ctx, dept.ID))
	require.NoError(t, svc.Purge(ctx, dept.ID))

	err = svc.Purge(ctx, dept.ID)
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestDepartmentRestoreRoundTrip(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	dept, err := svc.Create(ctx, DepartmentInput{Name: "Legal", Description: "Contracts"})
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, dept.ID))

	restored, err := svc.Restore(ctx, dept.ID)
	require.NoError(t, err)
	require.Nil(t, restored.ArchivedAt)
	require.Equal(t, dept.Name, restored.Name)
	require.Equal(t, dept.Description, restored.Description)
	require.Equal(t, dept.CreatedAt, restored.CreatedAt)

	page, err := svc.ListActive(ctx, ListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, dept.ID, page.Items[0].ID)

	_, err = svc.Restore(ctx, dept.ID)
	requireDomainCode(t, err, "INVALID_STATE")
}

func TestDepartmentUniquenessAcrossStates(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	dept, err := svc.Create(ctx, DepartmentInput{Name: "Research", Description: "Labs"})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, dept.ID))

	// Archived rows still hold their name.
	_, err = svc.Create(ctx, DepartmentInput{Name: "Research", Description: "again"})
	requireDomainCode(t, err, "CONFLICT")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "archived", domainErr.Details["conflict_with"])

	require.NoError(t, svc.Purge(ctx, dept.ID))

	_, err = svc.Create(ctx, DepartmentInput{Name: "Research", Description: "again"})
	require.NoError(t, err)
}

func TestDepartmentUpdateExcludesOwnName(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	dept, err := svc.Create(ctx, DepartmentInput{Name: "Support", Description: "Helpdesk"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, dept.ID, DepartmentInput{Name: "Support", Description: "Tier 1 helpdesk"})
	require.NoError(t, err)
	require.Equal(t, "Tier 1 helpdesk", updated.Description)

	other, err := svc.Create(ctx, DepartmentInput{Name: "Sales", Description: "Deals"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, DepartmentInput{Name: "SUPPORT", Description: "collides"})
	requireDomainCode(t, err, "CONFLICT")
}

func TestDepartmentBatchArchivePartialSuccess(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	active, err := svc.Create(ctx, DepartmentInput{Name: "Ops", Description: "Operations"})
	require.NoError(t, err)
	archived, err := svc.Create(ctx, DepartmentInput{Name: "IT", Description: "Infrastructure"})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, archived.ID))

	missing := uuid.NewString()
	result, err := svc.BatchArchive(ctx, []string{active.ID, archived.ID, missing})
	require.NoError(t, err)
	require.Equal(t, []string{active.ID}, result.Done)
	require.ElementsMatch(t, []string{archived.ID, missing}, result.Skipped)
}

func TestDepartmentBatchRestorePartialSuccess(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	archived, err := svc.Create(ctx, DepartmentInput{Name: "Ops", Description: "Operations"})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, archived.ID))
	active, err := svc.Create(ctx, DepartmentInput{Name: "IT", Description: "Infrastructure"})
	require.NoError(t, err)

	result, err := svc.BatchRestore(ctx, []string{archived.ID, active.ID})
	require.NoError(t, err)
	require.Equal(t, []string{archived.ID}, result.Done)
	require.Equal(t, []string{active.ID}, result.Skipped)
}

func TestDepartmentBatchValidation(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	_, err := svc.BatchArchive(ctx, nil)
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.BatchRestore(ctx, []string{"abc", "  "})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestDepartmentPaginationMath(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	var createdIDs []string
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		dept, err := svc.Create(ctx, DepartmentInput{Name: name, Description: "dept " + name})
		require.NoError(t, err)
		createdIDs = append(createdIDs, dept.ID)
	}

	page, err := svc.ListActive(ctx, ListOptions{Page: 2, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 2, page.CurrentPage)

	// Newest-created first: page 2 of size 5 over 12 records holds the 6th
	// through 10th newest, i.e. creation order G down to C.
	require.Equal(t, createdIDs[6], page.Items[0].ID)
	require.Equal(t, createdIDs[2], page.Items[4].ID)

	_, err = svc.ListActive(ctx, ListOptions{Page: 0, PageSize: 5})
	requireDomainCode(t, err, "VALIDATION_FAILED")

	_, err = svc.ListActive(ctx, ListOptions{Page: 1, PageSize: -1})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestDepartmentStateDiscriminator(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	active, err := svc.Create(ctx, DepartmentInput{Name: "Active Dept", Description: "visible"})
	require.NoError(t, err)
	archived, err := svc.Create(ctx, DepartmentInput{Name: "Archived Dept", Description: "hidden"})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, archived.ID))

	activePage, err := svc.ListActive(ctx, ListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	archivedPage, err := svc.ListArchived(ctx, ListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)

	require.Len(t, activePage.Items, 1)
	require.Equal(t, active.ID, activePage.Items[0].ID)
	require.Len(t, archivedPage.Items, 1)
	require.Equal(t, archived.ID, archivedPage.Items[0].ID)
}

func TestDepartmentListArchivedOrdersByArchiveTime(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, DepartmentInput{Name: "First", Description: "one"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, DepartmentInput{Name: "Second", Description: "two"})
	require.NoError(t, err)

	// Archive in creation order; the listing surfaces the most recently
	// archived record first regardless of creation order.
	require.NoError(t, svc.Archive(ctx, first.ID))
	require.NoError(t, svc.Archive(ctx, second.ID))

	page, err := svc.ListArchived(ctx, ListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, second.ID, page.Items[0].ID)
	require.Equal(t, first.ID, page.Items[1].ID)
}

func TestDepartmentListAllFilters(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	active, err := svc.Create(ctx, DepartmentInput{Name: "Kept", Description: "active"})
	require.NoError(t, err)
	archived, err := svc.Create(ctx, DepartmentInput{Name: "Gone", Description: "archived"})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, archived.ID))

	activeOnly, err := svc.ListAll(ctx, AllOptions{})
	require.NoError(t, err)
	require.Len(t, activeOnly, 1)
	require.Equal(t, active.ID, activeOnly[0].ID)

	everything, err := svc.ListAll(ctx, AllOptions{IncludeArchived: true})
	require.NoError(t, err)
	require.Len(t, everything, 2)

	cutoff := active.CreatedAt.Add(-time.Millisecond)
	ranged, err := svc.ListAll(ctx, AllOptions{IncludeArchived: true, CreatedTo: &cutoff})
	require.NoError(t, err)
	require.Empty(t, ranged)
}

func TestDepartmentSearchIsCaseInsensitive(t *testing.T) {
	svc, _ := newDepartmentFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, DepartmentInput{Name: "Engineering", Description: "Builds things"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, DepartmentInput{Name: "Sales", Description: "Closes deals"})
	require.NoError(t, err)

	page, err := svc.ListActive(ctx, ListOptions{Page: 1, PageSize: 10, Search: "ENGINEER"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "Engineering", page.Items[0].Name)
}
