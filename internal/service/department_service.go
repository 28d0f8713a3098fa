package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/records-service/internal/domain"
	"github.com/spec-kit/records-service/internal/events"
	"github.com/spec-kit/records-service/internal/repository"
	apperrors "github.com/spec-kit/records-service/pkg/util/errorutil"
)

// DepartmentService drives the department record lifecycle.
type DepartmentService struct {
	repo       repository.DepartmentRepository
	dispatcher events.Dispatcher
}

// DepartmentInput carries the mutable department fields.
type DepartmentInput struct {
	Name        string
	Description string
}

// NewDepartmentService constructs the service.
func NewDepartmentService(repo repository.DepartmentRepository, dispatcher events.Dispatcher) *DepartmentService {
	return &DepartmentService{repo: repo, dispatcher: dispatcher}
}

// Create validates input, enforces name uniqueness across active and archived
// departments, and inserts a new active record.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	input = input.trimmed()
	if err := validateRequired([]requiredField{
		{Name: "name", Present: presentString(input.Name)},
		{Name: "description", Present: presentString(input.Description)},
	}); err != nil {
		return nil, err
	}

	if err := s.checkNameConflict(ctx, input.Name, ""); err != nil {
		return nil, err
	}

	dept := &domain.Department{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, dept); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("department name already exists", map[string]any{"field": "name"})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordCreated, dept.ID, events.RecordCreatedPayload{Label: dept.Name})
	return dept, nil
}

// GetByID fetches a department. Without includeArchived an archived record is
// reported as not found, same as an absent one.
func (s *DepartmentService) GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Department, error) {
	dept, err := s.repo.GetByID(ctx, id, includeArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"id": id})
		}
		return nil, err
	}
	return dept, nil
}

// Update mutates an active department's fields. Archived departments are
// immutable.
func (s *DepartmentService) Update(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	input = input.trimmed()
	if err := validateRequired([]requiredField{
		{Name: "name", Present: presentString(input.Name)},
		{Name: "description", Present: presentString(input.Description)},
	}); err != nil {
		return nil, err
	}

	dept, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if dept.Archived() {
		return nil, apperrors.NewInvalidState("department is archived and cannot be updated", map[string]any{"id": id})
	}

	if err := s.checkNameConflict(ctx, input.Name, id); err != nil {
		return nil, err
	}

	dept.Name = input.Name
	dept.Description = input.Description
	if err := s.repo.Update(ctx, dept); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost a race with a concurrent archive.
			return nil, apperrors.NewInvalidState("department is archived and cannot be updated", map[string]any{"id": id})
		}
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("department name already exists", map[string]any{"field": "name"})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordUpdated, dept.ID, events.RecordUpdatedPayload{Label: dept.Name})
	return dept, nil
}

// Archive soft-deletes an active department.
func (s *DepartmentService) Archive(ctx context.Context, id string) error {
	dept, err := s.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if dept.Archived() {
		return apperrors.NewInvalidState("department is already archived", map[string]any{"id": id})
	}

	if err := s.repo.Archive(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("department is already archived", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.EventRecordArchived, id, nil)
	return nil
}

// BatchArchive archives every currently-active id in the set. Missing or
// already-archived ids are reported as skipped, never as a batch failure.
func (s *DepartmentService) BatchArchive(ctx context.Context, ids []string) (BatchResult, error) {
	if err := validateBatchIDs(ids); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Done: []string{}, Skipped: []string{}}
	for _, id := range ids {
		if err := s.repo.Archive(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			return BatchResult{}, err
		}
		result.Done = append(result.Done, id)
		s.publish(ctx, events.EventRecordArchived, id, nil)
	}
	return result, nil
}

// Restore reactivates an archived department and returns it.
func (s *DepartmentService) Restore(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !dept.Archived() {
		return nil, apperrors.NewInvalidState("department is already active", map[string]any{"id": id})
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidState("department is already active", map[string]any{"id": id})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordRestored, id, nil)
	return s.GetByID(ctx, id, false)
}

// BatchRestore restores every currently-archived id in the set with the same
// partition semantics as BatchArchive.
func (s *DepartmentService) BatchRestore(ctx context.Context, ids []string) (BatchResult, error) {
	if err := validateBatchIDs(ids); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Done: []string{}, Skipped: []string{}}
	for _, id := range ids {
		if err := s.repo.Restore(ctx, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			return BatchResult{}, err
		}
		result.Done = append(result.Done, id)
		s.publish(ctx, events.EventRecordRestored, id, nil)
	}
	return result, nil
}

// Purge permanently deletes an archived department. A record must pass
// through archive first; purging an active record is rejected.
func (s *DepartmentService) Purge(ctx context.Context, id string) error {
	dept, err := s.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !dept.Archived() {
		return apperrors.NewInvalidState("department must be archived before permanent deletion", map[string]any{"id": id})
	}

	if err := s.repo.Purge(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("department must be archived before permanent deletion", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.EventRecordPurged, id, nil)
	return nil
}

// ListActive returns a page of active departments matching the search term,
// newest-created first.
func (s *DepartmentService) ListActive(ctx context.Context, opts ListOptions) (Page[domain.Department], error) {
	if err := validatePaging(opts.Page, opts.PageSize); err != nil {
		return Page[domain.Department]{}, err
	}
	items, total, err := s.repo.ListActive(ctx, repository.ListParams{
		Search: strings.TrimSpace(opts.Search),
		Limit:  opts.PageSize,
		Offset: opts.offset(),
	})
	if err != nil {
		return Page[domain.Department]{}, err
	}
	return newPage(items, total, opts), nil
}

// ListArchived returns a page of archived departments, newest-archived first.
func (s *DepartmentService) ListArchived(ctx context.Context, opts ListOptions) (Page[domain.Department], error) {
	if err := validatePaging(opts.Page, opts.PageSize); err != nil {
		return Page[domain.Department]{}, err
	}
	items, total, err := s.repo.ListArchived(ctx, repository.ListParams{
		Search: strings.TrimSpace(opts.Search),
		Limit:  opts.PageSize,
		Offset: opts.offset(),
	})
	if err != nil {
		return Page[domain.Department]{}, err
	}
	return newPage(items, total, opts), nil
}

// ListAll returns the unpaginated listing used for export and lookup-assist.
func (s *DepartmentService) ListAll(ctx context.Context, opts AllOptions) ([]domain.Department, error) {
	items, err := s.repo.ListAll(ctx, repository.AllFilter{
		IncludeArchived: opts.IncludeArchived,
		CreatedFrom:     opts.CreatedFrom,
		CreatedTo:       opts.CreatedTo,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Department{}
	}
	return items, nil
}

func (s *DepartmentService) checkNameConflict(ctx context.Context, name, excludeID string) error {
	existing, err := s.repo.FindByName(ctx, name, excludeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	return apperrors.NewConflict("department name already exists", map[string]any{
		"field":         "name",
		"conflict_with": stateLabel(existing.Archived()),
	})
}

func (s *DepartmentService) publish(ctx context.Context, eventType events.EventType, recordID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    domain.KindDepartment,
		RecordID:  recordID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (in DepartmentInput) trimmed() DepartmentInput {
	return DepartmentInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
}
