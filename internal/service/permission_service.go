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

// PermissionService drives the permission record lifecycle.
type PermissionService struct {
	repo       repository.PermissionRepository
	dispatcher events.Dispatcher
}

// PermissionInput carries the mutable permission fields.
type PermissionInput struct {
	Name        string
	Description string
}

// NewPermissionService constructs the service.
func NewPermissionService(repo repository.PermissionRepository, dispatcher events.Dispatcher) *PermissionService {
	return &PermissionService{repo: repo, dispatcher: dispatcher}
}

// Create inserts a new active permission after uniqueness checks.
func (s *PermissionService) Create(ctx context.Context, input PermissionInput) (*domain.Permission, error) {
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

	perm := &domain.Permission{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, perm); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("permission name already exists", map[string]any{"field": "name"})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordCreated, perm.ID, events.RecordCreatedPayload{Label: perm.Name})
	return perm, nil
}

// GetByID fetches a permission, treating archived records as not found unless
// includeArchived is set.
func (s *PermissionService) GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Permission, error) {
	perm, err := s.repo.GetByID(ctx, id, includeArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("permission", map[string]any{"id": id})
		}
		return nil, err
	}
	return perm, nil
}

// Update mutates an active permission's fields.
func (s *PermissionService) Update(ctx context.Context, id string, input PermissionInput) (*domain.Permission, error) {
	input = input.trimmed()
	if err := validateRequired([]requiredField{
		{Name: "name", Present: presentString(input.Name)},
		{Name: "description", Present: presentString(input.Description)},
	}); err != nil {
		return nil, err
	}

	perm, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if perm.Archived() {
		return nil, apperrors.NewInvalidState("permission is archived and cannot be updated", map[string]any{"id": id})
	}

	if err := s.checkNameConflict(ctx, input.Name, id); err != nil {
		return nil, err
	}

	perm.Name = input.Name
	perm.Description = input.Description
	if err := s.repo.Update(ctx, perm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidState("permission is archived and cannot be updated", map[string]any{"id": id})
		}
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("permission name already exists", map[string]any{"field": "name"})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordUpdated, perm.ID, events.RecordUpdatedPayload{Label: perm.Name})
	return perm, nil
}

// Archive soft-deletes an active permission.
func (s *PermissionService) Archive(ctx context.Context, id string) error {
	perm, err := s.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if perm.Archived() {
		return apperrors.NewInvalidState("permission is already archived", map[string]any{"id": id})
	}

	if err := s.repo.Archive(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("permission is already archived", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.EventRecordArchived, id, nil)
	return nil
}

// BatchArchive archives the active subset of ids, reporting the rest skipped.
func (s *PermissionService) BatchArchive(ctx context.Context, ids []string) (BatchResult, error) {
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

// Restore reactivates an archived permission and returns it.
func (s *PermissionService) Restore(ctx context.Context, id string) (*domain.Permission, error) {
	perm, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !perm.Archived() {
		return nil, apperrors.NewInvalidState("permission is already active", map[string]any{"id": id})
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidState("permission is already active", map[string]any{"id": id})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordRestored, id, nil)
	return s.GetByID(ctx, id, false)
}

// BatchRestore restores the archived subset of ids.
func (s *PermissionService) BatchRestore(ctx context.Context, ids []string) (BatchResult, error) {
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

// Purge permanently deletes an archived permission.
func (s *PermissionService) Purge(ctx context.Context, id string) error {
	perm, err := s.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !perm.Archived() {
		return apperrors.NewInvalidState("permission must be archived before permanent deletion", map[string]any{"id": id})
	}

	if err := s.repo.Purge(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("permission must be archived before permanent deletion", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.EventRecordPurged, id, nil)
	return nil
}

// ListActive returns a page of active permissions, newest-created first.
func (s *PermissionService) ListActive(ctx context.Context, opts ListOptions) (Page[domain.Permission], error) {
	if err := validatePaging(opts.Page, opts.PageSize); err != nil {
		return Page[domain.Permission]{}, err
	}
	items, total, err := s.repo.ListActive(ctx, repository.ListParams{
		Search: strings.TrimSpace(opts.Search),
		Limit:  opts.PageSize,
		Offset: opts.offset(),
	})
	if err != nil {
		return Page[domain.Permission]{}, err
	}
	return newPage(items, total, opts), nil
}

// ListArchived returns a page of archived permissions, newest-archived first.
func (s *PermissionService) ListArchived(ctx context.Context, opts ListOptions) (Page[domain.Permission], error) {
	if err := validatePaging(opts.Page, opts.PageSize); err != nil {
		return Page[domain.Permission]{}, err
	}
	items, total, err := s.repo.ListArchived(ctx, repository.ListParams{
		Search: strings.TrimSpace(opts.Search),
		Limit:  opts.PageSize,
		Offset: opts.offset(),
	})
	if err != nil {
		return Page[domain.Permission]{}, err
	}
	return newPage(items, total, opts), nil
}

// ListAll returns the unpaginated listing used for export and lookup-assist.
func (s *PermissionService) ListAll(ctx context.Context, opts AllOptions) ([]domain.Permission, error) {
	items, err := s.repo.ListAll(ctx, repository.AllFilter{
		IncludeArchived: opts.IncludeArchived,
		CreatedFrom:     opts.CreatedFrom,
		CreatedTo:       opts.CreatedTo,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Permission{}
	}
	return items, nil
}

func (s *PermissionService) checkNameConflict(ctx context.Context, name, excludeID string) error {
	existing, err := s.repo.FindByName(ctx, name, excludeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	return apperrors.NewConflict("permission name already exists", map[string]any{
		"field":         "name",
		"conflict_with": stateLabel(existing.Archived()),
	})
}

func (s *PermissionService) publish(ctx context.Context, eventType events.EventType, recordID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    domain.KindPermission,
		RecordID:  recordID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (in PermissionInput) trimmed() PermissionInput {
	return PermissionInput{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
}
