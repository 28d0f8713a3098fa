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

// EmployeeService drives the employee record lifecycle.
type EmployeeService struct {
	repo       repository.EmployeeRepository
	dispatcher events.Dispatcher
}

// EmployeeInput carries the mutable employee fields.
type EmployeeInput struct {
	NIK             string
	Fullname        string
	DateOfBirth     time.Time
	Gender          string
	Address         string
	DomicileAddress string
	Religion        string
	Nationality     string
	Education       string
	PhonePrimary    string
	PhoneSecondary  string
	Email           string
	BankName        string
	AccountNumber   string
	NPWP            string
	BPJSTK          string
	BPJSKS          string
	HireDate        time.Time
	NIP             string
	Status          string
}

// NewEmployeeService constructs the service.
func NewEmployeeService(repo repository.EmployeeRepository, dispatcher events.Dispatcher) *EmployeeService {
	return &EmployeeService{repo: repo, dispatcher: dispatcher}
}

// schema returns the required-field checks in their fixed reporting order.
func (in EmployeeInput) schema() []requiredField {
	return []requiredField{
		{Name: "nik", Present: presentString(in.NIK)},
		{Name: "fullname", Present: presentString(in.Fullname)},
		{Name: "date of birth", Present: presentTime(in.DateOfBirth)},
		{Name: "gender", Present: presentString(in.Gender)},
		{Name: "address", Present: presentString(in.Address)},
		{Name: "domicile address", Present: presentString(in.DomicileAddress)},
		{Name: "religion", Present: presentString(in.Religion)},
		{Name: "nationality", Present: presentString(in.Nationality)},
		{Name: "education", Present: presentString(in.Education)},
		{Name: "primary phone number", Present: presentString(in.PhonePrimary)},
		{Name: "secondary phone number", Present: presentString(in.PhoneSecondary)},
		{Name: "email", Present: presentString(in.Email)},
		{Name: "bank name", Present: presentString(in.BankName)},
		{Name: "account number", Present: presentString(in.AccountNumber)},
		{Name: "npwp", Present: presentString(in.NPWP)},
		{Name: "bpjs ketenagakerjaan", Present: presentString(in.BPJSTK)},
		{Name: "bpjs kesehatan", Present: presentString(in.BPJSKS)},
		{Name: "hire date", Present: presentTime(in.HireDate)},
		{Name: "nip", Present: presentString(in.NIP)},
		{Name: "employee status", Present: presentString(in.Status)},
	}
}

// Create validates the full employee schema, checks every identity field for
// collisions across active and archived rows, and inserts a new active record.
func (s *EmployeeService) Create(ctx context.Context, input EmployeeInput) (*domain.Employee, error) {
	input = input.trimmed()
	if err := validateRequired(input.schema()); err != nil {
		return nil, err
	}

	emp := input.toDomain()
	if err := s.checkIdentityConflict(ctx, emp, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, emp); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("employee identity field already exists", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordCreated, emp.ID, events.RecordCreatedPayload{Label: emp.Fullname})
	return emp, nil
}

// GetByID fetches an employee, treating archived records as not found unless
// includeArchived is set.
func (s *EmployeeService) GetByID(ctx context.Context, id string, includeArchived bool) (*domain.Employee, error) {
	emp, err := s.repo.GetByID(ctx, id, includeArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"id": id})
		}
		return nil, err
	}
	return emp, nil
}

// Update mutates an active employee's fields. Archived employees are immutable.
func (s *EmployeeService) Update(ctx context.Context, id string, input EmployeeInput) (*domain.Employee, error) {
	input = input.trimmed()
	if err := validateRequired(input.schema()); err != nil {
		return nil, err
	}

	emp, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if emp.Archived() {
		return nil, apperrors.NewInvalidState("employee is archived and cannot be updated", map[string]any{"id": id})
	}

	updated := input.toDomain()
	updated.ID = emp.ID
	updated.CreatedAt = emp.CreatedAt
	updated.UpdatedAt = emp.UpdatedAt
	if err := s.checkIdentityConflict(ctx, updated, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidState("employee is archived and cannot be updated", map[string]any{"id": id})
		}
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("employee identity field already exists", nil)
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordUpdated, updated.ID, events.RecordUpdatedPayload{Label: updated.Fullname})
	return updated, nil
}

// Archive soft-deletes an active employee.
func (s *EmployeeService) Archive(ctx context.Context, id string) error {
	emp, err := s.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if emp.Archived() {
		return apperrors.NewInvalidState("employee is already archived", map[string]any{"id": id})
	}

	if err := s.repo.Archive(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("employee is already archived", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.EventRecordArchived, id, nil)
	return nil
}

// BatchArchive archives the active subset of ids, reporting the rest skipped.
func (s *EmployeeService) BatchArchive(ctx context.Context, ids []string) (BatchResult, error) {
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

// Restore reactivates an archived employee and returns it.
func (s *EmployeeService) Restore(ctx context.Context, id string) (*domain.Employee, error) {
	emp, err := s.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !emp.Archived() {
		return nil, apperrors.NewInvalidState("employee is already active", map[string]any{"id": id})
	}

	if err := s.repo.Restore(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidState("employee is already active", map[string]any{"id": id})
		}
		return nil, err
	}

	s.publish(ctx, events.EventRecordRestored, id, nil)
	return s.GetByID(ctx, id, false)
}

// BatchRestore restores the archived subset of ids.
func (s *EmployeeService) BatchRestore(ctx context.Context, ids []string) (BatchResult, error) {
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

// Purge permanently deletes an archived employee.
func (s *EmployeeService) Purge(ctx context.Context, id string) error {
	emp, err := s.GetByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !emp.Archived() {
		return apperrors.NewInvalidState("employee must be archived before permanent deletion", map[string]any{"id": id})
	}

	if err := s.repo.Purge(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidState("employee must be archived before permanent deletion", map[string]any{"id": id})
		}
		return err
	}

	s.publish(ctx, events.EventRecordPurged, id, nil)
	return nil
}

// ListActive returns a page of active employees matching the search term on
// fullname or NIP, newest-created first.
func (s *EmployeeService) ListActive(ctx context.Context, opts ListOptions) (Page[domain.Employee], error) {
	if err := validatePaging(opts.Page, opts.PageSize); err != nil {
		return Page[domain.Employee]{}, err
	}
	items, total, err := s.repo.ListActive(ctx, repository.ListParams{
		Search: strings.TrimSpace(opts.Search),
		Limit:  opts.PageSize,
		Offset: opts.offset(),
	})
	if err != nil {
		return Page[domain.Employee]{}, err
	}
	return newPage(items, total, opts), nil
}

// ListArchived returns a page of archived employees, newest-archived first.
func (s *EmployeeService) ListArchived(ctx context.Context, opts ListOptions) (Page[domain.Employee], error) {
	if err := validatePaging(opts.Page, opts.PageSize); err != nil {
		return Page[domain.Employee]{}, err
	}
	items, total, err := s.repo.ListArchived(ctx, repository.ListParams{
		Search: strings.TrimSpace(opts.Search),
		Limit:  opts.PageSize,
		Offset: opts.offset(),
	})
	if err != nil {
		return Page[domain.Employee]{}, err
	}
	return newPage(items, total, opts), nil
}

// ListAll returns the unpaginated listing used for export and lookup-assist.
func (s *EmployeeService) ListAll(ctx context.Context, opts AllOptions) ([]domain.Employee, error) {
	items, err := s.repo.ListAll(ctx, repository.AllFilter{
		IncludeArchived: opts.IncludeArchived,
		CreatedFrom:     opts.CreatedFrom,
		CreatedTo:       opts.CreatedTo,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Employee{}
	}
	return items, nil
}

// checkIdentityConflict probes the store for another non-purged employee
// sharing one of the identity fields. The conflicting field is reported in
// the same order the original data entry screens check them.
func (s *EmployeeService) checkIdentityConflict(ctx context.Context, emp *domain.Employee, excludeID string) error {
	existing, err := s.repo.FindConflict(ctx, emp, excludeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	conflicts := []struct {
		field   string
		message string
		match   bool
	}{
		{"nik", "NIK already exists", existing.NIK == emp.NIK},
		{"email", "email already exists", existing.Email == emp.Email},
		{"account_number", "account number already exists", existing.AccountNumber == emp.AccountNumber},
		{"npwp", "NPWP already exists", existing.NPWP == emp.NPWP},
		{"bpjs_tk", "BPJS Ketenagakerjaan number already exists", existing.BPJSTK == emp.BPJSTK},
		{"bpjs_ks", "BPJS Kesehatan number already exists", existing.BPJSKS == emp.BPJSKS},
		{"nip", "NIP already exists", existing.NIP == emp.NIP},
	}
	for _, c := range conflicts {
		if c.match {
			return apperrors.NewConflict(c.message, map[string]any{
				"field":         c.field,
				"conflict_with": stateLabel(existing.Archived()),
			})
		}
	}
	return apperrors.NewConflict("employee identity field already exists", map[string]any{
		"conflict_with": stateLabel(existing.Archived()),
	})
}

func (s *EmployeeService) publish(ctx context.Context, eventType events.EventType, recordID string, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    domain.KindEmployee,
		RecordID:  recordID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (in EmployeeInput) trimmed() EmployeeInput {
	in.NIK = strings.TrimSpace(in.NIK)
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Address = strings.TrimSpace(in.Address)
	in.DomicileAddress = strings.TrimSpace(in.DomicileAddress)
	in.Religion = strings.TrimSpace(in.Religion)
	in.Nationality = strings.TrimSpace(in.Nationality)
	in.Education = strings.TrimSpace(in.Education)
	in.PhonePrimary = strings.TrimSpace(in.PhonePrimary)
	in.PhoneSecondary = strings.TrimSpace(in.PhoneSecondary)
	in.Email = strings.TrimSpace(in.Email)
	in.BankName = strings.TrimSpace(in.BankName)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.NPWP = strings.TrimSpace(in.NPWP)
	in.BPJSTK = strings.TrimSpace(in.BPJSTK)
	in.BPJSKS = strings.TrimSpace(in.BPJSKS)
	in.NIP = strings.TrimSpace(in.NIP)
	in.Status = strings.TrimSpace(in.Status)
	return in
}

func (in EmployeeInput) toDomain() *domain.Employee {
	return &domain.Employee{
		NIK:             in.NIK,
		Fullname:        in.Fullname,
		DateOfBirth:     in.DateOfBirth,
		Gender:          in.Gender,
		Address:         in.Address,
		DomicileAddress: in.DomicileAddress,
		Religion:        in.Religion,
		Nationality:     in.Nationality,
		Education:       in.Education,
		PhonePrimary:    in.PhonePrimary,
		PhoneSecondary:  in.PhoneSecondary,
		Email:           in.Email,
		BankName:        in.BankName,
		AccountNumber:   in.AccountNumber,
		NPWP:            in.NPWP,
		BPJSTK:          in.BPJSTK,
		BPJSKS:          in.BPJSKS,
		HireDate:        in.HireDate,
		NIP:             in.NIP,
		Status:          in.Status,
	}
}
