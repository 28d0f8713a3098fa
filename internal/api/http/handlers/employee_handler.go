package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/records-service/internal/api/dto"
	"github.com/spec-kit/records-service/internal/cache"
	"github.com/spec-kit/records-service/internal/config"
	"github.com/spec-kit/records-service/internal/domain"
	"github.com/spec-kit/records-service/internal/export"
	"github.com/spec-kit/records-service/internal/service"
	apperrors "github.com/spec-kit/records-service/pkg/util/errorutil"
)

const dateLayout = "2006-01-02"

// EmployeesHandler manages employee endpoints.
type EmployeesHandler struct {
	service    *service.EmployeeService
	lookups    *cache.LookupCache
	pagination config.PaginationConfig
}

// NewEmployeesHandler constructs the handler.
func NewEmployeesHandler(employeeService *service.EmployeeService, lookups *cache.LookupCache, pagination config.PaginationConfig) *EmployeesHandler {
	return &EmployeesHandler{service: employeeService, lookups: lookups, pagination: pagination}
}

// List GET /employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	opts := listOptionsFromQuery(c, h.pagination.DefaultPageSize, h.pagination.MaxPageSize)
	page, err := h.service.ListActive(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(employeePage(page))
}

// ListArchived GET /employees/archived.
func (h *EmployeesHandler) ListArchived(c *fiber.Ctx) error {
	opts := listOptionsFromQuery(c, h.pagination.DefaultPageSize, h.pagination.MaxPageSize)
	page, err := h.service.ListArchived(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(employeePage(page))
}

// Get GET /employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	emp, err := h.service.GetByID(c.UserContext(), c.Params("id"), parseBoolParam(c, "include_archived"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": employeeResponse(emp)})
}

// Create POST /employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := employeeInputFromRequest(req)
	if err != nil {
		return err
	}
	emp, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "employee created successfully",
		"data":    employeeResponse(emp),
	})
}

// Update PUT /employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	var req dto.EmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input, err := employeeInputFromRequest(req)
	if err != nil {
		return err
	}
	emp, err := h.service.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "employee updated successfully",
		"data":    employeeResponse(emp),
	})
}

// Archive DELETE /employees/:id.
func (h *EmployeesHandler) Archive(c *fiber.Ctx) error {
	if err := h.service.Archive(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "employee archived"})
}

// BatchArchive POST /employees/batch/archive.
func (h *EmployeesHandler) BatchArchive(c *fiber.Ctx) error {
	var req dto.BatchIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.BatchArchive(c.UserContext(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(dto.BatchArchiveResponse{ArchivedIDs: result.Done, SkippedIDs: result.Skipped})
}

// Restore POST /employees/:id/restore.
func (h *EmployeesHandler) Restore(c *fiber.Ctx) error {
	emp, err := h.service.Restore(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "employee restored",
		"data":    employeeResponse(emp),
	})
}

// BatchRestore POST /employees/batch/restore.
func (h *EmployeesHandler) BatchRestore(c *fiber.Ctx) error {
	var req dto.BatchIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.BatchRestore(c.UserContext(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(dto.BatchRestoreResponse{RestoredIDs: result.Done, SkippedIDs: result.Skipped})
}

// Purge DELETE /employees/:id/purge.
func (h *EmployeesHandler) Purge(c *fiber.Ctx) error {
	if err := h.service.Purge(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "employee permanently deleted"})
}

// ListAll GET /employees/all.
func (h *EmployeesHandler) ListAll(c *fiber.Ctx) error {
	opts := allOptionsFromQuery(c)
	cacheable := !opts.IncludeArchived && opts.CreatedFrom == nil && opts.CreatedTo == nil
	if cacheable {
		if payload, ok := h.lookups.Get(c.UserContext(), domain.KindEmployee); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(payload)
		}
	}

	items, err := h.service.ListAll(c.UserContext(), opts)
	if err != nil {
		return err
	}
	responses := make([]dto.EmployeeResponse, 0, len(items))
	for i := range items {
		responses = append(responses, employeeResponse(&items[i]))
	}

	body := fiber.Map{"data": responses}
	if cacheable {
		if payload, err := json.Marshal(body); err == nil {
			h.lookups.Set(c.UserContext(), domain.KindEmployee, payload)
		}
	}
	return c.JSON(body)
}

// Export GET /employees/export.
func (h *EmployeesHandler) Export(c *fiber.Ctx) error {
	items, err := h.service.ListAll(c.UserContext(), allOptionsFromQuery(c))
	if err != nil {
		return err
	}
	buf, err := export.EmployeesWorkbook(items)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="employees.xlsx"`)
	return c.Send(buf.Bytes())
}

func employeeInputFromRequest(req dto.EmployeeRequest) (service.EmployeeInput, error) {
	dateOfBirth, err := parseDateField("date_of_birth", req.DateOfBirth)
	if err != nil {
		return service.EmployeeInput{}, err
	}
	hireDate, err := parseDateField("hire_date", req.HireDate)
	if err != nil {
		return service.EmployeeInput{}, err
	}
	return service.EmployeeInput{
		NIK:             req.NIK,
		Fullname:        req.Fullname,
		DateOfBirth:     dateOfBirth,
		Gender:          req.Gender,
		Address:         req.Address,
		DomicileAddress: req.DomicileAddress,
		Religion:        req.Religion,
		Nationality:     req.Nationality,
		Education:       req.Education,
		PhonePrimary:    req.NumberTelephone1,
		PhoneSecondary:  req.NumberTelephone2,
		Email:           req.Email,
		BankName:        req.BankAccount,
		AccountNumber:   req.AccountNumber,
		NPWP:            req.NPWP,
		BPJSTK:          req.BPJSTK,
		BPJSKS:          req.BPJSKS,
		HireDate:        hireDate,
		NIP:             req.NIP,
		Status:          req.EmployeeStatus,
	}, nil
}

// parseDateField leaves absent values as the zero time so the engine reports
// them as missing required fields.
func parseDateField(name, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(name+" must use the YYYY-MM-DD format", map[string]any{"field": name})
	}
	return parsed, nil
}

func employeePage(page service.Page[domain.Employee]) dto.PagedResponse[dto.EmployeeResponse] {
	items := make([]dto.EmployeeResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, employeeResponse(&page.Items[i]))
	}
	return dto.PagedResponse[dto.EmployeeResponse]{
		Data:        items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}

func employeeResponse(emp *domain.Employee) dto.EmployeeResponse {
	return dto.EmployeeResponse{
		ID:               emp.ID,
		NIK:              emp.NIK,
		Fullname:         emp.Fullname,
		DateOfBirth:      emp.DateOfBirth.Format(dateLayout),
		Gender:           emp.Gender,
		Address:          emp.Address,
		DomicileAddress:  emp.DomicileAddress,
		Religion:         emp.Religion,
		Nationality:      emp.Nationality,
		Education:        emp.Education,
		NumberTelephone1: emp.PhonePrimary,
		NumberTelephone2: emp.PhoneSecondary,
		Email:            emp.Email,
		BankAccount:      emp.BankName,
		AccountNumber:    emp.AccountNumber,
		NPWP:             emp.NPWP,
		BPJSTK:           emp.BPJSTK,
		BPJSKS:           emp.BPJSKS,
		HireDate:         emp.HireDate.Format(dateLayout),
		NIP:              emp.NIP,
		EmployeeStatus:   emp.Status,
		CreatedAt:        emp.CreatedAt,
		UpdatedAt:        emp.UpdatedAt,
		ArchivedAt:       emp.ArchivedAt,
	}
}
