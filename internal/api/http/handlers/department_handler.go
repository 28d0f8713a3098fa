package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/records-service/internal/api/dto"
	"github.com/spec-kit/records-service/internal/cache"
	"github.com/spec-kit/records-service/internal/config"
	"github.com/spec-kit/records-service/internal/domain"
	"github.com/spec-kit/records-service/internal/export"
	"github.com/spec-kit/records-service/internal/service"
	apperrors "github.com/spec-kit/records-service/pkg/util/errorutil"
)

// DepartmentsHandler manages department endpoints.
type DepartmentsHandler struct {
	service    *service.DepartmentService
	lookups    *cache.LookupCache
	pagination config.PaginationConfig
}

// NewDepartmentsHandler constructs the handler.
func NewDepartmentsHandler(departmentService *service.DepartmentService, lookups *cache.LookupCache, pagination config.PaginationConfig) *DepartmentsHandler {
	return &DepartmentsHandler{service: departmentService, lookups: lookups, pagination: pagination}
}

// List GET /departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	opts := listOptionsFromQuery(c, h.pagination.DefaultPageSize, h.pagination.MaxPageSize)
	page, err := h.service.ListActive(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(departmentPage(page))
}

// ListArchived GET /departments/archived.
func (h *DepartmentsHandler) ListArchived(c *fiber.Ctx) error {
	opts := listOptionsFromQuery(c, h.pagination.DefaultPageSize, h.pagination.MaxPageSize)
	page, err := h.service.ListArchived(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(departmentPage(page))
}

// Get GET /departments/:id.
func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	dept, err := h.service.GetByID(c.UserContext(), c.Params("id"), parseBoolParam(c, "include_archived"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// Create POST /departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.Create(c.UserContext(), service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "department created successfully",
		"data":    departmentResponse(dept),
	})
}

// Update PUT /departments/:id.
func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.Update(c.UserContext(), c.Params("id"), service.DepartmentInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "department updated successfully",
		"data":    departmentResponse(dept),
	})
}

// Archive DELETE /departments/:id.
func (h *DepartmentsHandler) Archive(c *fiber.Ctx) error {
	if err := h.service.Archive(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "department archived"})
}

// BatchArchive POST /departments/batch/archive.
func (h *DepartmentsHandler) BatchArchive(c *fiber.Ctx) error {
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

// Restore POST /departments/:id/restore.
func (h *DepartmentsHandler) Restore(c *fiber.Ctx) error {
	dept, err := h.service.Restore(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "department restored",
		"data":    departmentResponse(dept),
	})
}

// BatchRestore POST /departments/batch/restore.
func (h *DepartmentsHandler) BatchRestore(c *fiber.Ctx) error {
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

// Purge DELETE /departments/:id/purge.
func (h *DepartmentsHandler) Purge(c *fiber.Ctx) error {
	if err := h.service.Purge(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "department permanently deleted"})
}

// ListAll GET /departments/all. Unfiltered calls serve the lookup-assist
// cache; filtered calls always hit the store.
func (h *DepartmentsHandler) ListAll(c *fiber.Ctx) error {
	opts := allOptionsFromQuery(c)
	cacheable := !opts.IncludeArchived && opts.CreatedFrom == nil && opts.CreatedTo == nil
	if cacheable {
		if payload, ok := h.lookups.Get(c.UserContext(), domain.KindDepartment); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(payload)
		}
	}

	items, err := h.service.ListAll(c.UserContext(), opts)
	if err != nil {
		return err
	}
	responses := make([]dto.DepartmentResponse, 0, len(items))
	for i := range items {
		responses = append(responses, departmentResponse(&items[i]))
	}

	body := fiber.Map{"data": responses}
	if cacheable {
		if payload, err := json.Marshal(body); err == nil {
			h.lookups.Set(c.UserContext(), domain.KindDepartment, payload)
		}
	}
	return c.JSON(body)
}

// Export GET /departments/export.
func (h *DepartmentsHandler) Export(c *fiber.Ctx) error {
	items, err := h.service.ListAll(c.UserContext(), allOptionsFromQuery(c))
	if err != nil {
		return err
	}
	buf, err := export.DepartmentsWorkbook(items)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="departments.xlsx"`)
	return c.Send(buf.Bytes())
}

func departmentPage(page service.Page[domain.Department]) dto.PagedResponse[dto.DepartmentResponse] {
	items := make([]dto.DepartmentResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, departmentResponse(&page.Items[i]))
	}
	return dto.PagedResponse[dto.DepartmentResponse]{
		Data:        items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Description: dept.Description,
		CreatedAt:   dept.CreatedAt,
		UpdatedAt:   dept.UpdatedAt,
		ArchivedAt:  dept.ArchivedAt,
	}
}
