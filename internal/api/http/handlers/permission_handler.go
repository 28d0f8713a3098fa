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

// PermissionsHandler manages permission endpoints.
type PermissionsHandler struct {
	service    *service.PermissionService
	lookups    *cache.LookupCache
	pagination config.PaginationConfig
}

// NewPermissionsHandler constructs the handler.
func NewPermissionsHandler(permissionService *service.PermissionService, lookups *cache.LookupCache, pagination config.PaginationConfig) *PermissionsHandler {
	return &PermissionsHandler{service: permissionService, lookups: lookups, pagination: pagination}
}

// List GET /permissions.
func (h *PermissionsHandler) List(c *fiber.Ctx) error {
	opts := listOptionsFromQuery(c, h.pagination.DefaultPageSize, h.pagination.MaxPageSize)
	page, err := h.service.ListActive(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(permissionPage(page))
}

// ListArchived GET /permissions/archived.
func (h *PermissionsHandler) ListArchived(c *fiber.Ctx) error {
	opts := listOptionsFromQuery(c, h.pagination.DefaultPageSize, h.pagination.MaxPageSize)
	page, err := h.service.ListArchived(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(permissionPage(page))
}

// Get GET /permissions/:id.
func (h *PermissionsHandler) Get(c *fiber.Ctx) error {
	perm, err := h.service.GetByID(c.UserContext(), c.Params("id"), parseBoolParam(c, "include_archived"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": permissionResponse(perm)})
}

// Create POST /permissions.
func (h *PermissionsHandler) Create(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	perm, err := h.service.Create(c.UserContext(), service.PermissionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "permission created successfully",
		"data":    permissionResponse(perm),
	})
}

// Update PUT /permissions/:id.
func (h *PermissionsHandler) Update(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	perm, err := h.service.Update(c.UserContext(), c.Params("id"), service.PermissionInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "permission updated successfully",
		"data":    permissionResponse(perm),
	})
}

// Archive DELETE /permissions/:id.
func (h *PermissionsHandler) Archive(c *fiber.Ctx) error {
	if err := h.service.Archive(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "permission archived"})
}

// BatchArchive POST /permissions/batch/archive.
func (h *PermissionsHandler) BatchArchive(c *fiber.Ctx) error {
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

// Restore POST /permissions/:id/restore.
func (h *PermissionsHandler) Restore(c *fiber.Ctx) error {
	perm, err := h.service.Restore(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "permission restored",
		"data":    permissionResponse(perm),
	})
}

// BatchRestore POST /permissions/batch/restore.
func (h *PermissionsHandler) BatchRestore(c *fiber.Ctx) error {
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

// Purge DELETE /permissions/:id/purge.
func (h *PermissionsHandler) Purge(c *fiber.Ctx) error {
	if err := h.service.Purge(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "permission permanently deleted"})
}

// ListAll GET /permissions/all.
func (h *PermissionsHandler) ListAll(c *fiber.Ctx) error {
	opts := allOptionsFromQuery(c)
	cacheable := !opts.IncludeArchived && opts.CreatedFrom == nil && opts.CreatedTo == nil
	if cacheable {
		if payload, ok := h.lookups.Get(c.UserContext(), domain.KindPermission); ok {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(payload)
		}
	}

	items, err := h.service.ListAll(c.UserContext(), opts)
	if err != nil {
		return err
	}
	responses := make([]dto.PermissionResponse, 0, len(items))
	for i := range items {
		responses = append(responses, permissionResponse(&items[i]))
	}

	body := fiber.Map{"data": responses}
	if cacheable {
		if payload, err := json.Marshal(body); err == nil {
			h.lookups.Set(c.UserContext(), domain.KindPermission, payload)
		}
	}
	return c.JSON(body)
}

// Export GET /permissions/export.
func (h *PermissionsHandler) Export(c *fiber.Ctx) error {
	items, err := h.service.ListAll(c.UserContext(), allOptionsFromQuery(c))
	if err != nil {
		return err
	}
	buf, err := export.PermissionsWorkbook(items)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="permissions.xlsx"`)
	return c.Send(buf.Bytes())
}

func permissionPage(page service.Page[domain.Permission]) dto.PagedResponse[dto.PermissionResponse] {
	items := make([]dto.PermissionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, permissionResponse(&page.Items[i]))
	}
	return dto.PagedResponse[dto.PermissionResponse]{
		Data:        items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}

func permissionResponse(perm *domain.Permission) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:          perm.ID,
		Name:        perm.Name,
		Description: perm.Description,
		CreatedAt:   perm.CreatedAt,
		UpdatedAt:   perm.UpdatedAt,
		ArchivedAt:  perm.ArchivedAt,
	}
}
