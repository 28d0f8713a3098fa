package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/records-service/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// parsePageParam returns the fallback when the parameter is absent. A present
// but malformed value parses to zero so the engine rejects it as an invalid
// argument instead of being silently corrected.
func parsePageParam(c *fiber.Ctx, key string, fallback int) int {
	val := c.Query(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return parsed
}

func parseBoolParam(c *fiber.Ctx, key string) bool {
	val := strings.ToLower(c.Query(key))
	return val == "true" || val == "1"
}

func parseTimeParam(c *fiber.Ctx, key string) *time.Time {
	val := c.Query(key)
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func listOptionsFromQuery(c *fiber.Ctx, defaultPageSize, maxPageSize int) service.ListOptions {
	pageSize := parsePageParam(c, "pageSize", defaultPageSize)
	if maxPageSize > 0 && pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return service.ListOptions{
		Page:     parsePageParam(c, "page", 1),
		PageSize: pageSize,
		Search:   c.Query("search"),
	}
}

func allOptionsFromQuery(c *fiber.Ctx) service.AllOptions {
	return service.AllOptions{
		IncludeArchived: parseBoolParam(c, "include_archived"),
		CreatedFrom:     parseTimeParam(c, "created_from"),
		CreatedTo:       parseTimeParam(c, "created_to"),
	}
}
