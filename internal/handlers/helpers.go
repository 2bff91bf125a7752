package handlers

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated user ID placed into the
// context by the JWT middleware, or 0 when the request is anonymous.
func getUserIDFromContext(c echo.Context) uint {
	if id, ok := c.Get("userID").(uint); ok {
		return id
	}
	return 0
}

// parseIDParam parses a numeric path parameter
func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// parsePagination reads page/limit query params with sane bounds
func parsePagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return page, limit
}

// paginationMeta builds the meta block for list responses
func paginationMeta(page, limit int, totalItems int64) echo.Map {
	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))
	return echo.Map{
		"currentPage":  page,
		"totalPages":   totalPages,
		"totalItems":   totalItems,
		"itemsPerPage": limit,
	}
}
