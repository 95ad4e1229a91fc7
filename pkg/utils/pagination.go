package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents pagination parameters extracted from a request.
type PaginationParams struct {
	Limit  int
	Offset int
}

// GetPaginationParams reads limit/offset query parameters, falling back to
// the given default limit and clamping at 100.
func GetPaginationParams(c echo.Context, defaultLimit int) PaginationParams {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	return PaginationParams{
		Limit:  limit,
		Offset: offset,
	}
}
