package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/outboundops/smartlead-sync/internal/repository"
)

// listRunsHandler serves the recent sync audit trail, newest first.
func listRunsHandler(runs repository.SyncRunsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 50
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}

		list, err := runs.ListRecent(c.Request().Context(), limit)
		if err != nil {
			c.Logger().Errorf("list runs failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(list),
			"results": list,
		})
	}
}
