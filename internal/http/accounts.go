package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/outboundops/smartlead-sync/internal/repository"
)

// listAccountsHandler serves a newest-first preview of the mirror table.
func listAccountsHandler(accounts repository.AccountsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := 200
		offset := 0
		if v := c.QueryParam("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		if v := c.QueryParam("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		rows, err := accounts.ListRecent(c.Request().Context(), limit, offset)
		if err != nil {
			c.Logger().Errorf("list accounts failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"limit":   limit,
			"offset":  offset,
			"count":   len(rows),
			"results": rows,
		})
	}
}
