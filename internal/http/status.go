package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/outboundops/smartlead-sync/internal/repository"
)

// statusHandler reports the mirror row count and the most recent run.
func statusHandler(accounts repository.AccountsRepository, runs repository.SyncRunsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		total, err := accounts.Count(ctx)
		if err != nil {
			c.Logger().Errorf("count accounts failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		last, err := runs.Latest(ctx)
		if err != nil {
			c.Logger().Errorf("latest run failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "query failed"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"rows":     total,
			"last_run": last, // null when no run exists yet
		})
	}
}
