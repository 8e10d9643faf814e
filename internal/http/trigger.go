package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/outboundops/smartlead-sync/internal/credential"
	"github.com/outboundops/smartlead-sync/internal/service/sync"
	"github.com/outboundops/smartlead-sync/internal/smartlead"
)

// triggerSyncHandler resolves the bearer token and runs one synchronous sync.
// Concurrent triggers are not serialized; each records its own audit row.
func triggerSyncHandler(svc *sync.Service, chain credential.Chain) echo.HandlerFunc {
	return func(c echo.Context) error {
		bearer, err := chain.Resolve(c.Request().Context())
		if err != nil {
			if errors.Is(err, credential.ErrNotFound) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			log.Errorf("resolve bearer failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "credential lookup failed"})
		}

		n, err := svc.Run(c.Request().Context(), bearer)
		if err != nil {
			if errors.Is(err, smartlead.ErrUnauthorized) {
				return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
			}
			log.Errorf("sync failed: %v", err)

			return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"ok":            true,
			"rows_upserted": n,
		})
	}
}
