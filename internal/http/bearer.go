package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/outboundops/smartlead-sync/internal/repository"
)

type bearerReq struct {
	Token string `json:"token"`
}

// setBearerHandler replaces the stored Smartlead token.
func setBearerHandler(settings repository.SettingsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req bearerReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		token := strings.TrimSpace(req.Token)
		if token == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "token cannot be empty"})
		}

		if err := settings.SetBearer(c.Request().Context(), token); err != nil {
			c.Logger().Errorf("set bearer failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}
}

// clearBearerHandler deletes the stored token.
func clearBearerHandler(settings repository.SettingsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := settings.ClearBearer(c.Request().Context()); err != nil {
			c.Logger().Errorf("clear bearer failed: %v", err)

			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.NoContent(http.StatusNoContent)
	}
}
