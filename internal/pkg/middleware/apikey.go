package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/internal/utils"
)

const (
	APIKeyHeader = "X-API-Key"
)

// APIKeyValidator validates API keys for service-to-service communication
type APIKeyValidator struct {
	serviceKeys map[string]string
}

// NewAPIKeyValidator creates a validator from configured keys
func NewAPIKeyValidator(cfg models.APIKeyConfig) *APIKeyValidator {
	return &APIKeyValidator{
		serviceKeys: map[string]string{
			"match-service": cfg.MatchService,
			"trip-service":  cfg.TripService,
			"admin-panel":   cfg.AdminPanel,
		},
	}
}

// ValidateAPIKey allows requests carrying the key of any of the named services
func (v *APIKeyValidator) ValidateAPIKey(allowedServices ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := c.Request().Header.Get(APIKeyHeader)
			if apiKey == "" {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "API key is required")
			}

			validKey := false
			for _, service := range allowedServices {
				if v.serviceKeys[service] != "" && strings.EqualFold(apiKey, v.serviceKeys[service]) {
					validKey = true
					break
				}
			}

			if !validKey {
				return utils.ErrorResponseHandler(c, http.StatusUnauthorized, "Invalid API key")
			}

			return next(c)
		}
	}
}
