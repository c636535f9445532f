package handler

import (
	"github.com/MKhiriev/go-pim-sync/internal/config"
	"github.com/MKhiriev/go-pim-sync/internal/handler/http"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/service"
)

// Handlers groups the request handlers of the optional outer surfaces.
// HTTP is nil when no admin address is configured.
type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, status http.StatusProvider, cfg config.Server, logger *logger.Logger) *Handlers {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}
	if cfg.AdminAddress != "" {
		handlers.HTTP = http.NewHandler(services, status, cfg.AdminToken, logger)
	}

	return handlers
}
