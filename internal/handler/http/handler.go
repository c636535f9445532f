package http

import (
	"context"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/service"
	"github.com/MKhiriev/go-pim-sync/models"
)

// StatusProvider reports the sync session currently served, if any.
type StatusProvider interface {
	Status(ctx context.Context) models.SessionStatus
}

type Handler struct {
	services *service.Services
	status   StatusProvider

	adminToken string

	logger *logger.Logger
}

func NewHandler(services *service.Services, status StatusProvider, adminToken string, logger *logger.Logger) *Handler {
	logger.Info().Bool("token_required", adminToken != "").Msg("http handler created")
	return &Handler{
		services:   services,
		status:     status,
		adminToken: adminToken,
		logger:     logger,
	}
}
