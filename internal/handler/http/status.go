package http

import (
	"net/http"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/utils"
)

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	status := h.status.Status(r.Context())

	if _, err := utils.WriteJSON(w, status, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing session status")
	}
}
