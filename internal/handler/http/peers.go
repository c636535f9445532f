package http

import (
	"net/http"

	"github.com/MKhiriev/go-pim-sync/internal/app"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
)

// revokePeers forgets every remembered desktop credential. The next
// connection of any desktop prompts the device owner again.
func (h *Handler) revokePeers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if err := h.services.Auth.Revoke(r.Context()); err != nil {
		log.Err(err).Msg("revoking trusted peers failed")
		status := statusFromError(err)
		http.Error(w, messageFromStatus(status, app.MsgRevokeFailed), status)
		return
	}

	log.Info().Msg("trusted peers revoked")
	w.WriteHeader(http.StatusNoContent)
}
