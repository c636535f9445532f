package http

import (
	"net/http"

	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Query().Get("format") != "json" {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(h.services.AppInfo.GetAppVersion(ctx)))
		return
	}

	info := h.services.AppInfo.GetBuildInfo(ctx).Info(h.services.AppInfo.ProtocolVersion(ctx))
	if _, err := utils.WriteJSON(w, info, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Msg("writing version info")
	}
}
