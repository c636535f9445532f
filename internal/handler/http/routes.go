package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, h.withTraceID, h.withLogging)

	router.Group(func(r chi.Router) {
		r.Get("/api/version", h.getServerVersion)
		r.Get("/api/status", h.getStatus)
	})

	// state changing routes
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Delete("/api/peers", h.revokePeers)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
