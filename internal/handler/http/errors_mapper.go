package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-pim-sync/internal/app"
	"github.com/MKhiriev/go-pim-sync/internal/service"
	"github.com/MKhiriev/go-pim-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrAuthFailure: http.StatusForbidden,

	store.ErrRecordNotFound:   http.StatusNotFound,
	store.ErrCategoryNotFound: http.StatusNotFound,

	store.ErrBuildingSQLQuery:     http.StatusInternalServerError,
	store.ErrExecutingQuery:       http.StatusServiceUnavailable,
	store.ErrBeginningTransaction: http.StatusServiceUnavailable,
	store.ErrCommitingTransaction: http.StatusServiceUnavailable,
	store.ErrExecutingStatement:   http.StatusServiceUnavailable,
	store.ErrScanningRow:          http.StatusInternalServerError,
	store.ErrScanningRows:         http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageFromStatus picks the response body for an error status. fallback
// is used for statuses without a dedicated message.
func messageFromStatus(status int, fallback string) string {
	switch status {
	case http.StatusServiceUnavailable:
		return app.MsgStorageUnavailable
	case http.StatusInternalServerError:
		return app.MsgInternalServerError
	default:
		return fallback
	}
}
