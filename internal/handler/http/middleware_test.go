package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-pim-sync/internal/app"
	"github.com/MKhiriev/go-pim-sync/internal/logger"
	"github.com/MKhiriev/go-pim-sync/internal/utils"
)

func TestGetTokenFromAuthHeader(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "BEARER  abc ", want: "abc"},
		{header: "Bearer", wantErr: ErrInvalidAuthorizationHeader},
		{header: "Token abc", wantErr: ErrInvalidAuthorizationHeader},
		{header: "Bearer ", wantErr: ErrEmptyToken},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := getTokenFromAuthHeader(tt.header)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	w.WriteHeader(http.StatusAccepted)
	w.WriteHeader(http.StatusTeapot)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	_, _ = w.Write([]byte(" world"))

	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusAccepted, w.status)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 11, w.size)
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	_, _ = w.Write([]byte("x"))
	assert.Equal(t, http.StatusOK, w.status)
	assert.True(t, w.wroteHeader)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFromError(assert.AnError))
}

func TestWithTraceID_StoresTraceInContext(t *testing.T) {
	h := &Handler{logger: logger.Nop()}

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ok bool
		got, ok = utils.GetTraceIDFromContext(r.Context())
		require.True(t, ok)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set(traceIDHeader, "trace-7")
	rec := httptest.NewRecorder()
	h.withTraceID(next).ServeHTTP(rec, req)

	assert.Equal(t, "trace-7", got)
	assert.Equal(t, "trace-7", rec.Header().Get(traceIDHeader))
}

func TestMessageFromStatus(t *testing.T) {
	assert.Equal(t, app.MsgStorageUnavailable, messageFromStatus(http.StatusServiceUnavailable, "x"))
	assert.Equal(t, app.MsgInternalServerError, messageFromStatus(http.StatusInternalServerError, "x"))
	assert.Equal(t, "x", messageFromStatus(http.StatusForbidden, "x"))
}
