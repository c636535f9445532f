package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-pim-sync/internal/app"
)

// WriteJSON writes data as an application/json body with statusCode. When
// data cannot be encoded nothing is written but a 500 with
// [app.MsgInternalServerError], and the encoding error is returned.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, app.MsgInternalServerError, http.StatusInternalServerError)
		return 0, fmt.Errorf("encoding admin response: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return w.Write(body)
}
