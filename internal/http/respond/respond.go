// Package respond writes JSON responses in the API's envelope.
package respond

import (
	"encoding/json"
	"log"
	"net/http"

	apperrors "imagemarket/internal/errors"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("respond: encode: %v", err)
	}
}

// Error writes {success:false, message} with the status for err's kind.
// Internal errors are logged and reported with fallback.
func Error(w http.ResponseWriter, err error, fallback string) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	JSON(w, status, map[string]any{
		"success": false,
		"message": apperrors.PublicMessage(err, fallback),
	})
}
