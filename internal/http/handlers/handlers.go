// Package handlers implements the JSON API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/models"
	"imagemarket/internal/security"
)

const maxJSONBody = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.KindValidation, "Invalid request", err)
	}
	return nil
}

// identity returns the caller set by the bearer middleware, or the demo user.
func identity(r *http.Request) security.Identity {
	if id, ok := security.IdentityFromContext(r.Context()); ok {
		return id
	}
	return security.Identity{UserID: models.DemoUserID, Email: models.DemoEmail}
}
