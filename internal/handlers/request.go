package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/middleware"
	"github.com/minidebet/backend/internal/services"
)

const maxBodyBytes = 1_048_576

// decodeJSON reads exactly one JSON object into dst and validates it. It
// writes the error response itself and reports whether the caller may
// continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, v *services.ValidationHelper, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			services.SendErrorResponse(w, "Request body too large", http.StatusRequestEntityTooLarge, nil)
			return false
		}
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}

	if err := v.ValidateStruct(dst); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// accountID returns the authenticated account. Routes using it sit behind
// middleware.Auth, so a miss means the router is misconfigured.
func accountID(w http.ResponseWriter, r *http.Request, log *logger.Logger) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		log.Errorw("handler reached without claims", "path", r.URL.Path)
		services.SendErrorResponse(w, "Invalid or expired token", http.StatusUnauthorized, nil)
		return "", false
	}
	return claims.AccountID, true
}
