package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"talentbridge/internal/middleware"
	"talentbridge/internal/model"
	"talentbridge/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, payload model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.APIResponse{Success: true, Data: data})
}

func writeSuccessMeta(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	writeJSON(w, status, model.APIResponse{Success: true, Data: data, Meta: meta})
}

// writeError maps service and repository errors onto the envelope. Unknown
// errors become opaque 500s; their details stay in the log.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(apiErr.RetryAfter))
		}
		writeJSON(w, apiErr.HTTPStatus, model.APIResponse{
			Success: false,
			Error: &model.APIError{
				Code:       apiErr.Code,
				Message:    apiErr.Message,
				Details:    apiErr.Details,
				RetryAfter: apiErr.RetryAfter,
			},
		})
		return
	}

	code, message, status := classify(err)
	writeJSON(w, status, model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
}

func classify(err error) (code string, message string, status int) {
	switch {
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrUniversityNotFound),
		errors.Is(err, model.ErrJobNotFound),
		errors.Is(err, model.ErrProjectNotFound),
		errors.Is(err, model.ErrTaskNotFound),
		errors.Is(err, model.ErrTokenNotFound):
		return "NOT_FOUND", "resource not found", http.StatusNotFound
	case errors.Is(err, model.ErrUserAlreadyExists):
		return "ALREADY_EXISTS", "user already exists", http.StatusConflict
	case errors.Is(err, model.ErrAlreadyApplied):
		return "ALREADY_EXISTS", "you have already applied to this job", http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials):
		return "UNAUTHORIZED", "invalid email or password", http.StatusUnauthorized
	case errors.Is(err, model.ErrUnauthorized):
		return "UNAUTHORIZED", "authentication required", http.StatusUnauthorized
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrNotProjectMember):
		return "FORBIDDEN", "insufficient permissions", http.StatusForbidden
	case errors.Is(err, model.ErrTokenExpired), errors.Is(err, model.ErrTokenUsed):
		return "BAD_REQUEST", "invalid or expired token", http.StatusBadRequest
	case errors.Is(err, model.ErrInvalidInput):
		return "BAD_REQUEST", "invalid input", http.StatusBadRequest
	default:
		slog.Error("unhandled error", "error", err)
		return "INTERNAL_ERROR", "An internal error occurred", http.StatusInternalServerError
	}
}

// requireClaims pulls the verified claims the auth middleware stored on the
// request. Routes behind RequireAuth always have them; the guard covers
// misconfigured routes.
func requireClaims(w http.ResponseWriter, r *http.Request) (*model.AuthClaims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return nil, false
	}
	return claims, true
}

// decodeJSON enforces a body size cap and rejects unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return apierror.New("BAD_REQUEST", "invalid request body", err.Error(), http.StatusBadRequest)
	}
	return nil
}
