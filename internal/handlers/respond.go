package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/middleware"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps service errors onto HTTP status codes. Anything it
// does not recognise is logged and reported as a 500.
func respondError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	var validationErr *common.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": validationErr.Reason})
	case errors.Is(err, common.ErrorValidation):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request"})
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, common.ErrorForbidden):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, common.ErrorNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, common.ErrorAlreadyExists):
		respondJSON(w, http.StatusConflict, map[string]string{"error": "already exists"})
	default:
		logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.Validationf("invalid request body: %v", err)
	}
	return nil
}

// pathID reads a numeric route variable. A malformed ID names nothing, so
// it is reported as not found.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, common.ErrorNotFound
	}
	return id, nil
}

func currentUser(r *http.Request) (int64, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return 0, common.ErrorUnauthorized
	}
	return userID, nil
}
