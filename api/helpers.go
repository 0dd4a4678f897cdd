package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/skillflow/skillflow/pkg/apperrors"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses: not found 404,
// conflict 409, validation 400, everything else 500 with a generic body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusNotFound)
	case errors.Is(err, apperrors.ErrConflict):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusConflict)
	case errors.Is(err, apperrors.ErrValidation):
		writeJSON(w, errorResponse{Error: err.Error()}, http.StatusBadRequest)
	default:
		logger.Error("internal error", "error", err)
		writeJSON(w, errorResponse{Error: "internal server error"}, http.StatusInternalServerError)
	}
}

// pathID extracts the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrValidation
	}
	return id, nil
}

// pagination reads limit/offset query params with the usual bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	q := r.URL.Query()
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

type listResponse struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Items  any   `json:"items"`
}
