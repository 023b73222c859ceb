package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:             http.StatusBadRequest,
	apperr.KindAuthorization:          http.StatusForbidden,
	apperr.KindNotFound:               http.StatusNotFound,
	apperr.KindInvalidStateTransition: http.StatusConflict,
	apperr.KindInsufficientInventory:  http.StatusUnprocessableEntity,
	apperr.KindTransient:              http.StatusServiceUnavailable,
}

// writeError translates a core error into a response. Transient failures
// are logged and reported without internal detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if kind == apperr.KindTransient {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", RequestID(r.Context()), "error", err)
		w.Header().Set("Retry-After", "1")
		message = "temporarily unavailable, retry the request"
		var e *apperr.Error
		if errors.As(err, &e) && e.Message != "" {
			message = e.Message + ": " + message
		}
	}
	jsonResponse(w, status, errorBody{Error: message, Kind: string(kind)})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// parseFilter reads the shared list and metrics query parameters.
func parseFilter(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	var f model.Filter

	for name, dst := range map[string]*int64{
		"base_id":           &f.BaseID,
		"equipment_type_id": &f.EquipmentTypeID,
	} {
		if v := q.Get(name); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil || id <= 0 {
				return model.Filter{}, apperr.Validation("%s must be a positive integer", name)
			}
			*dst = id
		}
	}

	for name, dst := range map[string]*model.Date{
		"start_date": &f.StartDate,
		"end_date":   &f.EndDate,
	} {
		if v := q.Get(name); v != "" {
			d, err := model.ParseDate(v)
			if err != nil {
				return model.Filter{}, apperr.Validation("%s: %v", name, err)
			}
			*dst = d
		}
	}

	f.Status = q.Get("status")
	return f, nil
}
