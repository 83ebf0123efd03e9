package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"portfolio-server/db"
	"portfolio-server/types"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

func writeApiError(w http.ResponseWriter, apiErr types.ApiError) {
	bytes, err := json.Marshal(apiErr)
	if err != nil {
		zap.L().Error("error marshalling api error", zap.Error(err))
		http.Error(w, "Error marshalling response", http.StatusInternalServerError)
		return
	}

	if apiErr.Status >= 500 {
		zap.L().Error("api error", zap.String("type", string(apiErr.Type)), zap.String("msg", apiErr.Msg))
	} else {
		zap.L().Debug("api error", zap.String("type", string(apiErr.Type)), zap.String("msg", apiErr.Msg))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)

	_, writeErr := w.Write(bytes)
	if writeErr != nil {
		zap.L().Warn("error writing response", zap.Error(writeErr))
	}
}

func writeJson(w http.ResponseWriter, status int, v interface{}) {
	bytes, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("error marshalling response", zap.Error(err))
		http.Error(w, "Error marshalling response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(bytes)
	if err != nil {
		zap.L().Warn("error writing response", zap.Error(err))
	}
}

// writeFallback serves default data on a read path whose backing store failed.
func writeFallback(w http.ResponseWriter, v interface{}, cause error) {
	zap.L().Warn("serving fallback payload", zap.Error(cause))
	w.Header().Set("X-Fallback", "true")
	writeJson(w, http.StatusOK, v)
}

// readJson decodes a size-limited body into v, writing a 400 on failure.
func readJson(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeApiError(w, types.ApiError{Type: types.ApiErrorTypeValidation, Status: http.StatusRequestEntityTooLarge, Msg: "Request body too large"})
			return false
		}
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeOther, Status: http.StatusBadRequest, Msg: "Error reading request body"})
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeValidation, Status: http.StatusBadRequest, Msg: "Error parsing request body"})
		return false
	}

	return true
}

// writeDbError maps db sentinel errors to statuses. Anything else is a 500 with a
// generic message; the cause is logged, never sent.
func writeDbError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeNotFound, Status: http.StatusNotFound, Msg: what + " not found"})
	case errors.Is(err, db.ErrConflict):
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeConflict, Status: http.StatusConflict, Msg: what + " already exists"})
	default:
		zap.L().Error("database error", zap.String("entity", what), zap.Error(err))
		writeApiError(w, types.ApiError{Type: types.ApiErrorTypeOther, Status: http.StatusInternalServerError, Msg: "Error processing " + what})
	}
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeApiError(w, types.ApiError{
		Type:   types.ApiErrorTypeValidation,
		Status: http.StatusBadRequest,
		Msg:    "Invalid request",
		Fields: fields,
	})
}

func dbAvailable() error {
	if db.Conn == nil {
		return errors.New("database not connected")
	}
	return nil
}
