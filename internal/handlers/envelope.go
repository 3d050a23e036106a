package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sbilibin2017/fluxio-api/internal/logger"
	"github.com/sbilibin2017/fluxio-api/internal/models"
	"github.com/sbilibin2017/fluxio-api/internal/services"
	"github.com/sbilibin2017/fluxio-api/internal/validators"
)

// Fixed response messages.
const (
	MsgInternalError = "internal server error"
	MsgNotFound      = "route not found"
	MsgRunning       = "FluxIO API is running"
	MsgDBOK          = "database connection successful"
	MsgDBError       = "database connection error"
	MsgBodyTooLarge  = "request body too large"
)

var errTrailingData = errors.New("request body must contain a single JSON value")

// MaxBodyBytes caps the size of JSON request bodies.
const MaxBodyBytes = 1 << 20

// TimestampFormat is ISO-8601 UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

var now = time.Now

// WriteJSON writes a success envelope carrying data.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, models.Envelope{
		Success: true,
		Data:    data,
	})
}

// WriteError writes a failure envelope with msg as the error.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeEnvelope(w, status, models.Envelope{
		Success: false,
		Error:   &msg,
	})
}

func writeEnvelope(w http.ResponseWriter, status int, env models.Envelope) {
	env.Timestamp = now().UTC().Format(TimestampFormat)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Log.Errorw("failed to encode response", "err", err)
	}
}

// writeServiceError maps a domain error onto its status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case validators.IsValidationError(err):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailAlreadyExists),
		errors.Is(err, services.ErrUsernameAlreadyExists),
		errors.Is(err, services.ErrUserAlreadyExists):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		logger.Log.Errorw("internal server error", "err", err)
		WriteError(w, http.StatusInternalServerError, MsgInternalError)
	}
}

// decodeJSON reads exactly one JSON value from the request body into dst.
// Oversized bodies get 413, anything else that fails to decode or carries
// trailing data is an invalid body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	err := dec.Decode(dst)
	if err == nil {
		if err = dec.Decode(&struct{}{}); err == io.EOF {
			err = nil
		} else if err == nil {
			err = errTrailingData
		}
	}
	if err == nil {
		return true
	}

	logger.Log.Debugw("failed to decode request body", "err", err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		WriteError(w, http.StatusRequestEntityTooLarge, MsgBodyTooLarge)
		return false
	}
	WriteError(w, http.StatusBadRequest, validators.MsgInvalidBody)
	return false
}
