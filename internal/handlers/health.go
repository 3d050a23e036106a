package handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/fluxio-api/internal/logger"
	"github.com/sbilibin2017/fluxio-api/internal/models"
)

// DBPinger checks database reachability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// NewRootHandler returns the liveness handler.
// @Summary API status
// @Tags health
// @Produce json
// @Success 200 {object} models.Envelope{data=models.MessageResult}
// @Router / [get]
func NewRootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, models.MessageResult{Message: MsgRunning})
	}
}

// NewTestDBHandler returns the database health handler.
// @Summary Database health
// @Description Runs SELECT 1 against the database
// @Tags health
// @Produce json
// @Success 200 {object} models.Envelope{data=models.MessageResult}
// @Failure 500 {object} models.Envelope "Database connection error"
// @Router /test-db [get]
func NewTestDBHandler(db DBPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			logger.Log.Errorw("database ping failed", "err", err)
			WriteError(w, http.StatusInternalServerError, MsgDBError)
			return
		}
		WriteJSON(w, http.StatusOK, models.MessageResult{Message: MsgDBOK})
	}
}

// NotFoundHandler answers unmatched routes and methods.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, MsgNotFound)
}
