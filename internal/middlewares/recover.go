package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/sbilibin2017/fluxio-api/internal/handlers"
	"github.com/sbilibin2017/fluxio-api/internal/logger"
)

// Recoverer turns a panic in a handler into the generic 500 envelope. The
// panic value and stack are logged, never sent to the client. When the
// handler already started the response nothing more is written.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw, ok := w.(*responseWriter)
		if !ok {
			rw = &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		}

		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.Log.Errorw("panic recovered",
				"request_id", GetRequestID(r.Context()),
				"panic", rec,
				"stack", string(debug.Stack()),
				"response_started", rw.wroteHeader,
			)
			if rw.wroteHeader {
				return
			}
			handlers.WriteError(rw, http.StatusInternalServerError, handlers.MsgInternalError)
		}()

		next.ServeHTTP(rw, r)
	})
}
