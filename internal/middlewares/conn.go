package middlewares

import (
	"context"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/fluxio-api/internal/logger"
)

// connScope lazily acquires one connection for the lifetime of a request.
type connScope struct {
	db   *sqlx.DB
	mu   sync.Mutex
	conn *sqlx.Conn
}

func (s *connScope) get(ctx context.Context) (*sqlx.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn, nil
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return conn, nil
}

func (s *connScope) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		logger.Log.Errorw("failed to release connection", "error", err)
	}
	s.conn = nil
}

// ConnMiddleware binds a database connection scope to each request. The
// connection is acquired on first use, so requests rejected before reaching the
// store never touch the database, and released once the handler returns,
// including when it panics.
func ConnMiddleware(db *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := &connScope{db: db}
			defer scope.release()

			ctx := setConnScopeToContext(r.Context(), scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// connScopeKey is an unexported type for keys in context
type connScopeKey struct{}

func setConnScopeToContext(ctx context.Context, scope *connScope) context.Context {
	return context.WithValue(ctx, connScopeKey{}, scope)
}

// GetConnFromContext returns the request's connection, acquiring it on first
// call. It returns nil, nil when the context carries no connection scope.
func GetConnFromContext(ctx context.Context) (*sqlx.Conn, error) {
	scope, ok := ctx.Value(connScopeKey{}).(*connScope)
	if !ok || scope == nil {
		return nil, nil
	}
	return scope.get(ctx)
}
