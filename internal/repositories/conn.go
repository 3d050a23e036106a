package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/fluxio-api/internal/logger"
)

// ConnGetter returns the connection bound to the current request, or nil when
// the request has no connection scope.
type ConnGetter func(ctx context.Context) (*sqlx.Conn, error)

// connector hands out a connection for a single store operation.
type connector struct {
	db         *sqlx.DB
	connGetter ConnGetter
}

// acquire returns a request-scoped connection when one is available, otherwise a
// fresh one. The returned release func must always be called; it is a no-op for
// scoped connections, which are released by their owner.
func (c connector) acquire(ctx context.Context) (*sqlx.Conn, func(), error) {
	if c.connGetter != nil {
		conn, err := c.connGetter(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("acquire scoped connection: %w", err)
		}
		if conn != nil {
			return conn, func() {}, nil
		}
	}

	conn, err := c.db.Connx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, func() {
		if err := conn.Close(); err != nil {
			logger.Log.Warnw("failed to release connection", "error", err)
		}
	}, nil
}

// logQuery logs a statement on a single line with its args, result and error.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}
