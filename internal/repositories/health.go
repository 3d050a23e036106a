package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// HealthRepository checks database liveness.
type HealthRepository struct {
	connector
}

// NewHealthRepository creates a health repository. connGetter may be nil.
func NewHealthRepository(db *sqlx.DB, connGetter ConnGetter) *HealthRepository {
	return &HealthRepository{connector{db: db, connGetter: connGetter}}
}

// Ping runs a trivial query on an acquired connection.
func (r *HealthRepository) Ping(ctx context.Context) error {
	const query = `SELECT 1`

	conn, release, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	var one int
	err = conn.GetContext(ctx, &one, query)
	logQuery(query, nil, one, err)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
