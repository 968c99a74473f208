package pg

import (
	"context"
	"errors"
)

// Pinger is implemented by *pgxpool.Pool and *pgx.Conn.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck returns a probe for httpserver.Check. A nil db always fails.
func Healthcheck(db Pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if db == nil {
			return ErrHealthcheckFailed
		}
		if err := db.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
