// Package pg opens pgx connection pools and runs goose migrations for the
// postgres store.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrationsFS, cfg, logger); err != nil {
//	    return err
//	}
//
// Healthcheck adapts the pool to the func(context.Context) error shape used by
// the HTTP server's health endpoint. IsNotFoundError, IsDuplicateKeyError and
// IsForeignKeyViolationError classify pgx errors.
package pg
