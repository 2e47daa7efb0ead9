// Package db provides the PostgreSQL connection pool and runs the
// embedded goose migrations.
//
// The database only holds data this service owns (event comments and the
// WhatsApp message log). Everything else lives behind the backend API.
//
// Example usage:
//
//	pg, err := db.New(ctx, cfg.Database, log)
//	if err != nil {
//	    return err
//	}
//	defer pg.Close()
//	if err := pg.Migrate(ctx); err != nil {
//	    return err
//	}
package db
