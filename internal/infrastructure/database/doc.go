// Package database provides the process-wide connection to the relational
// engine behind the booking core.
//
// This package manages:
//   - Opening MySQL, SQLite or Postgres from one Config
//   - A bounded connection pool with per-checkout timeouts (Acquire)
//   - The statement Dialect: identifier quoting, placeholders and how
//     generated ids are read back
//
// Schema management is not handled here. Tables are provisioned by the
// deployment before the service starts.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{
//	    Driver: "mysql",
//	    Host:   "127.0.0.1",
//	    Port:   3306,
//	    Name:   "barbearia01",
//	    Username: "root",
//	    MaxOpenConns:   10,
//	    AcquireTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	conn, err := db.Acquire(ctx)
//	if err != nil {
//	    return err // may be ErrAcquireTimeout
//	}
//	defer conn.Close() // check-in
package database
