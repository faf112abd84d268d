package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// NormalizeDriver maps user-facing aliases onto a registered driver name.
func NormalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "mysql", "mariadb":
		return DriverMySQL, nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
}

// Connect opens the scan store and checks it is reachable.
// The caller owns the returned handle and must Close it.
func Connect(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == DriverSQLite {
		// opening a missing sqlite file would create an empty store
		if path := sqliteFilePath(dsn); path != "" {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("sqlite store: %w", err)
			}
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	// one read at a time; the handle lives for a single Load
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// sqliteFilePath returns the file behind a sqlite DSN, or "" for in-memory
// databases.
func sqliteFilePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}

// rebind rewrites '?' placeholders into the driver's bind syntax.
func rebind(driver, q string) string {
	if driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
