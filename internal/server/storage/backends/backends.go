// Package backends opens the configured storage.UserStorage implementation.
package backends

import (
	"context"
	"fmt"

	"github.com/iudanet/posauth/internal/server/storage"
	"github.com/iudanet/posauth/internal/server/storage/boltdb"
	"github.com/iudanet/posauth/internal/server/storage/postgres"
	"github.com/iudanet/posauth/internal/server/storage/sqlite"
)

// Supported driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Open returns the user store for driver, connected to dsn.
// For sqlite and bolt the dsn is a file path.
func Open(ctx context.Context, driver, dsn string) (storage.UserStorage, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty dsn for %q storage", driver)
	}

	var (
		store storage.UserStorage
		err   error
	)

	// Каждая ветка присваивает конкретный тип только при успехе,
	// иначе в интерфейс попал бы typed nil
	switch driver {
	case DriverSQLite:
		var s *sqlite.Storage
		if s, err = sqlite.New(ctx, dsn); err == nil {
			store = s
		}
	case DriverPostgres:
		var s *postgres.Storage
		if s, err = postgres.New(ctx, dsn); err == nil {
			store = s
		}
	case DriverBolt:
		var s *boltdb.Storage
		if s, err = boltdb.New(ctx, dsn); err == nil {
			store = s
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", driver, err)
	}
	return store, nil
}
