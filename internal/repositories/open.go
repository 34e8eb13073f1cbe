package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Options selects and configures a store.
type Options struct {
	Driver          string
	DSN             string // sqlite and postgres
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	Timeout         time.Duration // connect and ping
	AutoMigrate     bool
}

// Open returns the ProductRepository selected by opts.Driver.
func Open(ctx context.Context, opts Options) (ProductRepository, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var repo ProductRepository
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryProductRepository(), nil
	case DriverSQLite, DriverPostgres:
		db, err := openGORM(opts.Driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		repo = NewGORMProductRepository(db)
	case DriverMongo:
		mongoRepo, err := OpenMongoProductRepository(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
		if err != nil {
			return nil, err
		}
		repo = mongoRepo
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}

	if opts.AutoMigrate {
		if m, ok := repo.(Migrator); ok {
			if err := m.Migrate(ctx); err != nil {
				repo.Close()
				return nil, err
			}
		}
	}
	return repo, nil
}

func openGORM(driver, dsn string) (*gorm.DB, error) {
	dialector := sqlite.Open(dsn)
	if driver == DriverPostgres {
		dialector = postgres.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return db, nil
}
