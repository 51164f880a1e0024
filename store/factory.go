package store

import (
	"context"
	"fmt"

	"github.com/Luismorlan/coursehub/utils"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/pkg/errors"
)

const (
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendBadger   = "badger"
)

// Config selects and configures one backend. Only the fields of the selected
// backend are read.
type Config struct {
	Backend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	// DSN is a postgres connection string or a sqlite file path.
	DSN string

	BadgerPath     string
	BadgerInMemory bool

	// CASAttempts bounds the compare-and-swap loop of whole-document backends.
	CASAttempts int
}

// Open connects to the configured backend and returns it as a Store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	Log.WithField("backend", cfg.Backend).Info("opening document store")

	switch cfg.Backend {
	case BackendRedis:
		client, err := utils.GetRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to connect to redis at %s", cfg.RedisAddr)
		}
		return NewRedisStore(client), nil
	case BackendMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(client, cfg.MongoDatabase), nil
	case BackendPostgres, BackendSQLite:
		driver := utils.DriverPostgres
		if cfg.Backend == BackendSQLite {
			driver = utils.DriverSQLite
		}
		db, err := utils.GetDBConnection(driver, cfg.DSN)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to open %s database", cfg.Backend)
		}
		if cfg.Backend == BackendSQLite {
			// sqlite allows one writer, queue writers in the pool instead of
			// failing with SQLITE_BUSY.
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.SetMaxOpenConns(1)
			}
		}
		gs, err := NewGormStore(db)
		if err != nil {
			return nil, err
		}
		return NewCASStore(gs, cfg.CASAttempts), nil
	case BackendBadger:
		db, err := OpenBadger(BadgerConfig{Path: cfg.BadgerPath, InMemory: cfg.BadgerInMemory})
		if err != nil {
			return nil, err
		}
		return NewCASStore(NewBadgerStore(db), cfg.CASAttempts), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
