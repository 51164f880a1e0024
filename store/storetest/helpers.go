// Package storetest provides in-process stores, a conformance suite every
// backend must pass and a fault injecting wrapper for tests.
package storetest

import (
	"testing"

	"github.com/Luismorlan/coursehub/store"
	"github.com/Luismorlan/coursehub/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

// TestCASAttempts is generous so that concurrency tests converge instead of
// exhausting the retry budget.
const TestCASAttempts = 100

// NewRedisStore runs a miniredis server for the duration of the test.
func NewRedisStore(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := store.NewRedisStore(client)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

// NewBadgerStore opens an in-memory badger behind a CASStore.
func NewBadgerStore(t *testing.T) store.Store {
	t.Helper()
	db, err := store.OpenBadger(store.BadgerConfig{InMemory: true})
	if err != nil {
		t.Fatalf("fail to open in-memory badger: %v", err)
	}
	s := store.NewCASStore(store.NewBadgerStore(db), TestCASAttempts)
	t.Cleanup(func() { s.Close() })
	return s
}

// NewSQLiteStore opens a temp sqlite database behind a CASStore.
func NewSQLiteStore(t *testing.T) store.Store {
	t.Helper()
	db, _ := utils.CreateTempDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("fail to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	gs, err := store.NewGormStore(db)
	if err != nil {
		t.Fatalf("fail to create gorm store: %v", err)
	}
	return store.NewCASStore(gs, TestCASAttempts)
}

// NewStore is the default store for tests of packages above the store layer.
func NewStore(t *testing.T) store.Store {
	t.Helper()
	return NewBadgerStore(t)
}
