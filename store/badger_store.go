package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/Luismorlan/coursehub/model"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// BadgerConfig configures the embedded store.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is true.
	Path       string
	InMemory   bool
	SyncWrites bool
}

type badgerRecord struct {
	Version int64               `json:"version"`
	Fields  map[string]string   `json:"fields"`
	Sets    map[string][]string `json:"sets"`
}

// BadgerStore is an embedded single-node store. Writes go through badger's
// optimistic transactions, a conflicting commit surfaces as
// ErrVersionConflict.
type BadgerStore struct {
	db *badger.DB
}

func OpenBadger(cfg BadgerConfig) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, errors.Wrapf(err, "create database directory %s", cfg.Path)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger database")
	}
	return db, nil
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func badgerKey(kind model.Kind, id string) []byte {
	return []byte(string(kind) + "/" + id)
}

func (s *BadgerStore) Load(ctx context.Context, kind model.Kind, id string) (*model.Document, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, unavailable("load", err)
	}
	var rec badgerRecord
	err := s.db.View(func(txn *badger.Txn) error {
		found, err := readRecord(txn, kind, id, &rec)
		if err != nil {
			return err
		}
		if !found {
			return notFound(kind, id)
		}
		return nil
	})
	if err != nil {
		if model.IsNotFound(err) {
			return nil, 0, err
		}
		return nil, 0, unavailable("load", err)
	}
	doc := normalize(&model.Document{Kind: kind, ID: id, Fields: rec.Fields, Sets: rec.Sets})
	return doc, Version(rec.Version), nil
}

func (s *BadgerStore) Create(ctx context.Context, doc *model.Document) error {
	if err := ctx.Err(); err != nil {
		return unavailable("create", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var existing badgerRecord
		found, err := readRecord(txn, doc.Kind, doc.ID, &existing)
		if err != nil {
			return err
		}
		if found {
			return errors.Wrapf(ErrAlreadyExists, "%s %s", doc.Kind, doc.ID)
		}
		return writeRecord(txn, doc, 1)
	})
	if err != nil && !errors.Is(err, ErrAlreadyExists) {
		return unavailable("create", err)
	}
	return err
}

func (s *BadgerStore) Delete(ctx context.Context, kind model.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(kind, id))
	})
	return unavailable("delete", err)
}

func (s *BadgerStore) CompareAndSwap(ctx context.Context, doc *model.Document, expected Version) error {
	if err := ctx.Err(); err != nil {
		return unavailable("compare and swap", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		var current badgerRecord
		found, err := readRecord(txn, doc.Kind, doc.ID, &current)
		if err != nil {
			return err
		}
		if !found {
			return notFound(doc.Kind, doc.ID)
		}
		if current.Version != int64(expected) {
			return ErrVersionConflict
		}
		return writeRecord(txn, doc, current.Version+1)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrConflict), errors.Is(err, ErrVersionConflict):
		return ErrVersionConflict
	case model.IsNotFound(err):
		return err
	default:
		return unavailable("compare and swap", err)
	}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func readRecord(txn *badger.Txn, kind model.Kind, id string, rec *badgerRecord) (bool, error) {
	item, err := txn.Get(badgerKey(kind, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, rec)
	})
	return err == nil, err
}

func writeRecord(txn *badger.Txn, doc *model.Document, version int64) error {
	b, err := json.Marshal(badgerRecord{Version: version, Fields: doc.Fields, Sets: doc.Sets})
	if err != nil {
		return err
	}
	return txn.Set(badgerKey(doc.Kind, doc.ID), b)
}
