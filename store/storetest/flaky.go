package storetest

import (
	"context"
	"sync"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/store"
)

type Op string

const (
	OpGet           Op = "get"
	OpCreate        Op = "create"
	OpDelete        Op = "delete"
	OpSetField      Op = "set_field"
	OpAddToSet      Op = "add_to_set"
	OpRemoveFromSet Op = "remove_from_set"
)

// Forever makes a failure rule never run out.
const Forever = -1

type failure struct {
	op        Op
	kind      model.Kind
	remaining int
	err       error
}

// FlakyStore wraps a Store and fails selected calls with a given error.
type FlakyStore struct {
	store.Store

	mu       sync.Mutex
	failures []*failure
	calls    map[Op]map[model.Kind]int
}

func NewFlakyStore(inner store.Store) *FlakyStore {
	return &FlakyStore{Store: inner, calls: make(map[Op]map[model.Kind]int)}
}

// FailNext makes the next n calls of op on documents of kind return err.
// Pass Forever to fail every call.
func (f *FlakyStore) FailNext(op Op, kind model.Kind, n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, &failure{op: op, kind: kind, remaining: n, err: err})
}

// Calls returns how many times op was invoked on documents of kind,
// including the failed ones.
func (f *FlakyStore) Calls(op Op, kind model.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op][kind]
}

func (f *FlakyStore) intercept(op Op, kind model.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls[op] == nil {
		f.calls[op] = make(map[model.Kind]int)
	}
	f.calls[op][kind]++
	for _, fl := range f.failures {
		if fl.op != op || fl.kind != kind || fl.remaining == 0 {
			continue
		}
		if fl.remaining > 0 {
			fl.remaining--
		}
		return fl.err
	}
	return nil
}

func (f *FlakyStore) Get(ctx context.Context, kind model.Kind, id string) (*model.Document, error) {
	if err := f.intercept(OpGet, kind); err != nil {
		return nil, err
	}
	return f.Store.Get(ctx, kind, id)
}

func (f *FlakyStore) Create(ctx context.Context, doc *model.Document) error {
	if err := f.intercept(OpCreate, doc.Kind); err != nil {
		return err
	}
	return f.Store.Create(ctx, doc)
}

func (f *FlakyStore) Delete(ctx context.Context, kind model.Kind, id string) error {
	if err := f.intercept(OpDelete, kind); err != nil {
		return err
	}
	return f.Store.Delete(ctx, kind, id)
}

func (f *FlakyStore) SetField(ctx context.Context, kind model.Kind, id string, field string, value string) error {
	if err := f.intercept(OpSetField, kind); err != nil {
		return err
	}
	return f.Store.SetField(ctx, kind, id, field, value)
}

func (f *FlakyStore) AddToSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := f.intercept(OpAddToSet, kind); err != nil {
		return err
	}
	return f.Store.AddToSet(ctx, kind, id, field, member)
}

func (f *FlakyStore) RemoveFromSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := f.intercept(OpRemoveFromSet, kind); err != nil {
		return err
	}
	return f.Store.RemoveFromSet(ctx, kind, id, field, member)
}
