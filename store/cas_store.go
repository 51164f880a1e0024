package store

import (
	"context"
	"errors"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/utils/metrics"
)

const DefaultCASAttempts = 8

// CASStore turns a VersionedStore into a Store. Every mutation is a bounded
// read, modify, conditional write loop.
type CASStore struct {
	inner       VersionedStore
	maxAttempts int
}

func NewCASStore(inner VersionedStore, maxAttempts int) *CASStore {
	if maxAttempts <= 0 {
		maxAttempts = DefaultCASAttempts
	}
	return &CASStore{inner: inner, maxAttempts: maxAttempts}
}

func (s *CASStore) Get(ctx context.Context, kind model.Kind, id string) (*model.Document, error) {
	if err := validateKey(kind, id); err != nil {
		return nil, err
	}
	doc, _, err := s.inner.Load(ctx, kind, id)
	return doc, err
}

func (s *CASStore) Create(ctx context.Context, doc *model.Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}
	return s.inner.Create(ctx, normalize(doc.Clone()))
}

func (s *CASStore) Delete(ctx context.Context, kind model.Kind, id string) error {
	if err := validateKey(kind, id); err != nil {
		return err
	}
	return s.inner.Delete(ctx, kind, id)
}

func (s *CASStore) SetField(ctx context.Context, kind model.Kind, id string, field string, value string) error {
	if err := validateScalarField(kind, id, field); err != nil {
		return err
	}
	return s.mutate(ctx, kind, id, field, func(doc *model.Document) bool {
		if v, ok := doc.Fields[field]; ok && v == value {
			return false
		}
		doc.SetField(field, value)
		return true
	})
}

func (s *CASStore) AddToSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := validateSetField(kind, id, field, member); err != nil {
		return err
	}
	return s.mutate(ctx, kind, id, field, func(doc *model.Document) bool {
		return doc.AddToSet(field, member)
	})
}

func (s *CASStore) RemoveFromSet(ctx context.Context, kind model.Kind, id string, field string, member string) error {
	if err := validateSetField(kind, id, field, member); err != nil {
		return err
	}
	return s.mutate(ctx, kind, id, field, func(doc *model.Document) bool {
		return doc.RemoveFromSet(field, member)
	})
}

func (s *CASStore) Close() error {
	return s.inner.Close()
}

// mutate applies fn to a fresh copy of the document until the conditional
// write lands. fn returns false when the document already has the desired
// shape, in which case nothing is written.
func (s *CASStore) mutate(ctx context.Context, kind model.Kind, id string, field string, fn func(*model.Document) bool) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		doc, version, err := s.inner.Load(ctx, kind, id)
		if err != nil {
			return err
		}
		if !fn(doc) {
			return nil
		}
		err = s.inner.CompareAndSwap(ctx, doc, version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return err
		}
		metrics.CASConflicts.WithLabelValues(string(kind)).Inc()
		if ctx.Err() != nil {
			return unavailable("cas "+field, ctx.Err())
		}
	}
	return &model.ConcurrentUpdateError{Kind: kind, ID: id, Field: field, Attempts: s.maxAttempts}
}
