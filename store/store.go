// Package store persists forum entities as model.Documents. Every backend
// offers atomic, idempotent set primitives on list fields, either natively
// (redis, mongo) or through a compare-and-swap retry loop (CASStore over gorm
// and badger).
package store

import (
	"context"
	"errors"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/utils"
)

var (
	ErrAlreadyExists   = errors.New("document already exists")
	ErrVersionConflict = errors.New("document changed since it was loaded")
)

// Version is an opaque, monotonically increasing revision of a document.
type Version int64

type Store interface {
	// Get returns a NotFoundError if the document does not exist.
	Get(ctx context.Context, kind model.Kind, id string) (*model.Document, error)
	// Create returns ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, doc *model.Document) error
	// Delete of an absent document is not an error.
	Delete(ctx context.Context, kind model.Kind, id string) error
	SetField(ctx context.Context, kind model.Kind, id string, field string, value string) error
	// AddToSet appends member to the list field unless it is already present.
	// The check and the append happen atomically.
	AddToSet(ctx context.Context, kind model.Kind, id string, field string, member string) error
	// RemoveFromSet drops member from the list field, absent member is a no-op.
	RemoveFromSet(ctx context.Context, kind model.Kind, id string, field string, member string) error
	Close() error
}

// VersionedStore is a whole-document store without native set operations.
// Wrap it in a CASStore to get a Store.
type VersionedStore interface {
	Load(ctx context.Context, kind model.Kind, id string) (*model.Document, Version, error)
	Create(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, kind model.Kind, id string) error
	// CompareAndSwap writes doc only if its stored version still equals
	// expected, otherwise it returns ErrVersionConflict.
	CompareAndSwap(ctx context.Context, doc *model.Document, expected Version) error
	Close() error
}

func notFound(kind model.Kind, id string) error {
	return &model.NotFoundError{Kind: kind, ID: id}
}

// unavailable marks a backend failure as transient. Cancellation by the caller
// is passed through untouched so that it is never retried.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &model.StoreUnavailableError{Op: op, Err: err}
}

func validateKey(kind model.Kind, id string) error {
	if !model.IsValidKind(kind) {
		return model.NewValidationError("unknown document kind " + string(kind))
	}
	if id == "" {
		return model.NewValidationError("missing document id", "uuid")
	}
	return nil
}

func validateSetField(kind model.Kind, id string, field string, member string) error {
	if err := validateKey(kind, id); err != nil {
		return err
	}
	if !utils.ContainsString(model.SetFieldsOf(kind), field) {
		return model.NewValidationError("unknown list on "+string(kind), field)
	}
	if member == "" {
		return model.NewValidationError("missing list member", field)
	}
	return nil
}

func validateScalarField(kind model.Kind, id string, field string) error {
	if err := validateKey(kind, id); err != nil {
		return err
	}
	if field == "" || utils.ContainsString(model.SetFieldsOf(kind), field) {
		return model.NewValidationError("not a scalar field of "+string(kind), field)
	}
	return nil
}

func validateDocument(doc *model.Document) error {
	if doc == nil {
		return model.NewValidationError("missing document")
	}
	return validateKey(doc.Kind, doc.ID)
}

// normalize fills in every list of the document's kind so that readers never
// see a nil list.
func normalize(doc *model.Document) *model.Document {
	if doc.Fields == nil {
		doc.Fields = make(map[string]string)
	}
	if doc.Sets == nil {
		doc.Sets = make(map[string][]string)
	}
	for _, f := range model.SetFieldsOf(doc.Kind) {
		if doc.Sets[f] == nil {
			doc.Sets[f] = []string{}
		}
	}
	return doc
}
