// Package relation keeps the two sides of every association consistent.
// An association is written forward first (the owner's list), then reverse
// (the target's list), each side retried on its own.
package relation

import (
	"context"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/store"
	"github.com/Luismorlan/coursehub/utils/metrics"
	. "github.com/Luismorlan/coursehub/utils/log"
	"github.com/sirupsen/logrus"
)

// profileRelation labels retries of scalar profile writes.
const profileRelation model.RelationKind = "profile"

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Change describes one association that was fully applied.
type Change struct {
	Relation model.RelationKind `json:"relation"`
	Op       Op                 `json:"op"`
	OwnerID  string             `json:"ownerId"`
	TargetID string             `json:"targetId"`
}

// ChangeObserver is told about every applied association.
type ChangeObserver interface {
	RelationChanged(ctx context.Context, change Change)
}

type Engine struct {
	store    store.Store
	policy   RetryPolicy
	observer ChangeObserver
}

type Option func(*Engine)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

func WithObserver(o ChangeObserver) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

func NewEngine(s store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, policy: DefaultRetryPolicy}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add associates ownerID with targetID. Adding an existing association is a
// no-op. The target must exist. When the reverse side cannot be written after
// the forward side landed, a PartialAssociationError is returned.
func (e *Engine) Add(ctx context.Context, kind model.RelationKind, ownerID string, targetID string) error {
	rel, err := e.prepare(kind, ownerID, targetID)
	if err != nil {
		return err
	}

	err = Retry(ctx, e.policy, kind, model.SideForward, func(ctx context.Context) error {
		_, err := e.store.Get(ctx, rel.TargetKind, targetID)
		return err
	})
	if err != nil {
		e.record(kind, OpAdd, err)
		return err
	}

	return e.apply(ctx, rel, OpAdd, ownerID, targetID)
}

// Remove dissociates ownerID from targetID. Removing an absent association
// is a no-op, as is a reverse side whose target no longer exists.
func (e *Engine) Remove(ctx context.Context, kind model.RelationKind, ownerID string, targetID string) error {
	rel, err := e.prepare(kind, ownerID, targetID)
	if err != nil {
		return err
	}
	return e.apply(ctx, rel, OpRemove, ownerID, targetID)
}

func (e *Engine) prepare(kind model.RelationKind, ownerID string, targetID string) (model.Relation, error) {
	rel, ok := model.LookupRelation(kind)
	if !ok {
		return rel, model.NewValidationError("unknown relation " + string(kind))
	}
	missing := []string{}
	if ownerID == "" {
		missing = append(missing, "ownerId")
	}
	if targetID == "" {
		missing = append(missing, "targetId")
	}
	if len(missing) > 0 {
		return rel, model.NewValidationError("missing association endpoint", missing...)
	}
	return rel, nil
}

func (e *Engine) apply(ctx context.Context, rel model.Relation, op Op, ownerID string, targetID string) error {
	write := e.store.AddToSet
	if op == OpRemove {
		write = e.store.RemoveFromSet
	}

	err := Retry(ctx, e.policy, rel.Kind, model.SideForward, func(ctx context.Context) error {
		return write(ctx, rel.OwnerKind, ownerID, rel.ForwardList, targetID)
	})
	if err != nil {
		e.record(rel.Kind, op, err)
		return err
	}

	if rel.HasReverse() {
		err = Retry(ctx, e.policy, rel.Kind, model.SideReverse, func(ctx context.Context) error {
			return write(ctx, rel.TargetKind, targetID, rel.ReverseList, ownerID)
		})
		if err != nil && op == OpRemove && model.IsNotFound(err) {
			err = nil
		}
		if err != nil {
			partial := &model.PartialAssociationError{
				Relation:   rel.Kind,
				OwnerID:    ownerID,
				TargetID:   targetID,
				FailedSide: model.SideReverse,
				Err:        err,
			}
			metrics.PartialAssociations.WithLabelValues(string(rel.Kind)).Inc()
			Log.WithFields(logrus.Fields{
				"relation": rel.Kind,
				"op":       op,
				"owner":    ownerID,
				"target":   targetID,
			}).WithError(err).Error("association left half written, needs repair")
			e.record(rel.Kind, op, partial)
			return partial
		}
	}

	e.record(rel.Kind, op, nil)
	if e.observer != nil {
		e.observer.RelationChanged(ctx, Change{Relation: rel.Kind, Op: op, OwnerID: ownerID, TargetID: targetID})
	}
	return nil
}

func (e *Engine) record(kind model.RelationKind, op Op, err error) {
	result := "ok"
	switch {
	case err == nil:
	case model.IsValidation(err):
		result = "invalid"
	case model.IsNotFound(err):
		result = "not_found"
	case model.IsPartialAssociation(err):
		result = "partial"
	default:
		result = "error"
	}
	metrics.RelationMutations.WithLabelValues(string(kind), string(op), result).Inc()
}

// SetName, SetEmail and SetIcon update a user's scalar profile fields.
func (e *Engine) SetName(ctx context.Context, userID string, name string) error {
	return e.setUserField(ctx, userID, model.FieldName, name)
}

func (e *Engine) SetEmail(ctx context.Context, userID string, email string) error {
	return e.setUserField(ctx, userID, model.FieldEmail, email)
}

func (e *Engine) SetIcon(ctx context.Context, userID string, icon string) error {
	return e.setUserField(ctx, userID, model.FieldIcon, icon)
}

func (e *Engine) setUserField(ctx context.Context, userID string, field string, value string) error {
	if userID == "" {
		return model.NewValidationError("missing user", "uuid")
	}
	return Retry(ctx, e.policy, profileRelation, model.SideForward, func(ctx context.Context) error {
		return e.store.SetField(ctx, model.KindUser, userID, field, value)
	})
}
