package model

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed input. It is always raised
// before any store interaction.
type ValidationError struct {
	Msg    string
	Fields []string
}

func NewValidationError(msg string, fields ...string) error {
	return &ValidationError{Msg: msg, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Msg, strings.Join(e.Fields, ", "))
}

// NotFoundError reports a uuid that does not resolve to a document.
type NotFoundError struct {
	Kind Kind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConcurrentUpdateError is returned once a set mutation exhausted its retry
// budget on write conflicts.
type ConcurrentUpdateError struct {
	Kind     Kind
	ID       string
	Field    string
	Attempts int
}

func (e *ConcurrentUpdateError) Error() string {
	return fmt.Sprintf("concurrent update on %s %s field %s, gave up after %d attempts", e.Kind, e.ID, e.Field, e.Attempts)
}

type Side string

const (
	SideForward Side = "forward"
	SideReverse Side = "reverse"
)

// PartialAssociationError means one side of a bidirectional update landed and
// the other did not. The association needs repair.
type PartialAssociationError struct {
	Relation   RelationKind
	OwnerID    string
	TargetID   string
	FailedSide Side
	Err        error
}

func (e *PartialAssociationError) Error() string {
	return fmt.Sprintf("partial %s association %s -> %s, %s side failed: %v", e.Relation, e.OwnerID, e.TargetID, e.FailedSide, e.Err)
}

func (e *PartialAssociationError) Unwrap() error {
	return e.Err
}

// DanglingReferenceError is raised when a stored reference no longer resolves.
type DanglingReferenceError struct {
	Kind       Kind
	ID         string
	ReferrerID string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference to %s %s held by %s", e.Kind, e.ID, e.ReferrerID)
}

// StoreUnavailableError wraps transport failures and timeouts talking to the
// store. It is transient.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConcurrentUpdate(err error) bool {
	var target *ConcurrentUpdateError
	return errors.As(err, &target)
}

func IsPartialAssociation(err error) bool {
	var target *PartialAssociationError
	return errors.As(err, &target)
}

func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}
