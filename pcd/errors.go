package pcd

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	// ErrItemTypeConflict indicates two consumers bind a PCD differently.
	ErrItemTypeConflict = errors.New("pcd item type conflict")

	// ErrDeclarationNotFound indicates a PCD usage has no package declaration.
	ErrDeclarationNotFound = errors.New("pcd declaration not found")

	// ErrMalformedValue indicates a literal that fails the VOID* grammar.
	ErrMalformedValue = errors.New("malformed pcd value")
)

// ItemTypeConflictError is returned when a consumer requests an item type
// different from the one already bound on the platform.
type ItemTypeConflictError struct {
	PCD ID

	// Existing names the consumer that fixed the item type. Requester names
	// the consumer being added. Both are module names when they can be
	// resolved, raw module instance keys otherwise.
	Existing  string
	Requester string

	ExistingType  ItemType
	RequestedType ItemType
}

func (e *ItemTypeConflictError) Error() string {
	if e.Existing == "" {
		return fmt.Sprintf("pcd %s: item type %s requested by %s is not a valid usage",
			e.PCD, e.RequestedType, e.Requester)
	}
	return fmt.Sprintf("pcd %s: item type %s requested by %s conflicts with %s used by %s",
		e.PCD, e.RequestedType, e.Requester, e.ExistingType, e.Existing)
}

func (e *ItemTypeConflictError) Is(target error) bool { return target == ErrItemTypeConflict }

// DeclarationNotFoundError is returned when no dependency package of a module
// declares a PCD the module uses.
type DeclarationNotFoundError struct {
	PCD    ID
	Module string
}

func (e *DeclarationNotFoundError) Error() string {
	return fmt.Sprintf("pcd %s used by %s is not declared in any dependency package", e.PCD, e.Module)
}

func (e *DeclarationNotFoundError) Is(target error) bool { return target == ErrDeclarationNotFound }

// MalformedValueError is returned when a VOID* literal cannot be sized.
type MalformedValueError struct {
	Value  string
	Reason string
}

func (e *MalformedValueError) Error() string {
	return fmt.Sprintf("malformed pcd value %q: %s", e.Value, e.Reason)
}

func (e *MalformedValueError) Is(target error) bool { return target == ErrMalformedValue }
