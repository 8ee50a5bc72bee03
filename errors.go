package persistpager

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches exactly one of them with errors.Is.
var (
	// ErrNoManagerFound is returned when the registry has no manager for an object class.
	ErrNoManagerFound = errors.New("no manager found")

	// ErrMissingConfiguration is returned when a required configuration key is absent.
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrUnknownMethod is returned when a repository exposes no query builder method with the configured name.
	ErrUnknownMethod = errors.New("unknown query builder method")

	// ErrUnsupportedQueryBuilderType is returned when an adapter cannot wrap the query builder it was given.
	ErrUnsupportedQueryBuilderType = errors.New("unsupported query builder type")
)

// NoManagerFoundError signals that the object class is not managed by the backend.
type NoManagerFoundError struct {
	ObjectClass ObjectClass
}

func (e *NoManagerFoundError) Error() string {
	return fmt.Sprintf("no manager found for object class %q", e.ObjectClass)
}

func (e *NoManagerFoundError) Is(target error) bool {
	return target == ErrNoManagerFound
}

// MissingConfigurationError names the absent configuration key.
type MissingConfigurationError struct {
	Key string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration key %q", e.Key)
}

func (e *MissingConfigurationError) Is(target error) bool {
	return target == ErrMissingConfiguration
}

// UnknownMethodError names the method the repository of ObjectClass does not expose.
type UnknownMethodError struct {
	ObjectClass ObjectClass
	Method      string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("repository of %q has no query builder method %q", e.ObjectClass, e.Method)
}

func (e *UnknownMethodError) Is(target error) bool {
	return target == ErrUnknownMethod
}

// UnsupportedQueryBuilderTypeError is returned by adapter constructors.
type UnsupportedQueryBuilderTypeError struct {
	Backend string
	Type    string
	Reason  string
}

func (e *UnsupportedQueryBuilderTypeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s adapter does not support query builder of type %s", e.Backend, e.Type)
	}

	return fmt.Sprintf("%s adapter does not support query builder of type %s: %s", e.Backend, e.Type, e.Reason)
}

func (e *UnsupportedQueryBuilderTypeError) Is(target error) bool {
	return target == ErrUnsupportedQueryBuilderType
}

// NewUnsupportedQueryBuilderTypeError builds an UnsupportedQueryBuilderTypeError
// naming the dynamic type of queryBuilder.
func NewUnsupportedQueryBuilderTypeError(backend string, queryBuilder any, reason string) error {
	return &UnsupportedQueryBuilderTypeError{
		Backend: backend,
		Type:    fmt.Sprintf("%T", queryBuilder),
		Reason:  reason,
	}
}
