package gcloud

import (
	"context"
	"fmt"
)

// EnsureOperation encapsulates check-then-create logic for any gcloud resource.
//
// Usage example:
//
//	res, created, err := (&EnsureOperation[*Resource]{
//	    Name:         "web-ip",
//	    ResourceType: "static IP",
//	    Get:          func(ctx context.Context) (*Resource, error) { return api.Describe(ctx, ref) },
//	    Create:       func(ctx context.Context) error { return api.Create(ctx, ref) },
//	}).Execute(ctx)
type EnsureOperation[T any] struct {
	Name         string
	ResourceType string

	// Get describes the resource; a missing resource must fail with an error
	// matching IsNotFound.
	Get func(ctx context.Context) (T, error)

	// Create creates the resource.
	Create func(ctx context.Context) error

	// Validate checks an existing resource (optional). A non-nil error aborts.
	Validate func(resource T) error
}

// Execute returns the existing resource, or creates it and returns the
// created one. created is false when the resource was reused, including when
// a concurrent create won the race.
func (op *EnsureOperation[T]) Execute(ctx context.Context) (resource T, created bool, err error) {
	var zero T

	resource, err = op.Get(ctx)
	switch {
	case err == nil:
		if op.Validate != nil {
			if err := op.Validate(resource); err != nil {
				return zero, false, err
			}
		}
		return resource, false, nil
	case !IsNotFound(err):
		return zero, false, fmt.Errorf("failed to get %s %s: %w", op.ResourceType, op.Name, err)
	}

	created = true
	if err := op.Create(ctx); err != nil {
		if !IsAlreadyExists(err) {
			return zero, false, fmt.Errorf("failed to create %s %s: %w", op.ResourceType, op.Name, err)
		}
		created = false
	}

	resource, err = op.Get(ctx)
	if err != nil {
		return zero, false, fmt.Errorf("failed to get %s %s after create: %w", op.ResourceType, op.Name, err)
	}
	return resource, created, nil
}

// DeleteOperation encapsulates idempotent deletion.
type DeleteOperation struct {
	Name         string
	ResourceType string

	Delete func(ctx context.Context) error
}

// Execute deletes the resource. A resource that does not exist is reported
// as deleted == false with a nil error.
func (op *DeleteOperation) Execute(ctx context.Context) (deleted bool, err error) {
	if err := op.Delete(ctx); err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete %s %s: %w", op.ResourceType, op.Name, err)
	}
	return true, nil
}

// Ensure runs an EnsureOperation for ref against api.
func Ensure(ctx context.Context, api API, ref Ref, flags ...string) (*Resource, bool, error) {
	return (&EnsureOperation[*Resource]{
		Name:         ref.Name,
		ResourceType: string(ref.Kind),
		Get:          func(ctx context.Context) (*Resource, error) { return api.Describe(ctx, ref) },
		Create:       func(ctx context.Context) error { return api.Create(ctx, ref, flags...) },
	}).Execute(ctx)
}

// Delete runs a DeleteOperation for ref against api.
func Delete(ctx context.Context, api API, ref Ref) (bool, error) {
	return (&DeleteOperation{
		Name:         ref.Name,
		ResourceType: string(ref.Kind),
		Delete:       func(ctx context.Context) error { return api.Delete(ctx, ref) },
	}).Execute(ctx)
}
