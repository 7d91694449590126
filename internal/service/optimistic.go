package service

import (
	"context"
	"fmt"
)

// Optimistic commits a local change before the server confirms it and
// reconciles when the server call fails. State is read and written through
// Get and Set so the owner keeps control of locking.
type Optimistic[T any] struct {
	Get   func() T
	Set   func(T)
	Clone func(T) T
}

// Mutation is one optimistic change.
type Mutation[T any] struct {
	// Apply derives the next state from a clone of the current one. An error
	// aborts before anything is committed.
	Apply func(T) (T, error)

	// Remote persists the change on the server.
	Remote func(ctx context.Context) error

	// Recover runs after Remote fails. Nil means Restore.
	Recover Recovery[T]
}

// Recovery brings local state back in line after a failed remote call.
type Recovery[T any] func(ctx context.Context, o *Optimistic[T], snapshot T) error

// Restore puts the pre-change snapshot back.
func Restore[T any]() Recovery[T] {
	return func(_ context.Context, o *Optimistic[T], snapshot T) error {
		o.Set(snapshot)
		return nil
	}
}

// Refetch replaces local state with what the server reports.
func Refetch[T any](fetch func(ctx context.Context) (T, error)) Recovery[T] {
	return func(ctx context.Context, o *Optimistic[T], _ T) error {
		fresh, err := fetch(ctx)
		if err != nil {
			return err
		}
		o.Set(fresh)
		return nil
	}
}

// Do snapshots, applies m to a clone, commits it, then calls the server. The
// server error is returned after recovery; a recovery failure is appended.
func (o *Optimistic[T]) Do(ctx context.Context, m Mutation[T]) error {
	snapshot := o.Clone(o.Get())
	next, err := m.Apply(o.Clone(snapshot))
	if err != nil {
		return err
	}
	o.Set(next)

	remoteErr := m.Remote(ctx)
	if remoteErr == nil {
		return nil
	}
	recovery := m.Recover
	if recovery == nil {
		recovery = Restore[T]()
	}
	if err := recovery(ctx, o, snapshot); err != nil {
		return fmt.Errorf("%w (resync failed: %v)", remoteErr, err)
	}
	return remoteErr
}
