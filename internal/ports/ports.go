package ports

// Package ports defines interfaces (hexagonal ports) for session persistence
// and navigation side effects. Implementations live in internal/adapters;
// orchestration in internal/session, internal/gateway and internal/transport.

import (
	"context"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
)

// Storage keys for the persisted session mirror. Both keys are written
// together and cleared together; a reader must never trust one without the
// other.
const (
	StorageKeyCredential = "credential"
	StorageKeyIdentity   = "identity"
)

// StorageBackend is the durable key/value mirror of the in-memory session.
// It is written exclusively by the session store, never by other components.
type StorageBackend interface {
	// Get returns the value for key. A missing key yields ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes key to value, durably, before returning.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Navigator performs a forced navigation to a destination, optionally
// remembering where the user was headed. Injected so the core stays testable
// without a real navigation environment.
type Navigator interface {
	NavigateTo(dest string, from string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(dest, from string)

func (f NavigatorFunc) NavigateTo(dest, from string) { f(dest, from) }

// SessionWatcher is notified synchronously after every session mutation
// completes. By the time a watcher runs, a re-read observes post-mutation
// state.
type SessionWatcher interface {
	SessionChanged(sess domainauth.Session)
}

// SessionWatcherFunc adapts a function to the SessionWatcher interface.
type SessionWatcherFunc func(sess domainauth.Session)

func (f SessionWatcherFunc) SessionChanged(sess domainauth.Session) { f(sess) }

// ErrKeyNotFound is returned by storage backends for missing keys.
type keyNotFoundError struct{}

func (keyNotFoundError) Error() string { return "storage key not found" }

var ErrKeyNotFound error = keyNotFoundError{}
