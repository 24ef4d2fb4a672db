package authmocks

// Package authmocks contains simple hand-written test doubles for the
// session/navigation ports. These are lightweight and suitable for unit
// tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	"github.com/deskware/portal-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.StorageBackend = (*MemoryBackend)(nil)
	_ ports.Navigator      = (*RecordingNavigator)(nil)
	_ ports.SessionWatcher = (*CountingWatcher)(nil)
)

// MemoryBackend is an in-memory storage backend for unit tests. It records
// every mutation so tests can assert on write-through behavior.
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string

	// SetErr and GetErr, when non-nil, are returned by the corresponding
	// operations to simulate storage failures.
	SetErr error
	GetErr error

	// Sets and Deletes count mutating calls.
	Sets    int
	Deletes int
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

// Seed pre-populates a key without counting as a mutation.
func (m *MemoryBackend) Seed(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	v, ok := m.values[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Sets++
	m.values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// RecordingNavigator records forced navigations for assertions.
type RecordingNavigator struct {
	mu    sync.Mutex
	Calls []NavigationCall
}

// NavigationCall is one recorded NavigateTo invocation.
type NavigationCall struct {
	Dest string
	From string
}

func (n *RecordingNavigator) NavigateTo(dest, from string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Calls = append(n.Calls, NavigationCall{Dest: dest, From: from})
}

// Last returns the most recent navigation, or false when none happened.
func (n *RecordingNavigator) Last() (NavigationCall, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Calls) == 0 {
		return NavigationCall{}, false
	}
	return n.Calls[len(n.Calls)-1], true
}

// CountingWatcher counts session notifications and keeps the last session seen.
type CountingWatcher struct {
	mu            sync.Mutex
	Notifications int
	LastSession   domainauth.Session
}

func (w *CountingWatcher) SessionChanged(sess domainauth.Session) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Notifications++
	w.LastSession = sess
}

// Count returns the number of notifications received.
func (w *CountingWatcher) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Notifications
}
