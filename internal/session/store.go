package session

// Package session holds the process-wide session store: the single source of
// truth for "who is logged in, with what roles, using what credential".
// Durable storage is a mirror of the in-memory state and is written
// exclusively through Establish and Clear.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	"github.com/deskware/portal-client/internal/ports"
)

// Store is an observable, single-writer session store. Mutations are
// serialized; watchers are notified synchronously after a mutation completes,
// so a notified watcher re-reading Current sees post-mutation state.
type Store struct {
	backend ports.StorageBackend
	logger  *slog.Logger

	mu       sync.RWMutex
	current  domainauth.Session
	loaded   bool
	watchers []ports.SessionWatcher
}

// NewStore creates a session store backed by the given durable storage.
func NewStore(backend ports.StorageBackend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, logger: logger}
}

// Load restores a persisted session on process start. A missing, partial, or
// malformed stored pair leaves the store absent; that is not an error
// condition. Only a storage backend failure is returned, and restoration is
// still considered complete so navigation decisions are not blocked forever.
func (s *Store) Load(ctx context.Context) error {
	sess, err := s.readStored(ctx)

	s.mu.Lock()
	s.loaded = true
	if err == nil {
		s.current = sess
	}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return nil
}

// readStored fetches and validates the persisted credential/identity pair.
// Either key missing, or identity JSON that does not decode to a usable
// Identity, yields the absent session.
func (s *Store) readStored(ctx context.Context) (domainauth.Session, error) {
	credential, err := s.backend.Get(ctx, ports.StorageKeyCredential)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return domainauth.Session{}, nil
		}
		return domainauth.Session{}, err
	}

	rawIdentity, err := s.backend.Get(ctx, ports.StorageKeyIdentity)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			// Never trust a credential without its identity.
			s.logger.Warn("stored credential without identity, treating session as absent")
			return domainauth.Session{}, nil
		}
		return domainauth.Session{}, err
	}

	var identity domainauth.Identity
	if unmarshalErr := json.Unmarshal([]byte(rawIdentity), &identity); unmarshalErr != nil {
		s.logger.Warn("stored identity is malformed, treating session as absent", "error", unmarshalErr)
		return domainauth.Session{}, nil
	}

	sess := domainauth.Session{Identity: identity, Credential: credential}
	if !sess.Present() {
		return domainauth.Session{}, nil
	}
	return sess, nil
}

// Loaded reports whether Load has completed. Route decisions stay in the
// Loading state until this is true.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Establish installs a new session, persisting it before any watcher is
// notified. It overwrites any prior session. On a storage failure the
// in-memory state is left untouched and no notification fires.
func (s *Store) Establish(ctx context.Context, identity domainauth.Identity, credential string) error {
	if identity.Username == "" {
		return errors.New("identity username cannot be empty")
	}
	if credential == "" {
		return errors.New("credential cannot be empty")
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	// Write-through before the memory swap: a concurrent reload immediately
	// after this call must observe consistent state.
	if err := s.backend.Set(ctx, ports.StorageKeyCredential, credential); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}
	if err := s.backend.Set(ctx, ports.StorageKeyIdentity, string(data)); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}

	sess := domainauth.Session{Identity: identity, Credential: credential}

	s.mu.Lock()
	s.current = sess
	s.loaded = true
	watchers := append([]ports.SessionWatcher(nil), s.watchers...)
	s.mu.Unlock()

	s.notify(watchers, sess)
	return nil
}

// Clear transitions to absent, erases durable storage, and notifies
// watchers. Clearing an already-absent session is a no-op: no storage
// mutation, no notification.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if !s.current.Present() {
		s.mu.Unlock()
		return nil
	}
	s.current = domainauth.Session{}
	watchers := append([]ports.SessionWatcher(nil), s.watchers...)
	s.mu.Unlock()

	if err := s.backend.Delete(ctx, ports.StorageKeyCredential); err != nil {
		return fmt.Errorf("erase credential: %w", err)
	}
	if err := s.backend.Delete(ctx, ports.StorageKeyIdentity); err != nil {
		return fmt.Errorf("erase identity: %w", err)
	}

	s.notify(watchers, domainauth.Session{})
	return nil
}

// Current returns the present session or the absent zero value. It never
// blocks on storage.
func (s *Store) Current() domainauth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// HasRole tests membership of the required bare authority token against the
// current identity. Prefix-insensitive per the Authority normalization rule;
// false when no session is present.
func (s *Store) HasRole(required string) bool {
	sess := s.Current()
	if !sess.Present() {
		return false
	}
	return sess.Identity.HasRole(required)
}

// Subscribe registers a watcher for session changes. Watchers registered
// after a session is established are not retroactively notified.
func (s *Store) Subscribe(w ports.SessionWatcher) {
	if w == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, w)
}

func (s *Store) notify(watchers []ports.SessionWatcher, sess domainauth.Session) {
	for _, w := range watchers {
		w.SessionChanged(sess)
	}
}
