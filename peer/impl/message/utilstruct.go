package message

import (
	"sync"
	"time"

	"github.com/shaanrockz/sharenet/storage"
	"github.com/shaanrockz/sharenet/transport"
	"golang.org/x/xerrors"
)

// Identity is a peer's announced key material.
type Identity struct {
	RSAPubkey  []byte
	SignPubkey []byte
}

// SafeIdentityStore implements a thread-safe identity store with blocking
// lookup: callers that need a peer's keys before its announcement arrived
// wait instead of failing.
type SafeIdentityStore struct {
	*sync.Mutex
	store   storage.KVStore
	waiters map[string][]chan struct{}
}

// NewSafeIdentityStore returns an empty identity store.
func NewSafeIdentityStore() *SafeIdentityStore {
	return &SafeIdentityStore{
		Mutex:   &sync.Mutex{},
		store:   storage.NewBasicKV(),
		waiters: make(map[string][]chan struct{}),
	}
}

// Add stores an identity and wakes the waiters. The first announcement
// wins; it reports whether the origin was new.
func (s *SafeIdentityStore) Add(origin string, identity Identity) bool {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.store.Get(origin); ok {
		return false
	}
	s.store.Put(origin, identity)
	for _, ch := range s.waiters[origin] {
		close(ch)
	}
	delete(s.waiters, origin)
	return true
}

// Get returns the identity if known.
func (s *SafeIdentityStore) Get(origin string) (Identity, bool) {
	s.Lock()
	defer s.Unlock()

	value, ok := s.store.Get(origin)
	if !ok {
		return Identity{}, false
	}
	return value.(Identity), true
}

// Await returns the identity, blocking until it is announced or the timeout
// expires.
func (s *SafeIdentityStore) Await(origin string, timeout time.Duration) (Identity, error) {
	s.Lock()
	if value, ok := s.store.Get(origin); ok {
		s.Unlock()
		return value.(Identity), nil
	}
	ch := make(chan struct{})
	s.waiters[origin] = append(s.waiters[origin], ch)
	s.Unlock()

	if timeout == 0 {
		<-ch
	} else {
		select {
		case <-ch:
		case <-time.After(timeout):
			return Identity{}, xerrors.Errorf("identity of %s: %w", origin, transport.TimeoutError(timeout))
		}
	}

	identity, ok := s.Get(origin)
	if !ok {
		return Identity{}, xerrors.Errorf("identity of %s vanished", origin)
	}
	return identity, nil
}
