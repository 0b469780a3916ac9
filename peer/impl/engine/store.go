package engine

import (
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/shaanrockz/sharenet/storage"
	"golang.org/x/xerrors"
)

// sharedValue is one party's additive share of a tensor, held in field
// canonical form.
type sharedValue struct {
	dims []int
	vals []*big.Int
}

// SafeValueStore implements a thread-safe store for held shares with blocking
// lookup, so an operation can wait for a share that is still in flight.
type SafeValueStore struct {
	*sync.Mutex
	store   storage.KVStore
	waiters map[string][]chan struct{}
}

// NewSafeValueStore returns an empty value store.
func NewSafeValueStore() *SafeValueStore {
	return &SafeValueStore{
		Mutex:   &sync.Mutex{},
		store:   storage.NewBasicKV(),
		waiters: make(map[string][]chan struct{}),
	}
}

// Put stores a share and wakes the waiters.
func (s *SafeValueStore) Put(key string, v sharedValue) {
	s.Lock()
	defer s.Unlock()

	s.store.Put(key, v)
	for _, ch := range s.waiters[key] {
		close(ch)
	}
	delete(s.waiters, key)
}

// Get returns the share if held.
func (s *SafeValueStore) Get(key string) (sharedValue, bool) {
	s.Lock()
	defer s.Unlock()

	value, ok := s.store.Get(key)
	if !ok {
		return sharedValue{}, false
	}
	return value.(sharedValue), true
}

// Del removes a share.
func (s *SafeValueStore) Del(key string) {
	s.Lock()
	defer s.Unlock()

	s.store.Del(key)
}

// Await returns the share, blocking until it arrives or the timeout expires.
func (s *SafeValueStore) Await(key string, timeout time.Duration) (sharedValue, error) {
	s.Lock()
	if value, ok := s.store.Get(key); ok {
		s.Unlock()
		return value.(sharedValue), nil
	}
	ch := make(chan struct{})
	s.waiters[key] = append(s.waiters[key], ch)
	s.Unlock()

	select {
	case <-ch:
	case <-time.After(timeout):
		return sharedValue{}, xerrors.Errorf("share %s after %v: %w", key, timeout, ErrProtocolTimeout)
	}

	v, ok := s.Get(key)
	if !ok {
		return sharedValue{}, xerrors.Errorf("share %s vanished", key)
	}
	return v, nil
}

// OpenCollector gathers per-origin contributions of open rounds. A round is
// complete once every expected origin has contributed.
type OpenCollector struct {
	*sync.Mutex
	rounds  map[string]map[string][]*big.Int
	waiters map[string][]chan struct{}
}

// NewOpenCollector returns an empty collector.
func NewOpenCollector() *OpenCollector {
	return &OpenCollector{
		Mutex:   &sync.Mutex{},
		rounds:  make(map[string]map[string][]*big.Int),
		waiters: make(map[string][]chan struct{}),
	}
}

// Add records one origin's contribution to an open round and wakes the
// waiters. A second contribution from the same origin is dropped.
func (c *OpenCollector) Add(key, origin string, vals []*big.Int) {
	c.Lock()
	defer c.Unlock()

	round, ok := c.rounds[key]
	if !ok {
		round = make(map[string][]*big.Int)
		c.rounds[key] = round
	}
	if _, ok := round[origin]; ok {
		return
	}
	round[origin] = vals

	for _, ch := range c.waiters[key] {
		close(ch)
	}
	delete(c.waiters, key)
}

// Collect blocks until every origin has contributed to the round, then
// removes the round and returns the contributions.
func (c *OpenCollector) Collect(key string, origins []string,
	timeout time.Duration) (map[string][]*big.Int, error) {

	deadline := time.Now().Add(timeout)
	for {
		c.Lock()
		round := c.rounds[key]
		complete := len(round) >= len(origins)
		if complete {
			for _, origin := range origins {
				if _, ok := round[origin]; !ok {
					complete = false
					break
				}
			}
		}
		if complete {
			delete(c.rounds, key)
			c.Unlock()
			return round, nil
		}
		have := len(round)
		ch := make(chan struct{})
		c.waiters[key] = append(c.waiters[key], ch)
		c.Unlock()

		select {
		case <-ch:
		case <-time.After(time.Until(deadline)):
			return nil, xerrors.Errorf("open %s with %d/%d contributions: %w",
				key, have, len(origins), ErrProtocolTimeout)
		}
	}
}

// KeyedMutex serializes operations touching the same value identifiers.
// Locks are always taken in sorted key order so concurrent operations on
// overlapping identifier sets cannot deadlock.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex returns an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the mutexes of the given keys, deduplicated and sorted, and
// returns the matching unlock.
func (k *KeyedMutex) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		uniq = append(uniq, key)
	}
	sort.Strings(uniq)

	locked := make([]*sync.Mutex, 0, len(uniq))
	for _, key := range uniq {
		k.mu.Lock()
		lock, ok := k.locks[key]
		if !ok {
			lock = &sync.Mutex{}
			k.locks[key] = lock
		}
		k.mu.Unlock()
		lock.Lock()
		locked = append(locked, lock)
	}

	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}
