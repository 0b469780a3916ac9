package storage

// Copyable values are deep-copied when a store is copied.
type Copyable interface {
	Copy() Copyable
}

// KVStore is a minimal in-memory key-value store. It is not safe for
// concurrent use; callers wrap it with their own locking.
type KVStore interface {
	Get(key string) (interface{}, bool)
	Put(key string, value interface{}) error
	Del(key string) error
	Len() int
	For(func(key string, value interface{}) error) error
	Copy() KVStore
}

// BasicKV implements KVStore with a map.
type BasicKV struct {
	store map[string]interface{}
}

// NewBasicKV returns an empty store.
func NewBasicKV() *BasicKV {
	return &BasicKV{
		store: make(map[string]interface{}),
	}
}

// Get implements KVStore.
func (kv *BasicKV) Get(key string) (interface{}, bool) {
	value, ok := kv.store[key]
	return value, ok
}

// Put implements KVStore.
func (kv *BasicKV) Put(key string, value interface{}) error {
	kv.store[key] = value
	return nil
}

// Del implements KVStore.
func (kv *BasicKV) Del(key string) error {
	delete(kv.store, key)
	return nil
}

// Len implements KVStore.
func (kv *BasicKV) Len() int {
	return len(kv.store)
}

// For implements KVStore.
func (kv *BasicKV) For(action func(key string, value interface{}) error) error {
	for k, v := range kv.store {
		err := action(k, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// Copy implements KVStore.
func (kv *BasicKV) Copy() KVStore {
	cp := NewBasicKV()
	for k, v := range kv.store {
		switch vv := v.(type) {
		case Copyable:
			cp.Put(k, vv.Copy())
		default:
			cp.Put(k, v)
		}
	}
	return cp
}
