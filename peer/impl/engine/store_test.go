package engine

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_ValueStore_Put_Get(t *testing.T) {
	store := NewSafeValueStore()

	_, ok := store.Get("x")
	require.False(t, ok)

	store.Put("x", sharedValue{dims: []int{2}, vals: []*big.Int{big.NewInt(1), big.NewInt(2)}})
	v, ok := store.Get("x")
	require.True(t, ok)
	require.Equal(t, []int{2}, v.dims)

	store.Del("x")
	_, ok = store.Get("x")
	require.False(t, ok)
}

func Test_ValueStore_Await_Wakeup(t *testing.T) {
	store := NewSafeValueStore()

	go func() {
		time.Sleep(time.Millisecond * 50)
		store.Put("x", sharedValue{vals: []*big.Int{big.NewInt(7)}})
	}()

	v, err := store.Await("x", time.Second)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(7), v.vals[0])
}

func Test_ValueStore_Await_Timeout(t *testing.T) {
	store := NewSafeValueStore()

	_, err := store.Await("never", time.Millisecond*50)
	require.ErrorIs(t, err, ErrProtocolTimeout)
}

func Test_OpenCollector_Collect(t *testing.T) {
	opens := NewOpenCollector()
	origins := []string{"127.0.0.1:1", "127.0.0.1:2", "127.0.0.1:3"}

	opens.Add("round", origins[0], []*big.Int{big.NewInt(1)})
	go func() {
		time.Sleep(time.Millisecond * 20)
		opens.Add("round", origins[1], []*big.Int{big.NewInt(2)})
		opens.Add("round", origins[2], []*big.Int{big.NewInt(3)})
	}()

	contributions, err := opens.Collect("round", origins, time.Second)
	require.NoError(t, err)
	require.Len(t, contributions, 3)
	require.Equal(t, big.NewInt(2), contributions[origins[1]][0])

	// the round is consumed
	_, err = opens.Collect("round", origins, time.Millisecond*50)
	require.ErrorIs(t, err, ErrProtocolTimeout)
}

func Test_OpenCollector_Duplicate_Contribution(t *testing.T) {
	opens := NewOpenCollector()
	origins := []string{"127.0.0.1:1", "127.0.0.1:2"}

	opens.Add("round", origins[0], []*big.Int{big.NewInt(1)})
	// a second contribution from the same origin must not count
	opens.Add("round", origins[0], []*big.Int{big.NewInt(99)})

	_, err := opens.Collect("round", origins, time.Millisecond*50)
	require.ErrorIs(t, err, ErrProtocolTimeout)

	opens.Add("round", origins[1], []*big.Int{big.NewInt(2)})
	contributions, err := opens.Collect("round", origins, time.Second)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1), contributions[origins[0]][0])
}

func Test_KeyedMutex_Serializes(t *testing.T) {
	locks := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("b", "a", "a")
			counter++
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, 100, counter)
}

func Test_KeyedMutex_Disjoint_Keys_Do_Not_Block(t *testing.T) {
	locks := NewKeyedMutex()

	unlockA := locks.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disjoint key lock blocked")
	}
	unlockA()
}
