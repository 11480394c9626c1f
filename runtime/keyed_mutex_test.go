package runtime

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_Serializes_Same_Key(t *testing.T) {
	req := require.New(t)
	locks := NewKeyedMutex()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("alice:bob")
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				current := atomic.LoadInt32(&maxInside)
				if n <= current || atomic.CompareAndSwapInt32(&maxInside, current, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	req.Equal(int32(1), maxInside)
	req.Equal(0, locks.Len())
}

func TestKeyedMutex_Independent_Keys(t *testing.T) {
	req := require.New(t)
	locks := NewKeyedMutex()

	unlockFirst := locks.Lock("alice:bob")
	done := make(chan struct{})
	go func() {
		// Another conversation is not blocked by the first one
		unlock := locks.Lock("alice:carol")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("independent key should not wait")
	}
	unlockFirst()
	req.Equal(0, locks.Len())
}
