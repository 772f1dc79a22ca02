package keylock

import (
	"sync"
	"testing"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	kl := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kl.Lock("emp-1")
			counter++
			kl.Unlock("emp-1")
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	kl := New()

	kl.Lock("emp-1")
	done := make(chan struct{})
	go func() {
		kl.Lock("emp-2")
		kl.Unlock("emp-2")
		close(done)
	}()
	<-done
	kl.Unlock("emp-1")
}

func TestKeyLock_EntryDroppedAfterRelease(t *testing.T) {
	kl := New()
	kl.Lock("emp-1")
	kl.Unlock("emp-1")

	kl.mu.Lock()
	defer kl.mu.Unlock()
	if len(kl.locks) != 0 {
		t.Errorf("locks map has %d entries, want 0", len(kl.locks))
	}
}
