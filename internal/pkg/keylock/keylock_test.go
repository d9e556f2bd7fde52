package keylock

import (
	"sync"
	"testing"
	"time"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("actor-1")
			defer km.Unlock("actor-1")
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	km.Lock("actor-1")
	defer km.Unlock("actor-1")

	done := make(chan struct{})
	go func() {
		km.Lock("actor-2")
		km.Unlock("actor-2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different key blocked behind actor-1")
	}
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := NewKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("actor-1")
			km.Unlock("actor-1")
		}()
	}
	wg.Wait()

	km.mu.Lock()
	size := len(km.locks)
	km.mu.Unlock()
	if size != 0 {
		t.Errorf("lock map holds %d entries after all holders released, want 0", size)
	}
}

func TestKeyedMutexUnlockUnheldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Unlock of unheld key did not panic")
		}
	}()
	NewKeyedMutex().Unlock("actor-1")
}
