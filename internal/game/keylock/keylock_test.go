package keylock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/arena/internal/game/keylock"
)

func TestLock_SerializesSameKey(t *testing.T) {
	m := keylock.New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("battle-1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, m.Len(), "entries are released once unused")
}

func TestLock_DifferentKeysDoNotBlock(t *testing.T) {
	m := keylock.New()
	unlockA := m.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := m.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestLockAll_OverlappingSetsDoNotDeadlock(t *testing.T) {
	var m keylock.Map
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.LockAll("rating:a", "rating:b")()
		}()
		go func() {
			defer wg.Done()
			m.LockAll("rating:b", "rating:a", "rating:b")()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, m.Len())
}
