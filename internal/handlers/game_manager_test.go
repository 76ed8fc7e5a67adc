package handlers

import (
	"sync"
	"testing"
	"time"
)

func TestGameManagerSerializesSameGame(t *testing.T) {
	m := NewGameManager()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("g1")
			defer unlock()
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
	if n := m.Active(); n != 0 {
		t.Fatalf("active = %d after all released", n)
	}
}

func TestGameManagerIndependentGames(t *testing.T) {
	m := NewGameManager()
	unlockA := m.Lock("a")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlock := m.Lock("b")
		unlock()
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on b waited for a")
	}
	if n := m.Active(); n != 1 {
		t.Fatalf("active = %d, want 1", n)
	}
}
