package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()
	t.Cleanup(func() {
		h.Stop()
		<-done
	})
	return h
}

func recv(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case b, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var m Message
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.Send:
		t.Fatalf("unexpected message %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesRoomOnly(t *testing.T) {
	h := startHub(t)
	a := NewClient(nil, h, GameRoom("g1"), 1)
	b := NewClient(nil, h, GameRoom("g2"), 1)
	lobby := NewClient(nil, h, "", 2)
	h.Register(a)
	h.Register(b)
	h.Register(lobby)

	h.Broadcast(GameRoom("g1"), "game_update", map[string]int{"bankroll": 11})
	m := recv(t, a)
	if m.Type != "game_update" || m.Timestamp == "" {
		t.Fatalf("message = %+v", m)
	}
	expectNothing(t, b)
	expectNothing(t, lobby)

	h.Broadcast(DefaultRoom, "hello", nil)
	if recv(t, lobby).Type != "hello" {
		t.Fatal("default room did not receive broadcast")
	}
}

func TestJoinMovesClient(t *testing.T) {
	h := startHub(t)
	c := NewClient(nil, h, "", 1)
	h.Register(c)
	h.Join(c, GameRoom("g1"))

	h.Broadcast(DefaultRoom, "stale", nil)
	h.Broadcast(GameRoom("g1"), "fresh", nil)
	if m := recv(t, c); m.Type != "fresh" {
		t.Fatalf("got %q, want fresh", m.Type)
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := NewClient(nil, h, GameRoom("g1"), 1)
	h.Register(c)
	h.Unregister(c)
	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
	if c.SendJSON("late", nil) {
		t.Fatal("send to a closed client succeeded")
	}
}

func TestSendWhileUnregistering(t *testing.T) {
	h := startHub(t)
	c := NewClient(nil, h, GameRoom("g1"), 1)
	h.Register(c)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.SendJSON("direct", i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			h.Broadcast(GameRoom("g1"), "room", i)
		}
	}()
	go func() {
		defer wg.Done()
		time.Sleep(time.Millisecond)
		h.Unregister(c)
	}()
	// drain until the hub closes the channel
	closed := make(chan struct{})
	go func() {
		for range c.Send {
		}
		close(closed)
	}()
	wg.Wait()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("send channel not closed")
	}
	if c.SendJSON("late", nil) {
		t.Fatal("send after unregister succeeded")
	}
}

func TestStoppedHubDoesNotBlock(t *testing.T) {
	h := NewHub()
	h.Stop()
	h.Stop()
	c := NewClient(nil, h, "", 1)
	finished := make(chan struct{})
	go func() {
		h.Register(c)
		h.Join(c, "x")
		h.Unregister(c)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("calls on a stopped hub blocked")
	}
}

func TestSupervisorRestartsPanickedHub(t *testing.T) {
	first := NewHub()
	// a nil rooms map makes the first registration panic inside Run
	first.rooms = nil
	ref := NewHubRef(first)
	done := make(chan struct{})
	go func() {
		ref.Supervise(10 * time.Millisecond)
		close(done)
	}()

	first.Register(NewClient(nil, first, "r", 1))

	deadline := time.After(2 * time.Second)
	for {
		h, _ := ref.Get()
		if h != first {
			h.Stop()
			break
		}
		select {
		case <-deadline:
			t.Fatal("hub was not replaced")
		case <-time.After(5 * time.Millisecond):
		}
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not exit after a clean stop")
	}
}
