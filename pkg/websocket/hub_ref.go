package websocket

import (
	"log"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// HubRef points at the currently active Hub so a fresh hub can be swapped in
// after a panic without restarting the HTTP server.
type HubRef struct {
	v atomic.Pointer[Hub]
}

func NewHubRef(initial *Hub) *HubRef {
	r := &HubRef{}
	r.v.Store(initial)
	return r
}

func (r *HubRef) Get() (*Hub, bool) {
	h := r.v.Load()
	return h, h != nil
}

func (r *HubRef) Set(h *Hub) {
	r.v.Store(h)
}

// Supervise runs the current hub and replaces it with a new one whenever Run
// panics. It returns once a hub stops normally.
func (r *HubRef) Supervise(restartDelay time.Duration) {
	for {
		h, ok := r.Get()
		if !ok {
			r.Set(NewHub())
			continue
		}
		if !runRecovered(h) {
			return
		}
		// clients still holding the dead hub must not block on it
		h.Stop()
		r.Set(NewHub())
		time.Sleep(restartDelay)
	}
}

func runRecovered(h *Hub) (panicked bool) {
	defer func() {
		if rec := recover(); rec != nil {
			panicked = true
			log.Printf("hub.Run panic: %v\n%s", rec, debug.Stack())
		}
	}()
	h.Run()
	return false
}
