package rmw

import (
	"context"
	"reflect"
	"sync"
)

// WaitSet multiplexes readiness across any number of waitable entities:
// subscriptions, clients, services, and guard conditions.
//
// A WaitSet holds no goroutines; Wait selects directly over the ready
// channels of the entities added so far.
type WaitSet struct {
	mu        sync.Mutex
	waitables []Waitable
}

// NewWaitSet returns an empty set.
func NewWaitSet() *WaitSet {
	return &WaitSet{}
}

// Add registers entities with the set. Entities added while another
// goroutine is in Wait are picked up by the next Wait call.
func (ws *WaitSet) Add(entities ...Waitable) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.waitables = append(ws.waitables, entities...)
}

// Remove drops w from the set.
func (ws *WaitSet) Remove(w Waitable) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for i, have := range ws.waitables {
		if have == w {
			ws.waitables = append(ws.waitables[:i], ws.waitables[i+1:]...)
			return
		}
	}
}

// Wait blocks until at least one entity is ready or ctx is done, then
// reports every entity ready at that moment, in the order they were
// added. Readiness may be spurious; a Take on a reported entity can
// still find nothing.
//
// A Wait on an empty set blocks until ctx is done.
func (ws *WaitSet) Wait(ctx context.Context) ([]Waitable, error) {
	ws.mu.Lock()
	waitables := make([]Waitable, len(ws.waitables))
	copy(waitables, ws.waitables)
	ws.mu.Unlock()

	cases := make([]reflect.SelectCase, 0, len(waitables)+1)
	for _, w := range waitables {
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(w.Ready()),
		})
	}
	cases = append(cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(ctx.Done()),
	})

	chosen, _, _ := reflect.Select(cases)
	if chosen == len(waitables) {
		return nil, ctx.Err()
	}

	// One entity woke us; sweep the rest without blocking so everything
	// already ready rides along in add order.
	ready := make([]bool, len(waitables))
	ready[chosen] = true
	for i, w := range waitables {
		if i == chosen {
			continue
		}
		select {
		case <-w.Ready():
			ready[i] = true
		default:
		}
	}

	out := make([]Waitable, 0, len(waitables))
	for i, ok := range ready {
		if ok {
			out = append(out, waitables[i])
		}
	}
	return out, nil
}
