package actionize

import (
	"context"
	"sync"
)

// Transition runs units of asynchronous work and reports whether any of them
// is still in flight. Work cannot be cancelled: it runs on a context detached
// from the caller's cancellation and always runs to completion.
type Transition struct {
	mu       sync.Mutex
	inflight int
	wg       sync.WaitGroup
	onChange func()
}

// NewTransition returns a Transition that calls onChange (when non-nil) every
// time a unit of work starts or settles. onChange runs without internal locks
// held.
func NewTransition(onChange func()) *Transition {
	return &Transition{onChange: onChange}
}

// Go starts work even when other work is in flight.
func (t *Transition) Go(ctx context.Context, work func(context.Context)) {
	t.start(ctx, false, nil, work)
}

// TryGo starts work only when nothing is in flight and reports whether it did.
func (t *Transition) TryGo(ctx context.Context, work func(context.Context)) bool {
	return t.start(ctx, true, nil, work)
}

// start reserves an in-flight slot, then runs prepare (when non-nil) before
// onChange fires and work is started. prepare only runs if the slot was
// reserved.
func (t *Transition) start(ctx context.Context, exclusive bool, prepare func(), work func(context.Context)) bool {
	t.mu.Lock()
	if exclusive && t.inflight > 0 {
		t.mu.Unlock()
		return false
	}
	t.inflight++
	t.wg.Add(1)
	t.mu.Unlock()
	if prepare != nil {
		prepare()
	}
	t.changed()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer t.wg.Done()
		defer t.settle()
		work(detached)
	}()
	return true
}

func (t *Transition) settle() {
	t.mu.Lock()
	t.inflight--
	t.mu.Unlock()
	t.changed()
}

func (t *Transition) changed() {
	if t.onChange != nil {
		t.onChange()
	}
}

// Pending reports whether any work is in flight.
func (t *Transition) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight > 0
}

// Wait blocks until all started work has settled.
func (t *Transition) Wait() {
	t.wg.Wait()
}
