package actionize

import (
	"context"

	"github.com/google/uuid"
)

// Submission is a handle on one started submission.
type Submission[R any] struct {
	id     string
	done   chan struct{}
	result R
	err    error
}

func newSubmission[R any]() *Submission[R] {
	return &Submission[R]{id: uuid.NewString(), done: make(chan struct{})}
}

func (s *Submission[R]) settle(result R, err error) {
	s.result, s.err = result, err
	close(s.done)
}

// ID identifies the submission in logs.
func (s *Submission[R]) ID() string { return s.id }

// Done is closed once the action has settled and callbacks have run.
func (s *Submission[R]) Done() <-chan struct{} { return s.done }

// Wait blocks until the submission settles or ctx is done. Cancelling ctx
// stops the wait, not the submission.
func (s *Submission[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-s.done:
		return s.result, s.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}
