package services

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned when a later request replaced the one being committed.
var ErrSuperseded = errors.New("superseded by a later request")

// Ticket identifies one issued request.
type Ticket struct {
	seq uint64
}

// Seq returns the ticket's position in issue order.
func (t Ticket) Seq() uint64 { return t.seq }

// Sequencer lets only the most recently issued request publish its result.
// Begin cancels the context of the request it supersedes.
type Sequencer struct {
	mu     sync.Mutex
	latest uint64
	cancel context.CancelFunc
}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Begin issues a new ticket and returns a context that is canceled once a later ticket is issued
// or the sequencer is stopped.
func (s *Sequencer) Begin(ctx context.Context) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.latest++
	s.cancel = cancel
	return ctx, Ticket{seq: s.latest}
}

// Commit runs apply only if ticket is still the latest; apply runs under the sequencer lock so
// a newer Begin cannot interleave with it.
func (s *Sequencer) Commit(ticket Ticket, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.seq != s.latest {
		return false
	}
	if apply != nil {
		apply()
	}
	return true
}

// Done releases the context of ticket when it is still current.
func (s *Sequencer) Done(ticket Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket.seq == s.latest && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stop cancels the in-flight request and invalidates every issued ticket.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.latest++
}
