package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestSequencerOnlyLatestCommits(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	seq := NewSequencer()
	var (
		mu        sync.Mutex
		published []string
	)
	publish := func(v string) func() {
		return func() {
			mu.Lock()
			published = append(published, v)
			mu.Unlock()
		}
	}

	ctxA, ticketA := seq.Begin(context.Background())
	ctxB, ticketB := seq.Begin(context.Background())

	// A was superseded the moment B began.
	select {
	case <-ctxA.Done():
	case <-time.After(time.Second):
		t.Fatal("request A was not canceled")
	}
	require.NoError(t, ctxB.Err())

	// B resolves first, A resolves afterwards.
	assert.True(t, seq.Commit(ticketB, publish("B")))
	assert.False(t, seq.Commit(ticketA, publish("A")))

	assert.Equal(t, []string{"B"}, published)
	assert.Greater(t, ticketB.Seq(), ticketA.Seq())

	seq.Done(ticketB)
	assert.ErrorIs(t, ctxB.Err(), context.Canceled)
}

func TestSequencerConcurrentRequests(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	seq := NewSequencer()
	var committed []uint64
	var wg sync.WaitGroup

	tickets := make([]Ticket, 5)
	for i := range tickets {
		_, tickets[i] = seq.Begin(context.Background())
	}
	last := tickets[len(tickets)-1]

	for _, ticket := range tickets {
		ticket := ticket
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq.Commit(ticket, func() { committed = append(committed, ticket.Seq()) })
		}()
	}
	wg.Wait()

	assert.Equal(t, []uint64{last.Seq()}, committed)
}

func TestSequencerStopInvalidatesTickets(t *testing.T) {
	seq := NewSequencer()
	ctx, ticket := seq.Begin(context.Background())

	seq.Stop()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, seq.Commit(ticket, func() { t.Fatal("stopped sequencer committed") }))
}

func TestSequencerParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	seq := NewSequencer()
	ctx, ticket := seq.Begin(parent)

	cancel()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	// Nothing superseded it, so the result may still be applied.
	assert.True(t, seq.Commit(ticket, nil))
}
