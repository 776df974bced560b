package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticker-gateway/ticker/domain"
)

type fakeSource struct {
	items  []int
	pos    int
	closed int
	// blockAfter faz NextContext esperar o ctx depois de entregar n itens.
	blockAfter int
}

func (s *fakeSource) NextContext(ctx context.Context) (int, bool, error) {
	if s.blockAfter > 0 && s.pos >= s.blockAfter {
		<-ctx.Done()
		return 0, false, ctx.Err()
	}
	if s.pos >= len(s.items) {
		return 0, false, nil
	}
	v := s.items[s.pos]
	s.pos++
	return v, true, nil
}

func (s *fakeSource) Close() { s.closed++ }

type fakePacer struct {
	waits int
	err   error
}

func (p *fakePacer) Wait(context.Context) error {
	p.waits++
	return p.err
}

type fakeStats struct {
	events []domain.StatsEvent
	err    error
}

func (s *fakeStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.events = append(s.events, ev)
	return s.err
}

func (s *fakeStats) kinds() []domain.EventKind {
	out := make([]domain.EventKind, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestRunner_Run_DrainsSourceUntilExhausted(t *testing.T) {
	src := &fakeSource{items: []int{1, 2, 3}}
	stats := &fakeStats{}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r := Runner[int]{Name: "numbers", Stats: stats, Now: func() time.Time { return at }}

	var got []int
	n, err := r.Run(context.Background(), src, func(_ context.Context, v int) error {
		got = append(got, v)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 1, src.closed)
	assert.Equal(t, []domain.EventKind{
		domain.EventDelivered, domain.EventDelivered, domain.EventDelivered, domain.EventExhausted,
	}, stats.kinds())
	for _, ev := range stats.events {
		assert.Equal(t, "numbers", ev.Ticker)
		assert.Equal(t, at, ev.At)
	}
}

func TestRunner_Run_HandlerErrorIsWrapped(t *testing.T) {
	src := &fakeSource{items: []int{1, 2, 3}}
	stats := &fakeStats{}
	boom := errors.New("boom")

	n, err := Runner[int]{Stats: stats}.Run(context.Background(), src, func(_ context.Context, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, err, ErrHandler)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, src.closed)
	assert.Equal(t, []domain.EventKind{domain.EventDelivered, domain.EventFailed}, stats.kinds())
}

func TestRunner_Run_StopsWhenContextEnds(t *testing.T) {
	src := &fakeSource{items: []int{1, 2, 3}, blockAfter: 1}
	stats := &fakeStats{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	n, err := Runner[int]{Stats: stats}.Run(ctx, src, func(context.Context, int) error { return nil })

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, src.closed)
	// o evento terminal é registrado mesmo com o ctx encerrado
	assert.Equal(t, []domain.EventKind{domain.EventDelivered, domain.EventCanceled}, stats.kinds())
}

func TestRunner_Run_AppliesPacerPerElement(t *testing.T) {
	src := &fakeSource{items: []int{1, 2, 3}}
	pacer := &fakePacer{}

	n, err := Runner[int]{Pacer: pacer}.Run(context.Background(), src, func(context.Context, int) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, pacer.waits)
}

func TestRunner_Run_PacerErrorStopsBeforeHandler(t *testing.T) {
	src := &fakeSource{items: []int{1, 2, 3}}
	pacer := &fakePacer{err: context.Canceled}
	calls := 0

	n, err := Runner[int]{Pacer: pacer}.Run(context.Background(), src, func(context.Context, int) error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
	assert.Zero(t, calls)
	assert.Equal(t, 1, src.closed)
}

func TestRunner_Run_StatsErrorsAreIgnored(t *testing.T) {
	src := &fakeSource{items: []int{1}}
	stats := &fakeStats{err: errors.New("redis down")}

	n, err := Runner[int]{Stats: stats}.Run(context.Background(), src, func(context.Context, int) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, stats.events, 2)
}
