package infra

import (
	"context"
	"sync"

	"ticker-gateway/ticker/domain"
)

type Counters struct {
	Delivered int64
	Exhausted int64
	Canceled  int64
	Failed    int64
}

func (c *Counters) add(kind domain.EventKind) {
	switch kind {
	case domain.EventDelivered:
		c.Delivered++
	case domain.EventExhausted:
		c.Exhausted++
	case domain.EventCanceled:
		c.Canceled++
	case domain.EventFailed:
		c.Failed++
	}
}

// Runs conta quantos consumos terminaram, independente do motivo.
func (c Counters) Runs() int64 { return c.Exhausted + c.Canceled + c.Failed }

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byTicker map[string]Counters

	trackTickers bool
}

type MemoryStatsOption func(*MemoryStatsStore)

// WithTrackTickers liga os contadores por nome de ticker.
func WithTrackTickers(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackTickers = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byTicker: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Kind)
	if s.trackTickers && ev.Ticker != "" {
		c := s.byTicker[ev.Ticker]
		c.add(ev.Kind)
		s.byTicker[ev.Ticker] = c
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByTicker() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Counters, len(s.byTicker))
	for k, v := range s.byTicker {
		out[k] = v
	}
	return out
}
