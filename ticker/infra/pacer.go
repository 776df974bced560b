package infra

import (
	"context"
	"sync"
	"time"

	"ticker-gateway/ticker/domain"

	"golang.org/x/time/rate"
)

// PacerStore é uma implementação de infra baseada em token-bucket (x/time/rate)
// com um Pacer por chave e limpeza periódica.
//
// Todos os tickers de uma mesma chave dividem o mesmo bucket: dois streams do
// mesmo cliente, juntos, não passam de rps elementos por segundo.
type PacerStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*pacerEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type pacerEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type PacerOption func(*PacerStore)

func WithIdleTTL(d time.Duration) PacerOption {
	return func(s *PacerStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) PacerOption {
	return func(s *PacerStore) { s.cleanupEvery = d }
}

// WithClock troca o relógio usado para idle TTL (útil em testes).
func WithClock(now func() time.Time) PacerOption {
	return func(s *PacerStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPacerStore cria o store. rps <= 0 desliga o limite (rate.Inf).
func NewPacerStore(rps float64, burst int, opts ...PacerOption) *PacerStore {
	lim := rate.Limit(rps)
	if rps <= 0 {
		lim = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	s := &PacerStore{
		entries:      make(map[domain.Key]*pacerEntry),
		rps:          lim,
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PacerStore) RPS() float64 { return float64(s.rps) }
func (s *PacerStore) Burst() int   { return s.burst }
func (s *PacerStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get implementa domain.PacerStore. *rate.Limiter já satisfaz domain.Pacer.
func (s *PacerStore) Get(key domain.Key) domain.Pacer {
	return s.limiter(key)
}

func (s *PacerStore) limiter(key domain.Key) *rate.Limiter {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &pacerEntry{lim: lim, lastSeen: now}
	return lim
}

// Cleanup remove chaves sem uso há mais de idleTTL.
func (s *PacerStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *PacerStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

var _ domain.Pacer = (*rate.Limiter)(nil)
