package infra

import (
	"context"

	"ticker-gateway/ticker/domain"
)

type slotPool struct {
	sem chan struct{}
}

// NewSlotPool cria um pool simples baseado em channel com capacidade `max`.
// max <= 0 não limita.
func NewSlotPool(max int) domain.SlotPool {
	if max <= 0 {
		return unlimitedPool{}
	}
	return &slotPool{sem: make(chan struct{}, max)}
}

func (p *slotPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		var done bool
		return func() {
			if done {
				return
			}
			done = true
			<-p.sem
		}, true
	case <-ctx.Done():
		return nil, false
	}
}

type unlimitedPool struct{}

func (unlimitedPool) Acquire(ctx context.Context) (func(), bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	return func() {}, true
}
