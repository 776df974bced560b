package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticker-gateway/ticker/domain"
)

// ErrHandler embrulha o erro retornado pelo handler de Runner.Run.
var ErrHandler = errors.New("handler failed")

// Runner concentra a regra de consumo de uma fonte com taxa limitada.
//
// Ele não sabe nada sobre HTTP nem sobre como os ticks são produzidos: só
// espera o próximo elemento, aplica o Pacer (se houver) e chama o handler.
type Runner[T any] struct {
	// Name identifica a fonte nas estatísticas.
	Name  string
	Pacer domain.Pacer
	Stats domain.StatsStore
	Now   func() time.Time
}

// Run consome src até a exaustão (erro nil), o fim do ctx (erro do ctx) ou um
// erro do handler (embrulhado em ErrHandler). Retorna quantos elementos foram
// entregues ao handler. src é sempre fechado ao sair.
func (r Runner[T]) Run(ctx context.Context, src domain.Source[T], fn func(context.Context, T) error) (int, error) {
	defer src.Close()

	n := 0
	for {
		v, ok, err := src.NextContext(ctx)
		if err != nil {
			r.record(ctx, domain.EventCanceled)
			return n, err
		}
		if !ok {
			r.record(ctx, domain.EventExhausted)
			return n, nil
		}

		if r.Pacer != nil {
			if err := r.Pacer.Wait(ctx); err != nil {
				r.record(ctx, domain.EventCanceled)
				return n, err
			}
		}

		if err := fn(ctx, v); err != nil {
			r.record(ctx, domain.EventFailed)
			return n, fmt.Errorf("%w: %w", ErrHandler, err)
		}
		n++
		r.record(ctx, domain.EventDelivered)
	}
}

func (r Runner[T]) record(ctx context.Context, kind domain.EventKind) {
	if r.Stats == nil {
		return
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	// o evento terminal costuma vir justamente com o ctx cancelado
	_ = r.Stats.Record(context.WithoutCancel(ctx), domain.StatsEvent{
		Ticker: r.Name,
		Kind:   kind,
		At:     now(),
	})
}
