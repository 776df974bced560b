package ticker

import (
	"context"
	"iter"

	"ticker-gateway/ticker/domain"
)

var _ domain.Source[int] = (*TickIter[int])(nil)

// TickIter é a visão de consumo de um Ticker. Obtenha com Ticker.Iter.
type TickIter[T any] struct {
	t *Ticker[T]
}

// Next bloqueia até o próximo tick e então avança a sequência.
//
// A exaustão não é verificada antes do tick: toda chamada consome um tick,
// inclusive a que reporta o fim. Depois do fim, Next continua retornando
// (zero, false) a cada tick.
//
// Next entra em panic com ErrClosed se o Ticker já foi fechado e com
// ErrDaemonStopped se o daemon morreu com o handle vivo.
func (it *TickIter[T]) Next() (T, bool) {
	it.t.mustBeOpen()
	if _, ok := <-it.t.ticks; !ok {
		panic(ErrDaemonStopped)
	}
	return it.t.advance()
}

// NextContext é como Next, mas desiste da espera quando ctx encerra. Nesse caso
// nenhum tick é consumido e o erro do ctx é retornado.
func (it *TickIter[T]) NextContext(ctx context.Context) (T, bool, error) {
	var zero T
	it.t.mustBeOpen()
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}

	select {
	case _, ok := <-it.t.ticks:
		if !ok {
			panic(ErrDaemonStopped)
		}
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}

	v, ok := it.t.advance()
	return v, ok, nil
}

// Close fecha o Ticker subjacente.
func (it *TickIter[T]) Close() {
	it.t.Close()
}

// All devolve a iteração como iter.Seq para uso com range. O Ticker é fechado
// em qualquer saída do loop (fim da sequência, break ou return).
func (it *TickIter[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer it.Close()
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
