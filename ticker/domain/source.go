package domain

// Camada de domínio do consumo com taxa limitada.
//
// Contratos (interfaces/tipos) sem dependência de net/http.

import "context"

type Key string

// Source é uma sequência que bloqueia entre os elementos (ex: *ticker.TickIter).
//
// NextContext retorna (v, true, nil) para um elemento, (zero, false, nil) na
// exaustão e (zero, false, err) quando o ctx encerra antes do próximo tick.
// Close libera a fonte e deve ser seguro chamar mais de uma vez.
type Source[T any] interface {
	NextContext(ctx context.Context) (T, bool, error)
	Close()
}

// Pacer representa um orçamento extra aplicado a cada elemento entregue.
//
// Observação: a implementação pode ser token-bucket compartilhado entre vários
// tickers do mesmo cliente. A camada de infra usa golang.org/x/time/rate.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PacerStore obtém um Pacer por chave (ex: IP, API key, usuário).
// A implementação pode manter cache, TTL, etc.
type PacerStore interface {
	Get(Key) Pacer
}
