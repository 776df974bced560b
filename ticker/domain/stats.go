package domain

import (
	"context"
	"time"
)

// EventKind classifica um evento de consumo.
type EventKind string

const (
	// EventDelivered: um elemento foi entregue ao handler.
	EventDelivered EventKind = "delivered"
	// EventExhausted: a sequência terminou.
	EventExhausted EventKind = "exhausted"
	// EventCanceled: o ctx encerrou antes do fim da sequência.
	EventCanceled EventKind = "canceled"
	// EventFailed: o handler retornou erro.
	EventFailed EventKind = "failed"
)

// Terminal indica se o evento encerra o consumo.
func (k EventKind) Terminal() bool { return k != EventDelivered }

// StatsEvent representa um evento do consumo de um ticker.
//
// Observação: cuidado com cardinalidade em Ticker (ex.: usar um id por request
// pode explodir o número de chaves numa base como Redis).
type StatsEvent struct {
	Ticker string
	Kind   EventKind

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de consumo.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem registra deve tratar erro como best-effort (não derrubar o consumo).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
