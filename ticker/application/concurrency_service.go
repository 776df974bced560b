package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticker-gateway/ticker/domain"
)

// ErrNoSlot indica que não havia vaga para mais um ticker ativo.
var ErrNoSlot = errors.New("no ticker slot available")

// ConcurrencyService concentra a regra de aquisição/liberação de vagas de ticker
// com timeout, sem saber nada sobre HTTP.
//
// Cada ticker ativo segura uma goroutine (o daemon) até ser fechado, então o
// número de tickers simultâneos precisa de teto.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Em caso de falha o erro embrulha ErrNoSlot e o erro do ctx.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrNoSlot, acqCtx.Err())
	}
	return release, nil
}
