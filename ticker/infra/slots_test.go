package infra

import (
	"context"
	"testing"
	"time"
)

func TestSlotPool_BlocksWhenFullUntilRelease(t *testing.T) {
	p := NewSlotPool(1)

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected second acquire to time out")
	}

	release()
	release() // idempotente: não libera uma vaga que não era dele

	if _, ok := p.Acquire(context.Background()); !ok {
		t.Fatalf("expected acquire to succeed after release")
	}
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	if _, ok := p.Acquire(ctx2); ok {
		t.Fatalf("expected pool to be full again (double release must not free two slots)")
	}
}

func TestSlotPool_NonPositiveMaxIsUnlimited(t *testing.T) {
	p := NewSlotPool(0)
	for i := 0; i < 100; i++ {
		if _, ok := p.Acquire(context.Background()); !ok {
			t.Fatalf("acquire %d failed", i)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected canceled ctx to fail")
	}
}
