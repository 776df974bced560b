package ticker

import (
	"errors"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"time"
)

var (
	// ErrClosed é o valor do panic quando um Ticker já fechado é consumido.
	ErrClosed = errors.New("ticker: use of closed ticker")
	// ErrDaemonStopped é o valor do panic quando o canal de ticks foi fechado
	// com o handle ainda vivo. O daemon deveria sobreviver a todo Next.
	ErrDaemonStopped = errors.New("ticker: timer daemon stopped")
)

// Ticker limita a taxa de um iter.Seq: cada avanço espera um tick, e o daemon
// emite no máximo um tick por intervalo.
//
// O Ticker é dono exclusivo da sequência. Não é seguro para uso concorrente:
// existe exatamente um consumidor por Ticker.
type Ticker[T any] struct {
	next func() (T, bool)

	ticks <-chan struct{}
	rel   release

	interval time.Duration
	log      *slog.Logger

	closed    bool
	exhausted bool
	cleanup   runtime.Cleanup
}

// release agrupa o que precisa ser liberado no fechamento. Não referencia o
// Ticker, então pode ser usado pelo runtime.AddCleanup.
type release struct {
	kill chan<- struct{}
	stop func()
}

func (r release) run() {
	// nunca bloqueia: o slot único já pode estar ocupado ou o daemon já ter saído.
	select {
	case r.kill <- struct{}{}:
	default:
	}
	r.stop()
}

// New cria um Ticker sobre src, retornando de Next no máximo uma vez a cada
// interval. O daemon começa a contar imediatamente.
//
// interval <= 0 não limita: os ticks ficam disponíveis o tempo todo.
func New[T any](src iter.Seq[T], interval time.Duration, opts ...Option) *Ticker[T] {
	cfg := newConfig(opts)

	ticks := make(chan struct{})
	kill := make(chan struct{}, 1)
	next, stop := iter.Pull(src)

	log := cfg.logger.With("ticker", cfg.name, "interval", interval)

	t := &Ticker[T]{
		next:     next,
		ticks:    ticks,
		rel:      release{kill: kill, stop: stop},
		interval: interval,
		log:      log,
	}

	go runDaemon(interval, ticks, kill, log)
	log.Debug("ticker started")

	// Ticker coletado sem Close: o daemon recebe o sinal de parada mesmo assim.
	t.cleanup = runtime.AddCleanup(t, release.run, t.rel)
	return t
}

// FromSlice é um atalho para New(slices.Values(s), interval, opts...).
func FromSlice[T any](s []T, interval time.Duration, opts ...Option) *Ticker[T] {
	return New(slices.Values(s), interval, opts...)
}

// Interval retorna o intervalo configurado.
func (t *Ticker[T]) Interval() time.Duration { return t.interval }

// Close envia o sinal de parada ao daemon (uma única vez) e libera a sequência.
// Não espera o daemon terminar. Chamadas repetidas não fazem nada.
func (t *Ticker[T]) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.cleanup.Stop()
	t.rel.run()
	t.log.Debug("ticker closed")
}

// Iter converte o Ticker na sua forma de iteração. O Ticker não deve mais ser
// usado diretamente depois disso.
func (t *Ticker[T]) Iter() *TickIter[T] {
	return &TickIter[T]{t: t}
}

// All equivale a t.Iter().All().
func (t *Ticker[T]) All() iter.Seq[T] {
	return t.Iter().All()
}

func (t *Ticker[T]) mustBeOpen() {
	if t.closed {
		panic(ErrClosed)
	}
}

func (t *Ticker[T]) advance() (T, bool) {
	v, ok := t.next()
	if !ok && !t.exhausted {
		t.exhausted = true
		t.log.Debug("ticker source exhausted")
	}
	return v, ok
}

// runDaemon emite um tick por intervalo até receber o sinal de parada.
//
// Os ticks pendentes ficam numa fila sem limite (um contador, já que o tick não
// carrega dado). Tick enviado nunca é descartado; o contador só zera quando o
// daemon sai.
func runDaemon(interval time.Duration, ticks chan<- struct{}, kill <-chan struct{}, log *slog.Logger) {
	defer close(ticks)

	var elapsed <-chan time.Time
	if interval > 0 {
		tk := time.NewTicker(interval)
		defer tk.Stop()
		elapsed = tk.C
	}

	var sent, pending uint64
	for {
		var out chan<- struct{}
		if pending > 0 || interval <= 0 {
			out = ticks
		}

		select {
		case <-kill:
			log.Debug("ticker daemon stopped", "sent", sent, "pending", pending)
			return
		case <-elapsed:
			pending++
		case out <- struct{}{}:
			sent++
			if pending > 0 {
				pending--
			}
		}
	}
}
