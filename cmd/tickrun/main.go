package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"ticker-gateway/ticker"
	"ticker-gateway/ticker/application"
	"ticker-gateway/ticker/infra"
)

// tickrun lê linhas da entrada padrão e as repete na saída, no máximo uma por
// TICK_INTERVAL. Ex.: `cat urls.txt | TICK_INTERVAL=2s tickrun | xargs -n1 curl`.
//
// SIGINT/SIGTERM encerram mesmo com o stdin parado: a leitura roda numa
// goroutine própria e a sequência desiste dela quando o ctx acaba.
func main() {
	interval := getenvDurationDefault("TICK_INTERVAL", 1*time.Second)
	limit := getenvIntDefault("TICK_LIMIT", 0)

	level := slog.LevelInfo
	if getenvBoolDefault("TICK_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stats := infra.NewMemoryStatsStore()
	n, err := run(ctx, os.Stdin, os.Stdout, interval, limit, stats, logger)

	total := stats.Total()
	log.Printf("tickrun: sent=%d delivered=%d exhausted=%d canceled=%d", n, total.Delivered, total.Exhausted, total.Canceled)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("tickrun error: %v", err)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer, interval time.Duration, limit int, stats *infra.MemoryStatsStore, logger *slog.Logger) (int, error) {
	src := lines(ctx, in)
	if limit > 0 {
		src = take(src, limit)
	}

	tk := ticker.New(src, interval, ticker.WithLogger(logger), ticker.WithName("stdin"))
	runner := application.Runner[string]{Name: "stdin", Stats: stats}

	n, err := runner.Run(ctx, tk.Iter(), func(_ context.Context, line string) error {
		_, err := fmt.Fprintln(out, line)
		return err
	})
	// lines encerra a sequência quando o ctx acaba; o Runner vê isso como fim
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return n, err
}

// lines lê r linha a linha numa goroutine, para que o fim do ctx interrompa a
// espera por uma linha. Erro de leitura encerra a sequência. A goroutine de
// leitura só termina quando r devolve algo ou fecha.
func lines(ctx context.Context, r io.Reader) iter.Seq[string] {
	return func(yield func(string) bool) {
		done := make(chan struct{})
		defer close(done)

		ch := make(chan string)
		go func() {
			defer close(ch)
			sc := bufio.NewScanner(r)
			for sc.Scan() {
				select {
				case ch <- sc.Text():
				case <-done:
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case line, ok := <-ch:
				if !ok || !yield(line) {
					return
				}
			}
		}
	}
}

func take[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			i++
			if i >= n {
				return
			}
		}
	}
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
