package httpstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ticker-gateway/ticker"
	"ticker-gateway/ticker/application"
	"ticker-gateway/ticker/domain"
)

var (
	ErrInvalidCount    = errors.New("invalid count")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidStart    = errors.New("invalid start")
)

type Options struct {
	Pacers             domain.PacerStore
	Stats              domain.StatsStore
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool

	// DefaultInterval é usado quando a query não traz interval.
	DefaultInterval time.Duration
	// MinInterval rejeita (400) intervalos menores que ele.
	MinInterval time.Duration
	// MaxCount é o teto de elementos por stream e o padrão quando count falta.
	MaxCount int

	Logger *slog.Logger
}

type streamRequest struct {
	start    int64
	count    int
	interval time.Duration
}

func (o *Options) setDefaults() {
	if o.DefaultInterval <= 0 {
		o.DefaultInterval = 1 * time.Second
	}
	if o.MinInterval <= 0 {
		o.MinInterval = 10 * time.Millisecond
	}
	if o.MaxCount <= 0 {
		o.MaxCount = 1000
	}
	if o.KeyFn == nil {
		o.KeyFn = DefaultKeyFunc(o.KeyHeader, o.TrustXForwardedFor)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

func parseRequest(q url.Values, opts Options) (streamRequest, error) {
	req := streamRequest{count: opts.MaxCount, interval: opts.DefaultInterval}

	// count=0 vale como ausente: até MaxCount
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > opts.MaxCount {
			return streamRequest{}, fmt.Errorf("%w: must be between 0 and %d", ErrInvalidCount, opts.MaxCount)
		}
		if n > 0 {
			req.count = n
		}
	}

	if v := q.Get("interval"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < opts.MinInterval {
			return streamRequest{}, fmt.Errorf("%w: must be a duration >= %s", ErrInvalidInterval, opts.MinInterval)
		}
		req.interval = d
	}

	if v := q.Get("start"); v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return streamRequest{}, fmt.Errorf("%w: %q", ErrInvalidStart, v)
		}
		// o último elemento (start+count-1) precisa caber em int64
		if s > math.MaxInt64-int64(req.count-1) {
			return streamRequest{}, fmt.Errorf("%w: %d overflows with count %d", ErrInvalidStart, s, req.count)
		}
		req.start = s
	}
	return req, nil
}

// numbers gera start, start+1, ... (n elementos).
func numbers(start int64, n int) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for i := 0; i < n; i++ {
			if !yield(start + int64(i)) {
				return
			}
		}
	}
}

// Handler transmite uma sequência de inteiros, um por linha, a no máximo um
// elemento por intervalo. O corpo é enviado em partes (flush a cada linha).
func Handler(opts Options) http.Handler {
	opts.setDefaults()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		req, err := parseRequest(r.URL.Query(), opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		key := opts.KeyFn(r)
		log := opts.Logger.With("key", key, "path", r.URL.Path)

		runner := application.Runner[int64]{Name: r.URL.Path, Stats: opts.Stats}
		if opts.Pacers != nil {
			runner.Pacer = opts.Pacers.Get(domain.Key(key))
		}

		flusher, _ := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Tick-Interval", req.interval.String())
		w.Header().Set("X-Tick-Count", formatInt(req.count))
		w.WriteHeader(http.StatusOK)
		if flusher != nil {
			flusher.Flush()
		}

		tk := ticker.New(numbers(req.start, req.count), req.interval,
			ticker.WithLogger(opts.Logger),
			ticker.WithName(key),
		)

		started := time.Now()
		n, err := runner.Run(r.Context(), tk.Iter(), func(_ context.Context, v int64) error {
			if _, err := io.WriteString(w, formatInt64(v)+"\n"); err != nil {
				return err
			}
			if flusher != nil {
				flusher.Flush()
			}
			return nil
		})

		// o status já foi enviado; a partir daqui só dá para registrar
		switch {
		case err == nil:
			log.Debug("stream finished", "sent", n, "elapsed", time.Since(started))
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			log.Debug("stream canceled", "sent", n, "elapsed", time.Since(started))
		default:
			log.Warn("stream aborted", "sent", n, "error", err)
		}
	})
}
