package httpstream

import (
	"math"
	"net/http"
	"time"

	"ticker-gateway/ticker/application"
	"ticker-gateway/ticker/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	// RetryAfter vai no header Retry-After quando rejeitar. 0 não envia.
	RetryAfter time.Duration
}

// ConcurrencyMiddleware limita quantas requisições (streams) ficam ativas ao
// mesmo tempo. Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	// Retry-After é em segundos inteiros; frações arredondam para cima
	retryAfter := formatInt(int(math.Ceil(opts.RetryAfter.Seconds())))

	svc := application.ConcurrencyService{
		Pool:           infra.NewSlotPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				if opts.RetryAfter > 0 {
					w.Header().Set("Retry-After", retryAfter)
				}
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
