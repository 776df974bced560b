package ticker

import "log/slog"

type config struct {
	logger *slog.Logger
	name   string
}

// Option configura um Ticker.
type Option func(*config)

// WithLogger define o logger usado pelo Ticker e pelo seu daemon.
// O padrão é slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithName identifica o Ticker nos logs.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

func newConfig(opts []Option) config {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
