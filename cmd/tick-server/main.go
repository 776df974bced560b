package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"ticker-gateway/ticker/domain"
	"ticker-gateway/ticker/httpstream"
	"ticker-gateway/ticker/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel}))

	pacers := infra.NewPacerStore(cfg.clientRPS, cfg.clientBurst)

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			log.Fatalf("redis stats ping error: %v", err)
		}

		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackTickers(cfg.statsTrackTickers),
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	pacers.StartJanitor(ctx)

	stream := httpstream.Handler(httpstream.Options{
		Pacers:             pacers,
		Stats:              statsStore,
		KeyHeader:          cfg.keyHeader,
		TrustXForwardedFor: cfg.trustXFF,
		DefaultInterval:    cfg.defaultInterval,
		MinInterval:        cfg.minInterval,
		MaxCount:           cfg.maxCount,
		Logger:             logger,
	})
	stream = httpstream.ConcurrencyMiddleware(httpstream.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
		RetryAfter:     cfg.retryAfter,
	})(stream)

	mux := http.NewServeMux()
	mux.Handle("/stream", stream)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	// sem WriteTimeout: um stream dura count*interval
	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       90 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("tick-server listening on %s", cfg.listenAddr)
	log.Printf("stream: defaultInterval=%s minInterval=%s maxCount=%d", cfg.defaultInterval, cfg.minInterval, cfg.maxCount)
	log.Printf("client pacing: rps=%.3f burst=%d keyHeader=%q trustXFF=%v", cfg.clientRPS, cfg.clientBurst, cfg.keyHeader, cfg.trustXFF)
	log.Printf("stats: enabled=%v redisAddr=%q bucket=%q ttl=%s trackTickers=%v", cfg.statsEnabled, cfg.statsRedisAddr, cfg.statsBucket, cfg.statsTTL, cfg.statsTrackTickers)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr string
	logLevel   slog.Level

	defaultInterval time.Duration
	minInterval     time.Duration
	maxCount        int

	clientRPS   float64
	clientBurst int
	keyHeader   string
	trustXFF    bool

	concurrencyMax     int
	concurrencyTimeout time.Duration
	retryAfter         time.Duration

	statsEnabled       bool
	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
	statsBucket        string
	statsTrackTickers  bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	if err := cfg.logLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return config{}, errors.New("LOG_LEVEL must be debug, info, warn or error")
	}

	cfg.defaultInterval = getenvDurationDefault("STREAM_DEFAULT_INTERVAL", 1*time.Second)
	cfg.minInterval = getenvDurationDefault("STREAM_MIN_INTERVAL", 10*time.Millisecond)
	cfg.maxCount = getenvIntDefault("STREAM_MAX_COUNT", 1000)

	// CLIENT_RPS=0 desliga o orçamento por cliente; só o intervalo do stream vale.
	cfg.clientRPS = getenvFloatDefault("CLIENT_RPS", 0)
	cfg.clientBurst = getenvIntDefault("CLIENT_BURST", 1)
	cfg.keyHeader = os.Getenv("CLIENT_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", false)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)
	cfg.retryAfter = getenvDurationDefault("RETRY_AFTER", 1*time.Second)

	cfg.statsEnabled = getenvBoolDefault("STATS_ENABLED", false)
	cfg.statsRedisAddr = getenvDefault("STATS_REDIS_ADDR", "")
	cfg.statsRedisPassword = os.Getenv("STATS_REDIS_PASSWORD")
	cfg.statsRedisDB = getenvIntDefault("STATS_REDIS_DB", 0)
	cfg.statsPrefix = getenvDefault("STATS_PREFIX", "ticker:stats")
	cfg.statsTTL = getenvDurationDefault("STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("STATS_BUCKET", "minute")
	cfg.statsTrackTickers = getenvBoolDefault("STATS_TRACK_TICKERS", false)

	if cfg.statsEnabled && strings.TrimSpace(cfg.statsRedisAddr) == "" {
		return config{}, errors.New("STATS_REDIS_ADDR is required when STATS_ENABLED=true")
	}
	if cfg.minInterval <= 0 {
		return config{}, errors.New("STREAM_MIN_INTERVAL must be > 0")
	}
	if cfg.defaultInterval < cfg.minInterval {
		return config{}, errors.New("STREAM_DEFAULT_INTERVAL must be >= STREAM_MIN_INTERVAL")
	}
	if cfg.maxCount <= 0 {
		return config{}, errors.New("STREAM_MAX_COUNT must be > 0")
	}
	if cfg.clientRPS < 0 {
		return config{}, errors.New("CLIENT_RPS must be >= 0")
	}
	if cfg.clientBurst <= 0 {
		return config{}, errors.New("CLIENT_BURST must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
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

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
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
