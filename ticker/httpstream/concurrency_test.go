package httpstream

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestConcurrencyMiddleware_RejectsWhenNoSlot(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once

	// handler que segura a vaga até liberarmos (como um stream longo).
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedOnce.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusOK)
	})

	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Max:            1,
		AcquireTimeout: 25 * time.Millisecond,
		RetryAfter:     2 * time.Second,
	})(next)

	var wg sync.WaitGroup
	wg.Add(1)

	// request 1: ocupa a vaga e fica pendurado
	go func() {
		defer wg.Done()
		w1 := httptest.NewRecorder()
		h.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "http://example/stream", nil))
		if w1.Code != http.StatusOK {
			t.Errorf("expected first request 200, got %d", w1.Code)
		}
	}()

	select {
	case <-started:
	case <-time.After(200 * time.Millisecond):
		close(release)
		wg.Wait()
		t.Fatalf("timeout waiting first request to start")
	}

	// request 2: deve falhar por timeout ao tentar adquirir
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "http://example/stream", nil))
	if w2.Code != http.StatusServiceUnavailable {
		t.Errorf("expected second request 503, got %d", w2.Code)
	}
	if got := w2.Header().Get("Retry-After"); got != "2" {
		t.Errorf("expected Retry-After=2, got %q", got)
	}

	close(release)
	wg.Wait()

	// com a vaga liberada, a próxima passa
	w3 := httptest.NewRecorder()
	h.ServeHTTP(w3, httptest.NewRequest(http.MethodGet, "http://example/stream", nil))
	if w3.Code != http.StatusOK {
		t.Fatalf("expected third request 200 after release, got %d", w3.Code)
	}
}

func TestConcurrencyMiddleware_DisabledWhenMaxIsZero(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	h := ConcurrencyMiddleware(ConcurrencyOptions{Max: 0})(next)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/stream", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through 204, got %d", w.Code)
	}
}

func TestConcurrencyMiddleware_RetryAfterRoundsUp(t *testing.T) {
	hold := make(chan struct{})
	started := make(chan struct{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-hold
	})

	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Max:            1,
		AcquireTimeout: 20 * time.Millisecond,
		RetryAfter:     300 * time.Millisecond,
	})(next)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/stream", nil))
	}()
	<-started

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://example/stream", nil))
	close(hold)
	<-done

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After=1 for a sub-second delay, got %q", got)
	}
}
