package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// pathRecorder serves canned statuses per path and records the order of calls.
type pathRecorder struct {
	mu       sync.Mutex
	calls    []string
	statuses map[string]int
	bodies   map[string]string
}

func (p *pathRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.calls = append(p.calls, r.URL.Path)
	status, ok := p.statuses[r.URL.Path]
	body := p.bodies[r.URL.Path]
	p.mu.Unlock()
	if !ok {
		status = http.StatusNotFound
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (p *pathRecorder) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func TestTryPaths_FirstSuccessStops(t *testing.T) {
	rec := &pathRecorder{
		statuses: map[string]int{"/a": 404, "/b": 200, "/c": 200},
		bodies:   map[string]string{"/b": `{"ok":true}`},
	}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := newTestClient(server.URL, "")
	resp, err := client.TryPaths(context.Background(), []string{"/a", "/b", "/c"}, RequestOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"ok":true}` {
		t.Errorf("body = %q", resp.Text())
	}
	calls := rec.Calls()
	if strings.Join(calls, ",") != "/a,/b" {
		t.Errorf("calls = %v, want [/a /b]", calls)
	}
}

func TestTryPaths_ExhaustedReportsLastAttempt(t *testing.T) {
	rec := &pathRecorder{
		statuses: map[string]int{"/a": 404, "/b": 500, "/c": 405},
		bodies:   map[string]string{"/a": "nope", "/b": "boom"},
	}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := newTestClient(server.URL, "")
	_, err := client.TryPaths(context.Background(), []string{"/a", "/b", "/c"}, RequestOptions{})

	var exhausted *RequestExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected *RequestExhaustedError, got %v", err)
	}
	if exhausted.Status != 405 {
		t.Errorf("Status = %d, want 405", exhausted.Status)
	}
	// An empty body falls back to the status text.
	if exhausted.Body != "405" {
		t.Errorf("Body = %q, want %q", exhausted.Body, "405")
	}
	if len(exhausted.Attempts) != 3 {
		t.Fatalf("Attempts = %d, want 3", len(exhausted.Attempts))
	}
	if exhausted.Attempts[1].Path != "/b" || exhausted.Attempts[1].Status != 500 {
		t.Errorf("Attempts[1] = %+v", exhausted.Attempts[1])
	}
	if len(rec.Calls()) != 3 {
		t.Errorf("calls = %v", rec.Calls())
	}
	if StatusCode(err) != 405 {
		t.Errorf("StatusCode(err) = %d, want 405", StatusCode(err))
	}
}

func TestTryPaths_ExhaustedMessageUsesBody(t *testing.T) {
	rec := &pathRecorder{
		statuses: map[string]int{"/a": 400},
		bodies:   map[string]string{"/a": "placa inválida"},
	}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := newTestClient(server.URL, "")
	_, err := client.TryPaths(context.Background(), []string{"/a"}, RequestOptions{})
	if err == nil || !strings.Contains(err.Error(), "placa inválida") {
		t.Errorf("error = %v, want message containing the body", err)
	}
}

func TestTryPaths_TimeoutFallsThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	mux.HandleFunc("/fast", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL, "")
	resp, err := client.TryPaths(context.Background(), []string{"/slow", "/fast"}, RequestOptions{Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(resp.URL, "/fast") {
		t.Errorf("URL = %q, want /fast", resp.URL)
	}
}

func TestTryPaths_AllNetworkFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url, "")
	_, err := client.TryPaths(context.Background(), []string{"/a", "/b"}, RequestOptions{})

	var exhausted *RequestExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("Expected *RequestExhaustedError, got %v", err)
	}
	if exhausted.Status != 0 {
		t.Errorf("Status = %d, want 0", exhausted.Status)
	}
	if len(exhausted.Attempts) != 2 {
		t.Errorf("Attempts = %d, want 2", len(exhausted.Attempts))
	}
	if !IsNetworkError(err) {
		t.Error("exhaustion after transport failures should unwrap to a NetworkError")
	}
}

func TestTryPaths_CancelledContextStops(t *testing.T) {
	rec := &pathRecorder{statuses: map[string]int{"/b": 200}}
	server := httptest.NewServer(rec)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(server.URL, "")
	_, err := client.TryPaths(ctx, []string{"/a", "/b"}, RequestOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	var exhausted *RequestExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("cancellation should not be reported as exhaustion")
	}
}

func TestTryPaths_EmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for empty path list")
		}
	}()
	client := newTestClient("http://127.0.0.1:1", "")
	_, _ = client.TryPaths(context.Background(), nil, RequestOptions{})
}

func TestPathSet_Merge(t *testing.T) {
	base := DefaultPaths()
	merged := base.Merge(PathSet{
		Areas: []string{"/v2/areas"},
		Users: "/api/v2/Usuarios",
	})

	if len(merged.Areas) != 1 || merged.Areas[0] != "/v2/areas" {
		t.Errorf("Areas = %v", merged.Areas)
	}
	if merged.Users != "/api/v2/Usuarios" {
		t.Errorf("Users = %q", merged.Users)
	}
	if len(merged.Login) != len(base.Login) {
		t.Errorf("Login should keep the defaults, got %v", merged.Login)
	}
	if len(base.Areas) != 4 {
		t.Errorf("Merge must not modify the receiver, Areas = %v", base.Areas)
	}
}

func TestPathSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		paths   PathSet
		wantErr string
	}{
		{"defaults", DefaultPaths(), ""},
		{"empty login", PathSet{Register: []string{"/r"}, Motorcycles: []string{"/m"}, Areas: []string{"/a"}, Users: "/u"}, "login"},
		{"blank entry", PathSet{Login: []string{"/l"}, Register: []string{"/r"}, Motorcycles: []string{""}, Areas: []string{"/a"}, Users: "/u"}, "motorcycles"},
		{"no users", PathSet{Login: []string{"/l"}, Register: []string{"/r"}, Motorcycles: []string{"/m"}, Areas: []string{"/a"}}, "users"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.paths.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestWithSuffix(t *testing.T) {
	got := withSuffix([]string{"/api/v1/Motos", "/api/Motos"}, idSuffix(12))
	if got[0] != "/api/v1/Motos/12" || got[1] != "/api/Motos/12" {
		t.Errorf("withSuffix = %v", got)
	}
}
