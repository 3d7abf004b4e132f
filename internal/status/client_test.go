package status

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const mockStatusResponse = `{"version":"0.9.0","ip":"192.168.4.1","rssi":-61,"freeHeap":123456,"uptime":3725}`

func TestNewClient(t *testing.T) {
	client := NewClient("192.168.4.1", 80)

	if client.BaseURL != "http://192.168.4.1:80" {
		t.Errorf("BaseURL = %s, want http://192.168.4.1:80", client.BaseURL)
	}
	if client.HTTPClient == nil {
		t.Error("HTTPClient should not be nil")
	}
	if !client.UseExponentialBackoff {
		t.Error("exponential backoff should be enabled by default")
	}

	client = NewClient("fe80::1", 8080)
	if client.BaseURL != "http://[fe80::1]:8080" {
		t.Errorf("BaseURL = %s", client.BaseURL)
	}
}

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "crosspoint/") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(mockStatusResponse))
	}))
	defer server.Close()

	st, err := NewClientWithURL(server.URL).Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if st.Version != "0.9.0" || st.IP != "192.168.4.1" || st.FreeHeap != 123456 {
		t.Errorf("Get() = %+v", st)
	}
	if st.UptimeDuration() != time.Hour+2*time.Minute+5*time.Second {
		t.Errorf("UptimeDuration() = %v", st.UptimeDuration())
	}
	if st.SignalQuality() != "good" {
		t.Errorf("SignalQuality() = %s", st.SignalQuality())
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(mockStatusResponse))
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	client.SetRetry(3, time.Millisecond)

	if _, err := client.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestGet_NotFoundIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	client.SetRetry(3, time.Millisecond)

	_, err := client.Get(context.Background())
	var se *Error
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("Get() error = %v, want 404 status error", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestGet_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":`))
	}))
	defer server.Close()

	_, err := NewClientWithURL(server.URL).Get(context.Background())
	if err == nil {
		t.Fatal("Get() should fail on malformed JSON")
	}
	if IsRetryable(err) {
		t.Error("parse errors should not be retried")
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithURL(server.URL)
	client.SetRetry(5, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Get() error = %v, want deadline exceeded", err)
	}
}

func TestSignalQuality(t *testing.T) {
	tests := []struct {
		rssi int
		want string
	}{
		{0, "unknown"},
		{-40, "excellent"},
		{-60, "good"},
		{-75, "fair"},
		{-90, "poor"},
	}
	for _, tt := range tests {
		s := &Status{RSSI: tt.rssi}
		if got := s.SignalQuality(); got != tt.want {
			t.Errorf("SignalQuality(%d) = %s, want %s", tt.rssi, got, tt.want)
		}
	}
}
