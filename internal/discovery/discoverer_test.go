package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeStrategy struct {
	name   string
	delay  time.Duration
	device *Device
	err    error
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Probe(ctx context.Context, req Request) (*Device, error) {
	select {
	case <-time.After(f.delay):
		return f.device, f.err
	case <-ctx.Done():
		return nil, ErrNotFound
	}
}

func TestClient_FirstResultWins(t *testing.T) {
	client := &Client{Strategies: []Strategy{
		&fakeStrategy{name: "slow", delay: 500 * time.Millisecond, device: &Device{Host: "10.0.0.2", Port: 81}},
		&fakeStrategy{name: "fast", delay: 10 * time.Millisecond, device: &Device{Host: "10.0.0.1", Port: 81}},
	}}

	dev, err := client.Discover(context.Background(), Request{Timeout: time.Second})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if dev.Host != "10.0.0.1" {
		t.Errorf("Discover() host = %q, want the fast strategy's 10.0.0.1", dev.Host)
	}
}

func TestClient_FailureThenSuccess(t *testing.T) {
	client := &Client{Strategies: []Strategy{
		&fakeStrategy{name: "broken", err: errors.New("socket closed")},
		&fakeStrategy{name: "ok", delay: 20 * time.Millisecond, device: &Device{Host: "10.0.0.3", Port: 81}},
	}}

	dev, err := client.Discover(context.Background(), Request{Timeout: time.Second})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if dev.Host != "10.0.0.3" {
		t.Errorf("Discover() host = %q, want 10.0.0.3", dev.Host)
	}
}

func TestClient_RespectsTimeout(t *testing.T) {
	client := &Client{Strategies: []Strategy{
		&fakeStrategy{name: "never", delay: time.Hour},
	}}

	var trace []string
	start := time.Now()
	dev, err := client.Discover(context.Background(), Request{
		Timeout: 50 * time.Millisecond,
		Debug:   true,
		Logger:  func(s string) { trace = append(trace, s) },
	})

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Discover() error = %v, want ErrNotFound", err)
	}
	if dev != nil {
		t.Errorf("Discover() device = %v, want nil", dev)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Discover() took %v, want about 50ms", elapsed)
	}
	if len(trace) == 0 || !strings.Contains(trace[0], "never") {
		t.Errorf("debug trace = %v, want a line naming the strategy", trace)
	}
}

func TestClient_NilDeviceIsNotFound(t *testing.T) {
	client := &Client{Strategies: []Strategy{&fakeStrategy{name: "empty"}}}

	_, err := client.Discover(context.Background(), Request{Timeout: time.Second})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Discover() error = %v, want ErrNotFound", err)
	}
}

func TestClient_NoStrategies(t *testing.T) {
	_, err := (&Client{}).Discover(context.Background(), Request{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Discover() error = %v, want ErrNotFound", err)
	}
}

func TestNewClient(t *testing.T) {
	if n := len(NewClient(false).Strategies); n != 1 {
		t.Errorf("NewClient(false) has %d strategies, want 1", n)
	}
	if n := len(NewClient(true).Strategies); n != 2 {
		t.Errorf("NewClient(true) has %d strategies, want 2", n)
	}
}
