package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func testConfig(timeout time.Duration) Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      2,
		Interval:         10 * time.Second,
		Timeout:          timeout,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestCircuitBreaker_TripsOpen(t *testing.T) {
	cb := New(testConfig(time.Second))
	errBoom := errors.New("boom")

	// 4 failures + 1 success = 80% failure rate over 5 requests
	for i := 0; i < 4; i++ {
		if err := cb.Run(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("request %d: expected boom, got %v", i, err)
		}
	}
	if err := cb.Run(func() error { return nil }); err != nil {
		t.Fatalf("success request failed: %v", err)
	}
	_ = cb.Run(func() error { return errBoom })

	if !cb.IsOpen() {
		t.Fatalf("expected state=Open, got %v", cb.State())
	}

	err := cb.Run(func() error {
		t.Error("function should not be called when circuit is open")
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
}

func TestCircuitBreaker_MinRequests(t *testing.T) {
	cb := New(testConfig(time.Second))

	for i := 0; i < 4; i++ {
		_ = cb.Run(func() error { return errors.New("fail") })
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected Closed below MinRequests, got %v", cb.State())
	}
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	cb := New(testConfig(50 * time.Millisecond))
	for i := 0; i < 6; i++ {
		_ = cb.Run(func() error { return errors.New("fail") })
	}
	if !cb.IsOpen() {
		t.Fatalf("circuit should be open, got %v", cb.State())
	}

	time.Sleep(100 * time.Millisecond)

	got, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("expected success in half-open state, got %v", err)
	}
	if got != "ok" {
		t.Errorf("expected result 'ok', got %v", got)
	}
	if cb.IsOpen() {
		t.Errorf("circuit should not be open after a half-open success")
	}
}

func TestConfigs(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "default", cfg: DefaultConfig("x"), want: "x"},
		{name: "redis queue", cfg: RedisQueueConfig(), want: "redis-queue"},
		{name: "database", cfg: DBConfig(), want: "database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Name != tt.want {
				t.Errorf("Name = %q, want %q", tt.cfg.Name, tt.want)
			}
			if tt.cfg.MinRequests == 0 || tt.cfg.Timeout <= 0 {
				t.Errorf("incomplete config: %+v", tt.cfg)
			}
			if cb := New(tt.cfg); cb.Name() != tt.want {
				t.Errorf("breaker name = %q", cb.Name())
			}
		})
	}
}
