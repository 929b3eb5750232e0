package marketdata

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(3, 1*time.Hour)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Expected token %d available, got %v", i, err)
		}
	}
	if rl.tryAcquire() {
		t.Error("Expected bucket drained after burst")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)

	if !rl.tryAcquire() {
		t.Fatal("Expected initial token")
	}
	if rl.tryAcquire() {
		t.Fatal("Expected empty bucket")
	}

	time.Sleep(30 * time.Millisecond)
	if !rl.tryAcquire() {
		t.Error("Expected token after refill interval")
	}
}

func TestRateLimiterHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, 1*time.Hour)
	rl.tryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("Expected context deadline to abort the wait")
	}
}
