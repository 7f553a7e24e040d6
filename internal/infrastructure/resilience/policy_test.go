package resilience

import (
	"testing"
	"time"
)

func TestNormalizeFillsDefaultsAndOrdersBackoff(t *testing.T) {
	got := Config{
		RetryInitialBackoff: 3 * time.Second,
		RetryMaxBackoff:     time.Second,
		RetryMultiplier:     0.5,
		BreakerFailureRatio: 2,
	}.normalize()

	def := DefaultConfig()
	if got.RetryMaxAttempts != def.RetryMaxAttempts {
		t.Fatalf("expected default attempts, got %d", got.RetryMaxAttempts)
	}
	if got.RetryMaxBackoff != 3*time.Second {
		t.Fatalf("max backoff must not be below initial backoff, got %v", got.RetryMaxBackoff)
	}
	if got.RetryMultiplier != def.RetryMultiplier || got.BreakerFailureRatio != def.BreakerFailureRatio {
		t.Fatalf("expected default multiplier and ratio, got %v/%v", got.RetryMultiplier, got.BreakerFailureRatio)
	}
}

func TestLogValueReportsEffectivePolicy(t *testing.T) {
	attrs := Config{}.LogValue().Group()
	found := false
	for _, attr := range attrs {
		if attr.Key == "retry_max_attempts" && attr.Value.Int64() == 3 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected normalized retry attempts in %v", attrs)
	}
}
