package ratelimit

import (
	"testing"
	"time"
)

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	clock := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	tb := NewTokenBucket(3, time.Minute)
	tb.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if !tb.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if tb.Allow("1.2.3.4") {
		t.Fatal("bucket should be empty")
	}

	// A full window refills the bucket.
	clock = clock.Add(time.Minute)
	if !tb.Allow("1.2.3.4") {
		t.Fatal("bucket should have refilled")
	}
}

func TestTokenBucketIsolatesKeys(t *testing.T) {
	tb := NewTokenBucket(1, time.Minute)

	if !tb.Allow("a") {
		t.Fatal("first request for a should pass")
	}
	if tb.Allow("a") {
		t.Fatal("second request for a should be limited")
	}
	if !tb.Allow("b") {
		t.Fatal("b has its own bucket")
	}
}
