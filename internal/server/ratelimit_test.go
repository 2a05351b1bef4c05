package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func testNow() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestPlayerLimiter_Refills(t *testing.T) {
	l := newPlayerLimiter(1, 2)
	now := testNow()
	if !l.allow("a", now) || !l.allow("a", now) {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.allow("a", now) {
		t.Fatal("third request in the same instant should be limited")
	}
	if !l.allow("a", now.Add(time.Second)) {
		t.Error("one token should refill after a second")
	}
}

func TestPlayerLimiter_SweepsIdle(t *testing.T) {
	l := newPlayerLimiter(1, 1)
	now := testNow()
	l.allow("old", now)
	l.allow("new", now.Add(limiterIdle+time.Minute))
	if _, ok := l.limiters["old"]; ok {
		t.Error("idle limiter should be swept")
	}
	if _, ok := l.limiters["new"]; !ok {
		t.Error("active limiter should be kept")
	}
}

func TestLimiterKey(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/similar", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	if got := limiterKey(r); got != "addr:10.0.0.7" {
		t.Errorf("anonymous key = %q", got)
	}
	r.Header.Set(headerPlayerID, "p1")
	if got := limiterKey(r); got != "player:p1" {
		t.Errorf("player key = %q", got)
	}
}
