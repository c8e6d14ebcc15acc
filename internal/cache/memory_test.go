package cache

import (
	"context"
	"testing"
	"time"
)

var ctx = context.Background()

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time {
	return c.t
}

func TestMemoryTake(t *testing.T) {
	c := &clock{t: time.Unix(1700000000, 0)}
	m := NewMemory()
	m.now = c.now

	if err := m.Set(ctx, "k", "hello", time.Minute); err != nil {
		t.Fatal(err)
	}

	v, ok, err := m.Take(ctx, "k")
	if err != nil || !ok || v != "hello" {
		t.Fatalf("expected \"hello\", got %q (ok=%v, err=%v)", v, ok, err)
	}

	if _, ok, _ = m.Take(ctx, "k"); ok {
		t.Error("value was returned twice")
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := &clock{t: time.Unix(1700000000, 0)}
	m := NewMemory()
	m.now = c.now

	cases := []struct {
		name    string
		elapsed time.Duration
		ok      bool
	}{
		{"before expiry", 59 * time.Second, true},
		{"at expiry", 60 * time.Second, false},
		{"after expiry", 2 * time.Minute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c.t = time.Unix(1700000000, 0)
			if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
				t.Fatal(err)
			}
			c.t = c.t.Add(tc.elapsed)

			_, ok, err := m.Take(ctx, "k")
			if err != nil {
				t.Fatal(err)
			}
			if ok != tc.ok {
				t.Errorf("expected ok=%v, got %v", tc.ok, ok)
			}
		})
	}
}

func TestMemoryOverwrite(t *testing.T) {
	m := NewMemory()
	_ = m.Set(ctx, "k", "first", time.Minute)
	_ = m.Set(ctx, "k", "second", time.Minute)

	v, _, _ := m.Take(ctx, "k")
	if v != "second" {
		t.Errorf("expected the last write to win, got %q", v)
	}
}

func TestMemoryClose(t *testing.T) {
	m := NewMemory()
	if err := m.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := m.Take(ctx, "k"); ok {
		t.Error("entry survived Close")
	}
}
