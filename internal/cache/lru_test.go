package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCache_ExpiresEntries(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clock.now))

	c.Set("a", 1)
	clock.advance(30 * time.Second)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}

	clock.advance(31 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to expire")
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d, want 0", c.Size())
	}
}

func TestLRUCache_SlidingExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[int](10, time.Minute, WithClock[int](clock.now), WithSlidingExpiry[int]())

	c.Set("a", 1)
	for i := 0; i < 5; i++ {
		clock.advance(50 * time.Second)
		if _, ok := c.Get("a"); !ok {
			t.Fatalf("entry expired on touch %d", i)
		}
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := NewLRUCache[int](2, time.Hour, WithEvictCallback(func(k string, _ int) {
		evicted = append(evicted, k)
	}))

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should still be cached")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
}

func TestLRUCache_GetOrCreate(t *testing.T) {
	c := NewLRUCache[*int](4, time.Hour)
	calls := 0
	create := func() *int { calls++; v := calls; return &v }

	first, existed := c.GetOrCreate("k", create)
	if existed {
		t.Error("first call reported existing entry")
	}
	second, existed := c.GetOrCreate("k", create)
	if !existed || first != second {
		t.Error("second call did not return the stored entry")
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
}

func TestManager_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewLRUCache[int](10, time.Second, WithClock[int](clock.now))
	c.Set("a", 1)
	c.Set("b", 2)

	m := NewManager(nil)
	m.Register("test", c)

	clock.advance(2 * time.Second)
	if got := m.Sweep(); got != 2 {
		t.Errorf("Sweep() = %d, want 2", got)
	}
}
