package cache

import "testing"

func TestPutGet(t *testing.T) {
	c := NewLRU[string, int]()

	if _, ok := c.Get("a"); ok {
		t.Error("Get on empty cache reported ok")
	}

	c.Put("a", 1)
	c.Put("b", 2)
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}

	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}
}

func TestPutOverwrite(t *testing.T) {
	c := NewLRU[string, int]()
	c.Put("a", 1)
	c.Put("a", 2)

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
}

func TestEvictionOrder(t *testing.T) {
	c := NewLRU[string, int]()
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Touching a makes b the oldest.
	c.Get("a")

	k, v, ok := c.PopOldest()
	if !ok || k != "b" || v != 2 {
		t.Fatalf("PopOldest = %q, %d, %v; want b, 2, true", k, v, ok)
	}
	k, _, _ = c.PopOldest()
	if k != "c" {
		t.Fatalf("second PopOldest = %q, want c", k)
	}
	k, _, _ = c.PopOldest()
	if k != "a" {
		t.Fatalf("third PopOldest = %q, want a", k)
	}
	if _, _, ok := c.PopOldest(); ok {
		t.Error("PopOldest on empty cache reported ok")
	}
}

func TestPutBumpsRecency(t *testing.T) {
	c := NewLRU[string, int]()
	c.Put("a", 1)
	c.Put("b", 2)

	// Overwriting a makes b the oldest.
	c.Put("a", 10)

	k, _, _ := c.PopOldest()
	if k != "b" {
		t.Errorf("PopOldest = %q, want b", k)
	}
}

func TestPeekKeepsOrder(t *testing.T) {
	c := NewLRU[string, int]()
	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Fatalf("Peek(a) = %d, %v; want 1, true", v, ok)
	}

	k, _, _ := c.PopOldest()
	if k != "a" {
		t.Errorf("PopOldest = %q, want a; Peek must not bump recency", k)
	}
}

func TestRemove(t *testing.T) {
	c := NewLRU[string, int]()
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if !c.Remove("b") {
		t.Fatal("Remove(b) reported false")
	}
	if c.Remove("b") {
		t.Error("second Remove(b) reported true")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	// List stays intact around the removed node.
	k, _, _ := c.PopOldest()
	if k != "a" {
		t.Errorf("PopOldest = %q, want a", k)
	}
	k, _, _ = c.PopOldest()
	if k != "c" {
		t.Errorf("PopOldest = %q, want c", k)
	}
}

func TestRange(t *testing.T) {
	c := NewLRU[string, int]()
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.Get("a")

	var keys []string
	c.Range(func(k string, _ int) bool {
		keys = append(keys, k)
		return true
	})

	want := []string{"a", "c", "b"}
	if len(keys) != len(want) {
		t.Fatalf("Range visited %d entries, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Range order[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestRangeEarlyStop(t *testing.T) {
	c := NewLRU[int, int]()
	for i := 0; i < 10; i++ {
		c.Put(i, i)
	}

	var visited int
	c.Range(func(int, int) bool {
		visited++
		return visited < 3
	})
	if visited != 3 {
		t.Errorf("Range visited %d entries, want 3", visited)
	}
}

func TestClear(t *testing.T) {
	c := NewLRU[string, int]()
	c.Put("a", 1)
	c.Put("b", 2)

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	if _, _, ok := c.PopOldest(); ok {
		t.Error("PopOldest after Clear reported ok")
	}

	c.Put("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Errorf("Get(c) after Clear+Put = %d, %v; want 3, true", v, ok)
	}
}
