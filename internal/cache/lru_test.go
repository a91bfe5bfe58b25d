package cache

import "testing"

func TestLRU_EvictsOldest(t *testing.T) {
	c := New(2)
	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes MRU
		t.Fatalf("a missing")
	}
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Errorf("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v.(int) != 1 {
		t.Errorf("a = %v, %v; want 1, true", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestLRU_UpdateAndPurge(t *testing.T) {
	c := New(4)
	c.Add("k", "old")
	c.Add("k", "new")
	if v, _ := c.Get("k"); v != "new" {
		t.Fatalf("Get = %v, want new", v)
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len after Purge = %d", c.Len())
	}
}
