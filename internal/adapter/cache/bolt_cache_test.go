package cache

import (
	"path/filepath"
	"testing"
)

func TestBoltCacheRoundTrip(t *testing.T) {
	c, err := NewBoltCache(filepath.Join(t.TempDir(), "sub", "cache.db"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	defer c.Close()

	key := Key("test-model", "function", "def f():\n    pass")

	if _, found, err := c.Get(key); err != nil || found {
		t.Fatalf("expected a miss on a fresh cache, found=%v err=%v", found, err)
	}

	if err := c.Put(key, "Computes nothing."); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	text, found, err := c.Get(key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !found || text != "Computes nothing." {
		t.Errorf("expected a hit with stored text, got found=%v text=%q", found, text)
	}
}

func TestKeyDistinguishesInputs(t *testing.T) {
	base := Key("m", "function", "snippet")
	if Key("m2", "function", "snippet") == base {
		t.Error("model must participate in the key")
	}
	if Key("m", "class", "snippet") == base {
		t.Error("kind must participate in the key")
	}
	if Key("m", "function", "other") == base {
		t.Error("snippet must participate in the key")
	}
	if Key("m", "function", "snippet") != base {
		t.Error("key must be deterministic")
	}
}
