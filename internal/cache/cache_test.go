package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLLMCache_SaveGet(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir()}
	key := KeyFrom("model", `{"messages":[]}`)
	if err := c.Save(context.Background(), key, "model", "My Title"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if got.Content != "My Title" || got.Model != "model" {
		t.Fatalf("entry=%+v", got)
	}
}

func TestLLMCache_Miss(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir()}
	if _, ok, err := c.Get(context.Background(), KeyFrom("m", "p")); ok || err != nil {
		t.Fatalf("ok=%v err=%v, want miss", ok, err)
	}
}

func TestLLMCache_NotConfigured(t *testing.T) {
	var c *LLMCache
	if err := c.Save(context.Background(), "k", "m", "x"); err == nil {
		t.Fatal("expected error for nil cache")
	}
}

func TestLLMCache_MalformedEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := &LLMCache{Dir: dir}
	key := KeyFrom("m", "p")
	if err := os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(context.Background(), key); ok {
		t.Fatal("malformed entry should miss")
	}
}

func TestLLMCache_MaxAge(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir(), MaxAge: time.Millisecond}
	key := KeyFrom("m", "p")
	if err := c.Save(context.Background(), key, "m", "x"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok, _ := c.Get(context.Background(), key); ok {
		t.Fatal("expired entry should miss")
	}
}

func TestKeyFrom_DependsOnModel(t *testing.T) {
	if KeyFrom("a", "p") == KeyFrom("b", "p") {
		t.Fatal("keys for different models must differ")
	}
}

func TestLLMCache_StrictPerms(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "llm")
	c := &LLMCache{Dir: dir, StrictPerms: true}
	key := KeyFrom("model", "prompt")
	if err := c.Save(context.Background(), key, "model", "x"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if got := info.Mode() & 0o777; got != 0o700 {
		t.Fatalf("dir mode = %o, want 0700", got)
	}
	finfo, err := os.Stat(filepath.Join(dir, key+".json"))
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if got := finfo.Mode() & 0o777; got != 0o600 {
		t.Fatalf("file mode = %o, want 0600", got)
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.json")
	fresh := filepath.Join(dir, "fresh.json")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(other, past, past); err != nil {
		t.Fatal(err)
	}
	n, err := PurgeByAge(dir, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed=%d, want 1", n)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("old entry should be gone")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh entry should remain")
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatal("non-entry file should remain")
	}
}

func TestPurgeByAge_MissingDir(t *testing.T) {
	n, err := PurgeByAge(filepath.Join(t.TempDir(), "absent"), time.Hour)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("entries=%d err=%v", len(entries), err)
	}
	if err := ClearDir("  "); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
