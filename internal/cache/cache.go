package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const entrySuffix = ".json"

// LLMCache stores completion answers on disk, one JSON file per request digest.
type LLMCache struct {
	Dir string
	// StrictPerms enforces 0700 on the directory and 0600 on entries.
	StrictPerms bool
	// MaxAge, when positive, makes older entries miss on lookup.
	MaxAge time.Duration
}

// Entry is the stored form of one completion.
type Entry struct {
	Model   string    `json:"model"`
	Content string    `json:"content"`
	SavedAt time.Time `json:"savedAt"`
}

// KeyFrom builds a cache key from the model and the serialized request.
func KeyFrom(model string, request string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + request))
	return hex.EncodeToString(h[:])
}

func (c *LLMCache) ensureDir() error {
	if c == nil || strings.TrimSpace(c.Dir) == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

func (c *LLMCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+entrySuffix)
}

// Get returns the cached entry for key. Unreadable, malformed and expired
// entries are reported as misses.
func (c *LLMCache) Get(_ context.Context, key string) (Entry, bool, error) {
	if err := c.ensureDir(); err != nil {
		return Entry{}, false, err
	}
	b, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return Entry{}, false, nil
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil || strings.TrimSpace(e.Content) == "" {
		return Entry{}, false, nil
	}
	if c.MaxAge > 0 && time.Since(e.SavedAt) > c.MaxAge {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Save stores content for key.
func (c *LLMCache) Save(_ context.Context, key string, model string, content string) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	b, err := json.Marshal(Entry{Model: model, Content: content, SavedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	return os.WriteFile(c.pathFor(key), b, mode)
}
