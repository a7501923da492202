package caching

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_RoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	body := []byte("<html>cached</html>")
	if err := c.Set("https://example.com", body); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get("https://example.com")
	if !ok {
		t.Fatal("Get() ok = false, want hit")
	}
	if !bytes.Equal(got, body) {
		t.Errorf("Get() = %q, want %q", got, body)
	}
}

func TestCache_MissForUnknownURL(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if _, ok := c.Get("https://nowhere.example"); ok {
		t.Error("Get() ok = true for unknown URL, want miss")
	}
}

func TestCache_ZeroTTLAlwaysMisses(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewCache(dir, time.Hour)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := writer.Set("https://example.com", []byte("body")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reader, err := NewCache(dir, 0)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if _, ok := reader.Get("https://example.com"); ok {
		t.Error("Get() ok = true with zero TTL, want forced miss")
	}
}

func TestCache_ExpiredEntryMisses(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := c.Set("https://example.com", []byte("body")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Age the file past the TTL.
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("unexpected cache dir contents: %v, err %v", entries, err)
	}
	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(filepath.Join(dir, entries[0].Name()), old, old); err != nil {
		t.Fatalf("failed to age cache file: %v", err)
	}

	if _, ok := c.Get("https://example.com"); ok {
		t.Error("Get() ok = true for expired entry, want miss")
	}
}

func TestCache_PurgeRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := c.Set("https://stale.example", []byte("old")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set("https://fresh.example", []byte("new")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	stale := c.filePath("https://stale.example")
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("failed to age cache file: %v", err)
	}

	removed, err := c.Purge()
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Purge() = %d, want 1", removed)
	}
	if _, ok := c.Get("https://fresh.example"); !ok {
		t.Error("fresh entry removed by Purge")
	}
}
