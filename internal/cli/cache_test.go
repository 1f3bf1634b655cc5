package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/entitydiagram/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestConfiguredCacheDir(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.cfg.Cache.Dir = "/srv/cache"
	if dir, _ := c.cacheDir(); dir != "/srv/cache" {
		t.Errorf("cacheDir() = %q, want configured dir", dir)
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	fc.Set(ctx, "http:demo:/demo/product-types?limit=200", []byte("{}"), time.Hour)
	fc.Set(ctx, "http:demo:/demo/types?limit=200", []byte("{}"), time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if n, err := clearCache(dir, true); n != 1 || err != nil {
		t.Errorf("clearCache(expired) = %d, %v; want 1", n, err)
	}
	if n, err := clearCache(dir, false); n != 1 || err != nil {
		t.Errorf("clearCache(all) = %d, %v; want 1", n, err)
	}
	if n, err := clearCache(dir, false); n != 0 || err != nil {
		t.Errorf("clearCache(empty) = %d, %v", n, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("dir not empty: %v", entries)
	}
}
