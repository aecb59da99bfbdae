package repocache

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/evil0ctal/tweakcore/record"
)

func TestPutThenGetMemoryTier(t *testing.T) {
	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	pkgs := []*record.Package{{Package: "a", Version: "1.0", Architecture: "iphoneos-arm64"}}
	if err := c.Put("https://repo.example.com/", pkgs); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get("https://repo.example.com/")
	if !ok || len(got) != 1 || got[0].Package != "a" {
		t.Errorf("Get = %+v, %v", got, ok)
	}
}

func TestGetFallsThroughToDiskTier(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	pkgs := []*record.Package{{Package: "a", Version: "1.0"}}
	if err := c.Put("https://repo.example.com/", pkgs); err != nil {
		t.Fatal(err)
	}

	// Simulate a process restart: fresh Cache, no memory tier populated.
	c2, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := c2.Get("https://repo.example.com/")
	if !ok || len(got) != 1 {
		t.Errorf("Get after reload = %+v, %v", got, ok)
	}
}

func TestStaleDiskEntryIsAMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(diskEntry{
		FetchedAt: time.Now().Add(-25 * time.Hour),
		Packages:  []*record.Package{{Package: "a"}},
	})
	if err := os.WriteFile(c.path("https://repo.example.com/"), data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("https://repo.example.com/"); ok {
		t.Error("expected a stale (>24h) disk entry to be treated as a cache miss")
	}
}

func TestCorruptDiskEntryIsAMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("https://repo.example.com/"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("https://repo.example.com/"); ok {
		t.Error("expected a corrupt disk entry to be treated as a cache miss")
	}
}

func TestClearRemovesBothTiers(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	c.Put("https://repo.example.com/", []*record.Package{{Package: "a"}})
	if err := c.Clear("https://repo.example.com/"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get("https://repo.example.com/"); ok {
		t.Error("expected a miss after Clear")
	}
}
