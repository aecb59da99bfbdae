package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evil0ctal/tweakcore/registry"
)

func registryRepo(url string) registry.Repository {
	return registry.Repository{Name: "test", URL: url}
}

const samplePackages = `Package: com.example.tweak
Version: 1.0
Architecture: iphoneos-arm64
Name: Example Tweak
Description: does a thing

Package: com.example.other
Version: 2.0
Architecture: iphoneos-arm64
Name: Other Tweak
Description: does another thing
`

func TestFetchRepoCachesResult(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/Packages") {
			hits++
			w.Write([]byte(samplePackages))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pkgs, err := c.FetchRepo(context.Background(), srv.URL, false)
	if err != nil {
		t.Fatalf("FetchRepo: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("got %d packages, want 2", len(pkgs))
	}

	firstHits := hits
	if _, err := c.FetchRepo(context.Background(), srv.URL, false); err != nil {
		t.Fatalf("second FetchRepo: %v", err)
	}
	if hits != firstHits {
		t.Errorf("expected the network fetch to run once and the second call to be served from cache, got %d extra network hits", hits-firstHits)
	}
}

func TestSearchPackagesAcrossRegistry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/Packages") {
			w.Write([]byte(samplePackages))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, repo := range c.Registry().All() {
		c.Registry().Remove(repo.URL)
	}
	if _, err := c.Registry().Add(registryRepo(srv.URL)); err != nil {
		t.Fatal(err)
	}

	matches, err := c.SearchPackages(context.Background(), "other")
	if err != nil {
		t.Fatalf("SearchPackages: %v", err)
	}
	if len(matches) != 1 || matches[0].Package != "com.example.other" {
		t.Errorf("SearchPackages(other) = %+v", matches)
	}
}

func TestEventsEmittedOnFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/Packages") {
			w.Write([]byte(samplePackages))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var events []string
	c.OnEvent(func(e fmt.Stringer) {
		events = append(events, e.String())
	})
	if _, err := c.FetchRepo(context.Background(), srv.URL, false); err != nil {
		t.Fatal(err)
	}
	if len(events) < 2 {
		t.Errorf("expected start+success events, got %d: %v", len(events), events)
	}
}
