package download

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/evil0ctal/tweakcore/record"
)

func TestDownloadWritesFileAndReportsProgress(t *testing.T) {
	body := strings.Repeat("x", 20*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		io.WriteString(w, body)
	}))
	defer srv.Close()

	d := New(srv.Client())
	pkg := &record.Package{Package: "com.example.tweak", Version: "1.0", Filename: "./debs/tweak.deb"}

	var lastPercent int
	var calls int
	path, err := d.Download(context.Background(), srv.URL, pkg, t.TempDir(), func(percent int, done, total int64) {
		calls++
		lastPercent = percent
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if calls == 0 {
		t.Error("expected at least one progress callback")
	}
	if lastPercent != 100 {
		t.Errorf("final percent = %d, want 100", lastPercent)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading downloaded file: %v", err)
	}
	if string(data) != body {
		t.Error("downloaded content does not match served body")
	}
	if filepath.Base(path) != "tweak.deb" {
		t.Errorf("local filename = %s, want tweak.deb", filepath.Base(path))
	}
}

func TestDownloadReportsUnknownPercentWithoutContentLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Transfer-Encoding", "chunked")
		flusher, _ := w.(http.Flusher)
		io.WriteString(w, "hello")
		if flusher != nil {
			flusher.Flush()
		}
	}))
	defer srv.Close()

	d := New(srv.Client())
	pkg := &record.Package{Package: "x", Version: "1.0", Filename: "x.deb"}

	var sawUnknown bool
	_, err := d.Download(context.Background(), srv.URL, pkg, t.TempDir(), func(percent int, done, total int64) {
		if percent == -1 {
			sawUnknown = true
		}
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !sawUnknown {
		t.Error("expected at least one progress callback with percent == -1 when Content-Length is absent")
	}
}

func TestDownloadFallsBackToPackageVersionFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data")
	}))
	defer srv.Close()

	d := New(srv.Client())
	pkg := &record.Package{Package: "com.example.tweak", Version: "2.1", Filename: "/cgi-bin/fetch?id=9"}

	path, err := d.Download(context.Background(), srv.URL, pkg, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "com.example.tweak_2.1.deb" {
		t.Errorf("local filename = %s, want com.example.tweak_2.1.deb", filepath.Base(path))
	}
}

func TestDownloadNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := New(srv.Client())
	pkg := &record.Package{Package: "x", Version: "1.0", Filename: "x.deb"}
	if _, err := d.Download(context.Background(), srv.URL, pkg, t.TempDir(), nil); err == nil {
		t.Error("expected an error on a non-200 response")
	}
}
