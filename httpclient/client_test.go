package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evil0ctal/tweakcore/jbconfig"
)

func TestProfileHeadersSileo(t *testing.T) {
	cfg := jbconfig.Default()
	headers := ProfileSileo.Headers(cfg)
	if headers["User-Agent"] == "" || headers["X-Jailbreak-Mode"] != "rootless" {
		t.Errorf("unexpected sileo headers: %v", headers)
	}
}

func TestProfileHeadersCydia(t *testing.T) {
	cfg := jbconfig.Default()
	headers := ProfileCydia.Headers(cfg)
	if headers["User-Agent"] != "Cydia/1.1.32 CFNetwork/978.0.7 Darwin/18.7.0" {
		t.Errorf("unexpected cydia user-agent: %v", headers["User-Agent"])
	}
	if _, ok := headers["X-Sileo-Version"]; ok {
		t.Error("cydia profile should not carry a sileo-specific header")
	}
}

func TestFacadeSendsConfiguredHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := New(jbconfig.Default())
	resp, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if gotUA != "Sileo/2.4 CFNetwork/1410.0.3 Darwin/22.6.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestInvalidateSwitchesProfile(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	cfg := jbconfig.Default()
	f := New(cfg)
	cfg.UseSileoHeaders = false
	f.Invalidate(cfg, nil)

	resp, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if gotUA != "Cydia/1.1.32 CFNetwork/978.0.7 Darwin/18.7.0" {
		t.Errorf("after invalidate, User-Agent = %q, want cydia", gotUA)
	}
}

func TestOverridesReplaceProfileHeaders(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	f := NewWithOverrides(jbconfig.Default(), map[string]string{"User-Agent": "custom/1.0"})
	resp, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if gotUA != "custom/1.0" {
		t.Errorf("User-Agent = %q, want custom/1.0", gotUA)
	}
}
