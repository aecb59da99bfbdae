// Package httpclient provides the HTTP client façade used for every
// request to a remote repository: Sileo- or Cydia-flavored headers, an
// optional caller-supplied header override map (this package does not read
// an override file itself), and request/connect timeouts
// matching a real package manager closely enough that picky repos don't
// reject us.
//
// Grounded on original_source/src/core/jailbreak_config.py (header
// profiles) and src/core/repo_manager.py (client construction, timeouts,
// refresh-on-config-change).
package httpclient

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/evil0ctal/tweakcore/jbconfig"
)

// Profile selects which package manager's request headers to present.
type Profile int

const (
	ProfileSileo Profile = iota
	ProfileCydia
)

// Headers renders the header set for this profile given the current
// jailbreak configuration. The exact header names and values match the
// original Sileo/Cydia User-Agent strings so remote repos recognize us as
// a real client.
func (p Profile) Headers(cfg jbconfig.Config) map[string]string {
	if p == ProfileCydia {
		return map[string]string{
			"User-Agent":  "Cydia/1.1.32 CFNetwork/978.0.7 Darwin/18.7.0",
			"X-Machine":   cfg.DeviceModel,
			"X-Unique-ID": cfg.UniqueID,
			"X-Firmware":  cfg.FirmwareVersion,
		}
	}
	return map[string]string{
		"User-Agent":       "Sileo/2.4 CFNetwork/1410.0.3 Darwin/22.6.0",
		"X-Machine":        cfg.DeviceModel,
		"X-Firmware":       cfg.FirmwareVersion,
		"X-Unique-ID":      cfg.UniqueID,
		"X-Device-Model":   cfg.DeviceModel,
		"X-Device-Version": cfg.FirmwareVersion,
		"Accept":           "application/json, text/plain, */*",
		"Accept-Language":  "en-US,en;q=0.9",
		"X-Sileo-Version":  "2.4",
		"X-Jailbreak-Mode": string(cfg.Mode),
	}
}

func profileFor(cfg jbconfig.Config) Profile {
	if cfg.UseSileoHeaders {
		return ProfileSileo
	}
	return ProfileCydia
}

// Facade hands out a live *http.Client built from the current jailbreak
// config and an optional caller-supplied header override map. Rebuilding on Invalidate
// keeps every caller holding a stale pointer out of the picture: they
// always fetch the current client through Client().
type Facade struct {
	mu        sync.RWMutex
	client    *http.Client
	overrides map[string]string
}

// New builds a Facade for cfg with no header overrides.
func New(cfg jbconfig.Config) *Facade {
	f := &Facade{}
	f.rebuild(cfg, nil)
	return f
}

// NewWithOverrides builds a Facade whose headers are replaced wholesale by
// overrides when non-nil, matching the custom_headers.json escape hatch.
func NewWithOverrides(cfg jbconfig.Config, overrides map[string]string) *Facade {
	f := &Facade{}
	f.rebuild(cfg, overrides)
	return f
}

func (f *Facade) rebuild(cfg jbconfig.Config, overrides map[string]string) {
	headers := overrides
	if headers == nil {
		headers = profileFor(cfg).Headers(cfg)
	}
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	transport := &http.Transport{DialContext: dialer.DialContext}
	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &headerTransport{base: transport, headers: headers},
	}

	f.mu.Lock()
	f.client = client
	f.overrides = overrides
	f.mu.Unlock()
}

// Client returns the live *http.Client.
func (f *Facade) Client() *http.Client {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.client
}

// Invalidate rebuilds the client from cfg, keeping any previously set
// header overrides unless newOverrides is non-nil.
func (f *Facade) Invalidate(cfg jbconfig.Config, newOverrides map[string]string) {
	f.mu.RLock()
	overrides := f.overrides
	f.mu.RUnlock()
	if newOverrides != nil {
		overrides = newOverrides
	}
	f.rebuild(cfg, overrides)
}

// Get issues a GET request against url using the live client and ctx.
func (f *Facade) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return f.Client().Do(req)
}

// headerTransport injects a fixed header set into every request before
// delegating to base.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	for k, v := range t.headers {
		cloned.Header.Set(k, v)
	}
	return t.base.RoundTrip(cloned)
}
