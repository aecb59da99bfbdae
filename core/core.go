// Package core wires the registry, cache, HTTP facade, jailbreak config
// and index fetcher together into the high-level operations a CLI or
// other frontend drives: add/remove repositories, refresh their indexes,
// search across them, classify, and download.
//
// Grounded on original_source/src/core/repo_manager.py's RepoManager,
// which is the single facade the original Qt frontend calls into for all
// of these concerns.
package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/evil0ctal/tweakcore/classify"
	"github.com/evil0ctal/tweakcore/download"
	"github.com/evil0ctal/tweakcore/httpclient"
	"github.com/evil0ctal/tweakcore/jbconfig"
	"github.com/evil0ctal/tweakcore/record"
	"github.com/evil0ctal/tweakcore/repocache"
	"github.com/evil0ctal/tweakcore/repoindex"
	"github.com/evil0ctal/tweakcore/registry"
)

// Core is the application-level facade over every repository and package
// operation.
type Core struct {
	AppDir string

	registry *registry.Registry
	cache    *repocache.Cache
	config   *jbconfig.Manager
	http     *httpclient.Facade
	fetcher  *repoindex.Fetcher
	download *download.Downloader

	mu        sync.Mutex
	listeners []Listener
}

// New loads every persisted component rooted at appDir and wires them
// into a Core ready to serve requests.
func New(appDir string) (*Core, error) {
	reg, err := registry.Load(appDir)
	if err != nil {
		return nil, fmt.Errorf("loading repository registry: %w", err)
	}
	cache, err := repocache.New(appDir + "/cache")
	if err != nil {
		return nil, fmt.Errorf("opening repository cache: %w", err)
	}
	cfgMgr := jbconfig.NewManager(appDir)
	facade := httpclient.New(cfgMgr.Config())

	return &Core{
		AppDir:   appDir,
		registry: reg,
		cache:    cache,
		config:   cfgMgr,
		http:     facade,
		fetcher:  repoindex.New(facade.Client()),
		download: download.New(facade.Client()),
	}, nil
}

// OnEvent registers a listener invoked for every event Core emits.
func (c *Core) OnEvent(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Core) emit(e fmt.Stringer) {
	c.mu.Lock()
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()
	for _, l := range listeners {
		func() {
			defer func() { recover() }()
			l(e)
		}()
	}
}

// Registry exposes the underlying repository registry for CRUD use.
func (c *Core) Registry() *registry.Registry { return c.registry }

// Config exposes the underlying jailbreak configuration manager.
func (c *Core) Config() *jbconfig.Manager { return c.config }

// SetMode updates the jailbreak mode and invalidates the HTTP facade so
// subsequent requests carry headers matching the new mode.
func (c *Core) SetMode(mode jbconfig.Mode) error {
	if err := c.config.SetMode(mode); err != nil {
		return err
	}
	c.http.Invalidate(c.config.Config(), nil)
	c.fetcher.HTTPClient = c.http.Client()
	c.download.HTTPClient = c.http.Client()
	return nil
}

// FetchRepo returns repoURL's package index, preferring a fresh cache
// entry over a network fetch. force bypasses the cache unconditionally.
func (c *Core) FetchRepo(ctx context.Context, repoURL string, force bool) ([]*record.Package, error) {
	c.emit(EventRepoFetchStart{URL: repoURL})

	if !force {
		if pkgs, ok := c.cache.Get(repoURL); ok {
			c.emit(EventRepoFetchSuccess{URL: repoURL, PackageCount: len(pkgs), FromCache: true})
			return pkgs, nil
		}
	}

	pkgs, err := c.fetcher.Fetch(ctx, repoURL)
	if err != nil {
		c.emit(EventRepoFetchFailure{URL: repoURL, Error: err.Error()})
		return nil, err
	}
	if err := c.cache.Put(repoURL, pkgs); err != nil {
		return nil, err
	}
	c.emit(EventRepoFetchSuccess{URL: repoURL, PackageCount: len(pkgs), FromCache: false})
	return pkgs, nil
}

// RefreshAll fetches the index for every enabled repository, updating the
// registry's packages_count and last_updated as it goes. Fetch failures
// for one repository do not abort the others; they are collected and
// returned together.
func (c *Core) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, repo := range c.registry.Enabled() {
		pkgs, err := c.FetchRepo(ctx, repo.URL, true)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", repo.URL, err))
			continue
		}
		url := repo.URL
		if err := c.registry.Update(url, func(r *registry.Repository) {
			r.PackagesCount = len(pkgs)
			r.LastUpdated = time.Now().Format("2006-01-02 15:04:05")
		}); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("refreshing %d of %d repositories failed: %v", len(errs), len(c.registry.Enabled()), errs)
	}
	return nil
}

// AllPackages returns the union of every enabled repository's cached (or
// freshly fetched) package index.
func (c *Core) AllPackages(ctx context.Context) ([]*record.Package, error) {
	var all []*record.Package
	for _, repo := range c.registry.Enabled() {
		pkgs, err := c.FetchRepo(ctx, repo.URL, false)
		if err != nil {
			continue
		}
		all = append(all, pkgs...)
	}
	return all, nil
}

// SearchPackages returns every package across enabled repositories whose
// identifier, display name, or description matches query, sorted by name.
func (c *Core) SearchPackages(ctx context.Context, query string) ([]*record.Package, error) {
	all, err := c.AllPackages(ctx)
	if err != nil {
		return nil, err
	}
	var matches []*record.Package
	for _, p := range all {
		if p.MatchesQuery(query) {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].DisplayName() < matches[j].DisplayName() })
	return matches, nil
}

// PackagesBySection groups every package across enabled repositories by
// its Section field ("" for packages with no declared section).
func (c *Core) PackagesBySection(ctx context.Context) (map[string][]*record.Package, error) {
	all, err := c.AllPackages(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*record.Package)
	for _, p := range all {
		out[p.Section] = append(out[p.Section], p)
	}
	return out, nil
}

// Classify returns the jailbreak compatibility of a single package.
func (c *Core) Classify(p *record.Package) classify.Compatibility {
	return classify.Classify(p)
}

// Download fetches pkg's .deb file from repoURL into downloadDir,
// forwarding progress as both the raw callback and typed events.
func (c *Core) Download(ctx context.Context, repoURL string, pkg *record.Package, downloadDir string, progress download.Progress) (string, error) {
	path, err := c.download.Download(ctx, repoURL, pkg, downloadDir, func(percent int, done, total int64) {
		c.emit(EventDownloadProgress{Package: pkg.Package, Percent: percent})
		if progress != nil {
			progress(percent, done, total)
		}
	})
	if err != nil {
		return "", err
	}
	c.emit(EventDownloadComplete{Package: pkg.Package, Path: path})
	return path, nil
}
