// Package registry manages the set of configured APT-style repositories:
// CRUD over a persisted JSON list, seeded from an embedded default set on
// first run.
//
// Grounded on original_source/src/core/repo_manager.py's RepoManager
// (load_repositories/save_repositories/add_repository/remove_repository/
// update_repository) and _get_default_repositories.
package registry

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

//go:embed defaults.json
var defaultsJSON []byte

// Repository is one configured repository entry.
type Repository struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	Enabled        bool   `json:"enabled"`
	LastUpdated    string `json:"last_updated,omitempty"`
	PackagesCount  int    `json:"packages_count"`
	Description    string `json:"description,omitempty"`
	Icon           string `json:"icon,omitempty"`
}

// Registry is a persisted, mutable list of repositories.
type Registry struct {
	path string

	mu    sync.Mutex
	repos []*Repository
}

// Load reads appDir/repositories.json, or seeds it with the embedded
// default repository list on first run.
func Load(appDir string) (*Registry, error) {
	r := &Registry{path: filepath.Join(appDir, "repositories.json")}

	data, err := os.ReadFile(r.path)
	if err == nil {
		if jerr := json.Unmarshal(data, &r.repos); jerr == nil {
			return r, nil
		}
	}

	var defaults []*Repository
	if err := json.Unmarshal(defaultsJSON, &defaults); err != nil {
		return nil, err
	}
	for _, d := range defaults {
		d.Enabled = true
	}
	r.repos = defaults
	if err := r.save(); err != nil {
		return nil, err
	}
	return r, nil
}

func normalizeURL(u string) string {
	if !strings.HasSuffix(u, "/") {
		return u + "/"
	}
	return u
}

func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.repos, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0644)
}

// All returns every configured repository.
func (r *Registry) All() []*Repository {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Repository, len(r.repos))
	copy(out, r.repos)
	return out
}

// Enabled returns every repository with Enabled set.
func (r *Registry) Enabled() []*Repository {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Repository
	for _, repo := range r.repos {
		if repo.Enabled {
			out = append(out, repo)
		}
	}
	return out
}

// Get returns the repository with the given URL, if any.
func (r *Registry) Get(url string) (*Repository, bool) {
	url = normalizeURL(url)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, repo := range r.repos {
		if repo.URL == url {
			return repo, true
		}
	}
	return nil, false
}

// Add appends a new repository. URL is normalized to end with "/"; adding
// a URL that already exists is rejected rather than silently duplicated.
func (r *Registry) Add(repo Repository) (bool, error) {
	repo.URL = normalizeURL(repo.URL)
	r.mu.Lock()
	for _, existing := range r.repos {
		if existing.URL == repo.URL {
			r.mu.Unlock()
			return false, nil
		}
	}
	repo.Enabled = true
	r.repos = append(r.repos, &repo)
	r.mu.Unlock()
	return true, r.persist()
}

// Remove deletes the repository with the given URL, if present.
func (r *Registry) Remove(url string) error {
	url = normalizeURL(url)
	r.mu.Lock()
	for i, repo := range r.repos {
		if repo.URL == url {
			r.repos = append(r.repos[:i], r.repos[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return r.persist()
}

// Update applies fn to the repository matching url, if present, and
// persists the result.
func (r *Registry) Update(url string, fn func(*Repository)) error {
	url = normalizeURL(url)
	r.mu.Lock()
	for _, repo := range r.repos {
		if repo.URL == url {
			fn(repo)
			break
		}
	}
	r.mu.Unlock()
	return r.persist()
}

func (r *Registry) persist() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save()
}

// SortByName returns repos sorted by display name, for stable listing.
func SortByName(repos []*Repository) []*Repository {
	out := make([]*Repository, len(repos))
	copy(out, repos)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
