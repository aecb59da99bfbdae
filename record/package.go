// Package record defines the lightweight package-index record produced by
// parsing a repository's Packages stanza, as distinct from deb.Metadata
// (which describes a package being unpacked or built on disk).
package record

import (
	"fmt"
	"strings"
)

// Package is one entry of a repository's package index: identity,
// display, distribution, presentation and compatibility fields, plus
// anything the control parser didn't recognize.
type Package struct {
	Package      string
	Version      string
	Architecture string
	Name         string
	Author       string
	Maintainer   string
	Section      string
	Description  string
	Depends      []string
	Tag          []string

	Filename string
	Size     int64
	MD5Sum   string
	SHA256   string

	Icon            string
	Depiction       string
	SileoDepiction  string
	NativeDepiction string

	Rootless    bool
	Commercial  bool
	PaymentLink string

	InstalledSize int64

	Extra map[string]string
}

// DisplayName returns Name if set, falling back to the raw Package id.
func (p *Package) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Package
}

// DisplayAuthor returns Author, falling back to Maintainer.
func (p *Package) DisplayAuthor() string {
	if p.Author != "" {
		return p.Author
	}
	return p.Maintainer
}

// DisplaySize renders Size as a human-readable byte count (B/KB/MB/GB/TB).
func (p *Package) DisplaySize() string {
	const unit = 1024.0
	size := float64(p.Size)
	if size < unit {
		return fmt.Sprintf("%d B", p.Size)
	}
	size /= unit
	for _, u := range []string{"KB", "MB", "GB"} {
		if size < unit {
			return fmt.Sprintf("%.1f %s", size, u)
		}
		size /= unit
	}
	return fmt.Sprintf("%.1f TB", size)
}

// DepictionURL resolves the richest available depiction page, preferring
// SileoDepiction, then NativeDepiction, then the plain Depiction field.
func (p *Package) DepictionURL() string {
	switch {
	case p.SileoDepiction != "":
		return p.SileoDepiction
	case p.NativeDepiction != "":
		return p.NativeDepiction
	default:
		return p.Depiction
	}
}

// Key returns the package|version|architecture identity used for
// deduplication and equality across index fetches.
func (p *Package) Key() string {
	return p.Package + "|" + p.Version + "|" + p.Architecture
}

// MatchesQuery reports whether query (case-insensitive) appears in the
// package's id, display name or description.
func (p *Package) MatchesQuery(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Package), q) ||
		strings.Contains(strings.ToLower(p.DisplayName()), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}
