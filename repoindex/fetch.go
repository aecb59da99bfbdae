// Package repoindex fetches a Cydia/Sileo repository's Packages index by
// probing a fixed matrix of arch subpaths and filename/compression
// variants, exactly as a real client does since most of these repos don't
// publish a standard dists/ hierarchy.
//
// Grounded on teacher apt/apt.go's FetchPackageIndexFrom/
// processRemotePackages (candidate-URL harvesting shape) generalized to
// the five-subpath x four-filename matrix of original_source's
// repo_manager.py _fetch_packages_multiarch, including its last-write-wins
// dedup (the teacher's own PackageIndex.Add errors on duplicates instead,
// which this spec's index does not).
package repoindex

import (
	"compress/bzip2"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/evil0ctal/tweakcore/deb"
	"github.com/evil0ctal/tweakcore/record"
)

// candidateFile is one (filename, decompressor) pair tried against each
// arch subpath, in order: xz, bz2, gz, then the plain file.
type candidateFile struct {
	name       string
	decompress func(io.Reader) (io.Reader, error)
}

var packagesFiles = []candidateFile{
	{"Packages.xz", func(r io.Reader) (io.Reader, error) { return xz.NewReader(r) }},
	{"Packages.bz2", func(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil }},
	{"Packages.gz", func(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }},
	{"Packages", func(r io.Reader) (io.Reader, error) { return r, nil }},
}

// archSubpath pairs a candidate URL subdirectory with the architecture
// label to stamp onto any package in that subdirectory lacking one.
type archSubpath struct {
	subpath string
	label   string
}

var archSubpaths = []archSubpath{
	{"dists/stable/main/binary-iphoneos-arm64/", "iphoneos-arm64"},
	{"dists/stable/main/binary-iphoneos-arm64e/", "iphoneos-arm64e"},
	{"dists/stable/main/binary-iphoneos-arm/", "iphoneos-arm"},
	{"dists/./main/binary-iphoneos-arm64/", "iphoneos-arm64"},
	{"", ""},
}

// candidateTimeout bounds each individual probe so one unreachable
// candidate can't stall the whole matrix.
const candidateTimeout = 15 * time.Second

// Fetcher fetches a repository's package index over HTTP.
type Fetcher struct {
	HTTPClient *http.Client
}

// New returns a Fetcher using client, or http.DefaultClient if nil.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{HTTPClient: client}
}

// Fetch probes every (arch subpath x filename) candidate against repoURL
// in order, taking the first successful filename per subpath and moving
// to the next subpath regardless of whether this one succeeded. Results
// are deduplicated by package|version|architecture, last write wins.
func (f *Fetcher) Fetch(ctx context.Context, repoURL string) ([]*record.Package, error) {
	base := repoURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	unique := make(map[string]*record.Package)
	var order []string

	for _, arch := range archSubpaths {
		for _, candidate := range packagesFiles {
			u := base + arch.subpath + candidate.name
			pkgs, ok := f.tryCandidate(ctx, u)
			if !ok {
				continue
			}
			for _, p := range pkgs {
				if p.Architecture == "" && arch.label != "" {
					p.Architecture = arch.label
				}
				key := p.Key()
				if _, seen := unique[key]; !seen {
					order = append(order, key)
				}
				unique[key] = p
			}
			break // first successful filename wins for this subpath
		}
	}

	out := make([]*record.Package, 0, len(order))
	for _, key := range order {
		out = append(out, unique[key])
	}
	return out, nil
}

// tryCandidate issues one GET and, if it looks like a real Packages
// response, parses and returns its stanzas. A non-200 status, an HTML
// content type, or a decompression/parse failure are all treated as "this
// candidate doesn't exist here" rather than a hard error.
func (f *Fetcher) tryCandidate(ctx context.Context, candidateURL string) ([]*record.Package, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, candidateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, candidateURL, nil)
	if err != nil {
		return nil, false
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, false
	}

	matched := findCandidateByURL(candidateURL)
	if matched == nil {
		return nil, false
	}
	decoded, err := matched.decompress(resp.Body)
	if err != nil {
		return nil, false
	}
	raw, err := io.ReadAll(decoded)
	if err != nil {
		return nil, false
	}

	var pkgs []*record.Package
	for _, stanza := range deb.SplitStanzas(string(raw)) {
		p, err := deb.ParseStanza(stanza)
		if err != nil {
			continue
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, true
}

func findCandidateByURL(u string) *candidateFile {
	for i := range packagesFiles {
		if strings.HasSuffix(u, packagesFiles[i].name) {
			return &packagesFiles[i]
		}
	}
	return nil
}
