// Package download implements the streamed .deb download with a
// percent/bytes/total progress callback.
//
// Grounded on original_source/src/core/repo_manager.py's download_package.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evil0ctal/tweakcore/record"
)

const chunkSize = 8 * 1024

// Progress reports download progress. percent is -1 when the remote
// response carried no Content-Length, since a percentage can't be
// computed without a known total.
type Progress func(percent int, bytesDone, totalBytes int64)

// Downloader streams .deb files from a repository to a local directory.
type Downloader struct {
	HTTPClient *http.Client
}

// New returns a Downloader using client, or http.DefaultClient if nil.
func New(client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{HTTPClient: client}
}

// Download fetches pkg's Filename relative to repoURL into downloadDir,
// streaming in 8 KiB chunks and invoking progress after every chunk
// written; the last call reports the final byte count. It returns the
// path written.
func (d *Downloader) Download(ctx context.Context, repoURL string, pkg *record.Package, downloadDir string, progress Progress) (string, error) {
	downloadURL, err := resolveURL(repoURL, pkg.Filename)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", downloadURL, resp.StatusCode)
	}

	totalSize := int64(-1)
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			totalSize = n
		}
	}

	localName := localFilename(pkg)
	localPath := filepath.Join(downloadDir, localName)
	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return "", err
	}
	out, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	var downloaded int64
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return "", werr
			}
			downloaded += int64(n)
			if progress != nil {
				reportProgress(progress, downloaded, totalSize)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", readErr
		}
	}
	return localPath, nil
}

func reportProgress(progress Progress, downloaded, total int64) {
	defer func() { recover() }()
	if total > 0 {
		progress(int(downloaded*100/total), downloaded, total)
		return
	}
	progress(-1, downloaded, total)
}

func resolveURL(repoURL, filename string) (string, error) {
	if strings.HasPrefix(filename, "http://") || strings.HasPrefix(filename, "https://") {
		return filename, nil
	}
	base := repoURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.TrimPrefix(filename, "./"), nil
}

// localFilename derives the file's local name from its Filename field,
// falling back to "{package}_{version}.deb" when Filename isn't already
// a .deb-suffixed path.
func localFilename(pkg *record.Package) string {
	base := path.Base(pkg.Filename)
	if strings.HasSuffix(strings.ToLower(base), ".deb") && base != "." && base != "/" {
		return base
	}
	return pkg.Package + "_" + pkg.Version + ".deb"
}
