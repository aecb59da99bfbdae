package deb

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Compression names one of the tar member encodings Build can produce.
// Only Gzip and XZ are valid choices for writing; LZMA and Bzip2 members
// are understood on read but never generated here.
type Compression = compression

type compression string

const (
	compNone compression = ""
	compGzip compression = "gz"
	compXZ   compression = "xz"
	compLZMA compression = "lzma"
	compBzip compression = "bz2"
)

// CompressionGzip and CompressionXZ are the two compressions Build accepts.
const (
	CompressionGzip = compGzip
	CompressionXZ   = compXZ
)

// newTarReader wraps r with the decompressor named by comp and returns a
// ready-to-use tar.Reader. bz2 is decode-only: nothing in this codec ever
// writes a bzip2 member.
func newTarReader(r io.Reader, comp compression) (*tar.Reader, error) {
	switch comp {
	case compNone:
		return tar.NewReader(r), nil
	case compGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, newError(KindMalformedContainer, "", err)
		}
		return tar.NewReader(gz), nil
	case compXZ:
		xr, err := xz.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, newError(KindMalformedContainer, "", err)
		}
		return tar.NewReader(xr), nil
	case compLZMA:
		lr, err := lzma.NewReader(bufio.NewReader(r))
		if err != nil {
			return nil, newError(KindMalformedContainer, "", err)
		}
		return tar.NewReader(lr), nil
	case compBzip:
		return tar.NewReader(bzip2.NewReader(r)), nil
	default:
		return nil, newError(KindUnsupportedCompression, string(comp), nil)
	}
}

// compressionFromSuffix maps a bare compression suffix (".gz", ".xz", ...)
// to a compression. Extract, Info and Contents do not use it; they map
// full member suffixes through suffixCompression.
func compressionFromSuffix(suffix string) compression {
	switch strings.TrimPrefix(suffix, ".") {
	case "gz":
		return compGzip
	case "xz":
		return compXZ
	case "lzma":
		return compLZMA
	case "bz2":
		return compBzip
	default:
		return compNone
	}
}

// newTarWriter opens a writer that compresses via comp before handing tar
// entries to the returned *tar.Writer. The caller must close both the
// returned closer and flush the tar writer itself.
func newTarWriter(w io.Writer, comp compression) (*tar.Writer, io.Closer, error) {
	switch comp {
	case compNone:
		return tar.NewWriter(w), noopCloser{}, nil
	case compGzip:
		gz := gzip.NewWriter(w)
		return tar.NewWriter(gz), gz, nil
	case compXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return tar.NewWriter(xw), xw, nil
	case compLZMA:
		lw, err := lzma.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return tar.NewWriter(lw), lw, nil
	default:
		return nil, nil, newError(KindUnsupportedCompression, string(comp), nil)
	}
}

// extractTarSafe writes every regular/dir/symlink entry of tr under dir,
// refusing any entry whose resolved path would escape dir (the path
// traversal guard required by the container codec: "../", absolute paths,
// and symlink targets that point outside the tree are all rejected).
// Rejected entries are skipped, not fatal; extraction continues.
func extractTarSafe(tr *tar.Reader, dir string) error {
	cleanDir := filepath.Clean(dir)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return newError(KindMalformedContainer, "", err)
		}
		target := filepath.Join(cleanDir, filepath.FromSlash(hdr.Name))
		rel, err := filepath.Rel(cleanDir, target)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg, tar.TypeRegA:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := writeFileFromTar(target, tr, fs.FileMode(hdr.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			linkTarget := hdr.Linkname
			if filepath.IsAbs(linkTarget) {
				continue
			}
			resolved := filepath.Join(filepath.Dir(target), linkTarget)
			relLink, err := filepath.Rel(cleanDir, resolved)
			if err != nil || relLink == ".." || strings.HasPrefix(relLink, ".."+string(filepath.Separator)) {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			_ = os.Symlink(linkTarget, target)
		}
	}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

func writeFileFromTar(target string, r io.Reader, mode fs.FileMode) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, r)
	return err
}

// permissionMode derives the mode a tar entry should be written with when
// building a new tarball, applied uniformly regardless of host OS. This is
// the portability rule: directories, maintainer scripts, and anything
// under a bin/sbin path or starting with a shebang get 0755; everything
// else gets 0644.
func permissionMode(entryPath string, isDir bool, content []byte) fs.FileMode {
	if isDir {
		return 0755
	}
	base := path.Base(filepath.ToSlash(entryPath))
	for _, s := range maintainerScripts {
		if base == string(s) {
			return 0755
		}
	}
	dir := path.Dir(filepath.ToSlash(entryPath))
	for _, part := range strings.Split(dir, "/") {
		if part == "bin" || part == "sbin" {
			return 0755
		}
	}
	if bytes.HasPrefix(content, []byte("#!")) {
		return 0755
	}
	return 0644
}

// baseTarHeader builds a tar.Header with uid/gid/uname/gname forced to
// root, matching force_root semantics.
func baseTarHeader(name string, mode fs.FileMode, size int64, typeflag byte) *tar.Header {
	return &tar.Header{
		Name:     name,
		Mode:     int64(mode.Perm()),
		Typeflag: typeflag,
		Size:     size,
		Uid:      0,
		Gid:      0,
		Uname:    "root",
		Gname:    "root",
	}
}
