package deb

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/blakesmith/ar"
)

// controlCandidates and dataCandidates fix the priority order used to pick
// a compressed member when more than one is present: gzip first, then xz,
// then raw lzma, finally uncompressed.
var (
	controlCandidates = []string{".tar.gz", ".tar.xz", ".tar"}
	dataCandidates    = []string{".tar.gz", ".tar.xz", ".tar.lzma", ".tar"}
)

func suffixCompression(suffix string) compression {
	switch suffix {
	case ".tar.gz":
		return compGzip
	case ".tar.xz":
		return compXZ
	case ".tar.lzma":
		return compLZMA
	case ".tar":
		return compNone
	default:
		return compNone
	}
}

// Extract unpacks a .deb file at debPath into outputDir: the control
// archive under outputDir/DEBIAN, the data archive under outputDir itself.
// Both tarballs are extracted with the path-traversal guard of
// extractTarSafe; unsafe entries are skipped rather than aborting the
// whole operation.
func Extract(debPath, outputDir string) error {
	f, err := os.Open(debPath)
	if err != nil {
		return newError(KindMalformedContainer, debPath, err)
	}
	defer f.Close()

	entries, err := readARMembers(f)
	if err != nil {
		return err
	}
	if _, _, ok := findMember(entries, string(memberDebianBinary), []string{""}); !ok {
		return newError(KindMissingMember, string(memberDebianBinary), nil)
	}

	control, suffix, ok := findMember(entries, string(memberControlTar), controlCandidates)
	if !ok {
		return newError(KindMissingMember, string(memberControlTar), nil)
	}
	data, dsuffix, ok := findMember(entries, string(memberDataTar), dataCandidates)
	if !ok {
		return newError(KindMissingMember, string(memberDataTar), nil)
	}

	debianDir := filepath.Join(outputDir, "DEBIAN")
	if err := os.MkdirAll(debianDir, 0755); err != nil {
		return err
	}
	ctr, err := newTarReader(bytes.NewReader(control.body), suffixCompression(suffix))
	if err != nil {
		return err
	}
	if err := extractTarSafe(ctr, debianDir); err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	dtr, err := newTarReader(bytes.NewReader(data.body), suffixCompression(dsuffix))
	if err != nil {
		return err
	}
	return extractTarSafe(dtr, outputDir)
}

// Build assembles a .deb file at outputPath from folderPath, which must
// contain a DEBIAN subdirectory with a control file. The control tarball
// is built from DEBIAN/ (force_root, the uniform permission policy); the
// data tarball is built in place from every other top-level entry of
// folderPath, skipping DEBIAN so it stays out of the payload tree. comp selects
// the compression applied to both tarballs. If verify is true, Build
// extracts its own output and checks the required fields are present; a
// verify failure is reported but the output file is left on disk.
func Build(folderPath, outputPath string, comp compression, verify bool) error {
	debianDir := filepath.Join(folderPath, "DEBIAN")
	controlPath := filepath.Join(debianDir, string(FileControl))
	if _, err := os.Stat(controlPath); err != nil {
		return newError(KindMissingMember, controlPath, err)
	}

	controlBuf := new(bytes.Buffer)
	if err := tarDir(controlBuf, debianDir, comp); err != nil {
		return fmt.Errorf("building control archive: %w", err)
	}

	dataBuf := new(bytes.Buffer)
	if err := tarDataTree(dataBuf, folderPath, comp); err != nil {
		return fmt.Errorf("building data archive: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	arW := ar.NewWriter(out)
	if err := arW.WriteGlobalHeader(); err != nil {
		return fmt.Errorf("writing ar global header: %w", err)
	}
	members := []struct {
		name string
		body []byte
	}{
		{string(memberDebianBinary), []byte(debianBinaryVersion)},
		{controlName(comp), controlBuf.Bytes()},
		{dataName(comp), dataBuf.Bytes()},
	}
	for _, m := range members {
		if err := writeARMember(arW, m.name, m.body); err != nil {
			return err
		}
	}

	if verify {
		if err := Verify(outputPath); err != nil {
			return err
		}
	}
	return nil
}

func controlName(comp compression) string {
	if comp == compNone {
		return string(memberControlTar)
	}
	return string(memberControlTar) + "." + string(comp)
}

func dataName(comp compression) string {
	if comp == compNone {
		return string(memberDataTar)
	}
	return string(memberDataTar) + "." + string(comp)
}

// tarDir writes every file under dir into a new tarball, rooted at dir,
// with force-root ownership and the uniform permission policy.
func tarDir(w io.Writer, dir string, comp compression) error {
	tw, closer, err := newTarWriter(w, comp)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer tw.Close()

	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := "./" + filepath.ToSlash(rel)
		if info.IsDir() {
			hdr := baseTarHeader(name+"/", 0755, 0, '5')
			return tw.WriteHeader(hdr)
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		mode := permissionMode(rel, false, content)
		hdr := baseTarHeader(name, mode, int64(len(content)), '0')
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		_, err = tw.Write(content)
		return err
	})
}

// tarDataTree writes the payload tarball from every top-level entry of
// root except DEBIAN, isolating the control directory from the installed
// file tree exactly as the build step requires.
func tarDataTree(w io.Writer, root string, comp compression) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	tw, closer, err := newTarWriter(w, comp)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer tw.Close()

	for _, e := range entries {
		if e.Name() == "DEBIAN" {
			continue
		}
		base := filepath.Join(root, e.Name())
		err := filepath.Walk(base, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			name := "./" + filepath.ToSlash(rel)
			if info.IsDir() {
				return tw.WriteHeader(baseTarHeader(name+"/", 0755, 0, '5'))
			}
			content, err := os.ReadFile(p)
			if err != nil {
				return err
			}
			mode := permissionMode(rel, false, content)
			hdr := baseTarHeader(name, mode, int64(len(content)), '0')
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			_, err = tw.Write(content)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Info reads a .deb's control stanza and returns it as a parsed
// controlFile-backed Metadata view.
func Info(debPath string) (Metadata, error) {
	f, err := os.Open(debPath)
	if err != nil {
		return Metadata{}, newError(KindMalformedContainer, debPath, err)
	}
	defer f.Close()

	entries, err := readARMembers(f)
	if err != nil {
		return Metadata{}, err
	}
	control, suffix, ok := findMember(entries, string(memberControlTar), controlCandidates)
	if !ok {
		return Metadata{}, newError(KindMissingMember, string(memberControlTar), nil)
	}
	tr, err := newTarReader(bytes.NewReader(control.body), suffixCompression(suffix))
	if err != nil {
		return Metadata{}, err
	}
	content, err := readTarMemberSuffix(tr, string(FileControl))
	if err != nil {
		return Metadata{}, err
	}
	cf, err := parseControlFile(content)
	if err != nil {
		return Metadata{}, err
	}
	if missing := missingRequiredFields(cf); len(missing) > 0 {
		return Metadata{}, newError(KindMissingRequiredField, strings.Join(missing, ","), nil)
	}
	return metadataFromControlFile(cf), nil
}

// Contents lists the member names of both tarballs without extracting any
// payload bytes.
func Contents(debPath string) (control, data []string, err error) {
	f, ferr := os.Open(debPath)
	if ferr != nil {
		return nil, nil, newError(KindMalformedContainer, debPath, ferr)
	}
	defer f.Close()

	entries, rerr := readARMembers(f)
	if rerr != nil {
		return nil, nil, rerr
	}
	cEntry, cSuffix, ok := findMember(entries, string(memberControlTar), controlCandidates)
	if !ok {
		return nil, nil, newError(KindMissingMember, string(memberControlTar), nil)
	}
	dEntry, dSuffix, ok := findMember(entries, string(memberDataTar), dataCandidates)
	if !ok {
		return nil, nil, newError(KindMissingMember, string(memberDataTar), nil)
	}
	control, err = listTarNames(cEntry.body, suffixCompression(cSuffix))
	if err != nil {
		return nil, nil, err
	}
	data, err = listTarNames(dEntry.body, suffixCompression(dSuffix))
	if err != nil {
		return nil, nil, err
	}
	return control, data, nil
}

func listTarNames(body []byte, comp compression) ([]string, error) {
	tr, err := newTarReader(bytes.NewReader(body), comp)
	if err != nil {
		return nil, err
	}
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newError(KindMalformedContainer, "", err)
		}
		names = append(names, hdr.Name)
	}
	sort.Strings(names)
	return names, nil
}

func readTarMemberSuffix(tr *tar.Reader, suffix string) (string, error) {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return "", newError(KindMissingMember, suffix, nil)
		}
		if err != nil {
			return "", newError(KindMalformedContainer, "", err)
		}
		if filepath.Base(hdr.Name) == suffix {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, tr); err != nil {
				return "", err
			}
			return buf.String(), nil
		}
	}
}

// Verify extracts deb's contents into a temporary directory and checks
// that DEBIAN/control exists and declares Package, Version and
// Architecture. It reports failure but never removes deb itself.
func Verify(debPath string) error {
	dir, err := os.MkdirTemp("", "tweakcore-verify-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	if err := Extract(debPath, dir); err != nil {
		return newError(KindVerifyFailed, debPath, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "DEBIAN", string(FileControl))); err != nil {
		return newError(KindVerifyFailed, debPath, err)
	}
	if _, err := Info(debPath); err != nil {
		return newError(KindVerifyFailed, debPath, err)
	}
	return nil
}
