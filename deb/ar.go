package deb

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/blakesmith/ar"
)

// writeARMember writes a single named entry to the ar container with the
// fixed header field values required by the format: uid/gid 0, mode 0644,
// mtime 0 (the teacher's addBufferToAr stamps the current time instead;
// tweakcore pins mtime to zero so repeated builds of the same tree produce
// byte-identical output).
func writeARMember(w *ar.Writer, name string, body []byte) error {
	header := &ar.Header{
		Name:    name,
		Size:    int64(len(body)),
		Mode:    0644,
		ModTime: time.Unix(0, 0),
	}
	if err := w.WriteHeader(header); err != nil {
		return fmt.Errorf("writing ar header for %s: %w", name, err)
	}
	_, err := w.Write(body)
	return err
}

// arEntry is one decoded member of an ar container, held fully in memory.
type arEntry struct {
	name string
	body []byte
}

// readARMembers reads every member of an ar container into memory, in
// order. It does not itself validate the "!<arch>\n" magic beyond what the
// underlying ar.Reader enforces; callers that need a MalformedContainer
// error wrap this call.
func readARMembers(r io.Reader) ([]arEntry, error) {
	ar0 := ar.NewReader(r)
	var entries []arEntry
	for {
		hdr, err := ar0.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newError(KindMalformedContainer, "", err)
		}
		body, err := io.ReadAll(ar0)
		if err != nil {
			return nil, newError(KindMalformedContainer, hdr.Name, err)
		}
		entries = append(entries, arEntry{name: strings.TrimSuffix(hdr.Name, "/"), body: body})
	}
	return entries, nil
}

// findMember returns the first entry whose name is exactly prefix followed
// by one of suffixes, trying suffixes in the given priority order. It reports which candidate
// matched so the caller can pick the right decompressor.
func findMember(entries []arEntry, prefix string, suffixes []string) (arEntry, string, bool) {
	for _, suffix := range suffixes {
		want := prefix + suffix
		for _, e := range entries {
			if e.name == want {
				return e, suffix, true
			}
		}
	}
	return arEntry{}, "", false
}
