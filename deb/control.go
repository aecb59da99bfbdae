package deb

import (
	"strings"
)

// controlField is one key/value pair of a parsed control stanza, in the
// order it appeared in the source text.
type controlField struct {
	Key   string
	Value string
}

// controlFile is an ordered, case-insensitively addressable control
// stanza. Unlike a fixed-field struct, it preserves any field the parser
// doesn't recognize so a stanza can be re-rendered without losing data.
type controlFile struct {
	fields []controlField
	index  map[string]int // lowercased key -> index into fields
}

func newControlFile() *controlFile {
	return &controlFile{index: make(map[string]int)}
}

// Get returns the value of key (case-insensitive) and whether it was set.
func (c *controlFile) Get(key string) (string, bool) {
	i, ok := c.index[strings.ToLower(key)]
	if !ok {
		return "", false
	}
	return c.fields[i].Value, true
}

// Set overwrites key's value if present, preserving its original position,
// or appends a new field at the end.
func (c *controlFile) Set(key, value string) {
	lk := strings.ToLower(key)
	if i, ok := c.index[lk]; ok {
		c.fields[i].Value = value
		return
	}
	c.index[lk] = len(c.fields)
	c.fields = append(c.fields, controlField{Key: key, Value: value})
}

// Has reports whether key is present.
func (c *controlFile) Has(key string) bool {
	_, ok := c.index[strings.ToLower(key)]
	return ok
}

// Keys returns field names in declaration order.
func (c *controlFile) Keys() []string {
	keys := make([]string, len(c.fields))
	for i, f := range c.fields {
		keys[i] = f.Key
	}
	return keys
}

// parseControlFile parses one RFC822-like stanza: "Key: value" lines, where
// a line beginning with a single leading space or tab is a folded
// continuation of the previous field's value (its leading whitespace is
// stripped and the line is appended, newline-joined). Parsing stops at the
// first blank line, matching a single stanza out of a multi-stanza index.
func parseControlFile(text string) (*controlFile, error) {
	cf := newControlFile()
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var curKey string
	var curVal strings.Builder
	flush := func() {
		if curKey != "" {
			cf.Set(curKey, curVal.String())
		}
		curKey = ""
		curVal.Reset()
	}

	for _, line := range lines {
		if line == "" {
			break
		}
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && curKey != "" {
			cont := strings.TrimPrefix(line, " ")
			cont = strings.TrimPrefix(cont, "\t")
			if cont == "." {
				cont = ""
			}
			curVal.WriteByte('\n')
			curVal.WriteString(cont)
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		flush()
		curKey = strings.TrimSpace(line[:idx])
		curVal.WriteString(strings.TrimSpace(line[idx+1:]))
	}
	flush()
	return cf, nil
}

// renderControlFile renders a stanza back to text, one "Key: value" line
// per field in declaration order, folding embedded newlines back into
// continuation lines prefixed with a single space (an empty continuation
// line is rendered as " .", the conventional empty-line marker).
func renderControlFile(cf *controlFile) string {
	var b strings.Builder
	for _, f := range cf.fields {
		lines := strings.Split(f.Value, "\n")
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(lines[0])
		b.WriteByte('\n')
		for _, cont := range lines[1:] {
			if cont == "" {
				b.WriteString(" .\n")
			} else {
				b.WriteString(" ")
				b.WriteString(cont)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// splitList splits a comma-separated control field (Depends, Conflicts,
// ...) into trimmed entries, returning nil for an empty field.
func splitList(v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// SplitStanzas splits the text of a Packages index into its individual
// control stanzas, on blank-line boundaries.
func SplitStanzas(text string) []string {
	return splitStanzas(text)
}

// splitStanzas splits the text of a Packages index into its individual
// control stanzas, on blank-line boundaries.
func splitStanzas(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// missingRequiredFields returns the names of any required field absent
// from cf.
func missingRequiredFields(cf *controlFile) []string {
	var missing []string
	for _, f := range requiredFields {
		if !cf.Has(string(f)) {
			missing = append(missing, string(f))
		}
	}
	return missing
}
