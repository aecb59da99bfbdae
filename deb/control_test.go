package deb

import (
	"strings"
	"testing"
)

func TestParseControlFileBasic(t *testing.T) {
	text := "Package: com.example.tweak\nVersion: 1.0-1\nArchitecture: iphoneos-arm64\n" +
		"Description: a tweak\n for doing things\n .\n more text\n"
	cf, err := parseControlFile(text)
	if err != nil {
		t.Fatalf("parseControlFile: %v", err)
	}
	if v, _ := cf.Get("package"); v != "com.example.tweak" {
		t.Errorf("Package = %q, want com.example.tweak", v)
	}
	desc, ok := cf.Get("Description")
	if !ok {
		t.Fatalf("Description missing")
	}
	want := "a tweak\nfor doing things\n\nmore text"
	if desc != want {
		t.Errorf("Description = %q, want %q", desc, want)
	}
}

func TestParseControlFileStopsAtBlankLine(t *testing.T) {
	text := "Package: a\nVersion: 1\n\nPackage: b\nVersion: 2\n"
	cf, err := parseControlFile(text)
	if err != nil {
		t.Fatalf("parseControlFile: %v", err)
	}
	if v, _ := cf.Get("Package"); v != "a" {
		t.Errorf("Package = %q, want a", v)
	}
}

func TestControlFilePreservesUnknownFields(t *testing.T) {
	text := "Package: a\nVersion: 1\nArchitecture: all\nSileoDepiction: https://example.com/d\n"
	cf, err := parseControlFile(text)
	if err != nil {
		t.Fatalf("parseControlFile: %v", err)
	}
	rendered := renderControlFile(cf)
	if !strings.Contains(rendered, "SileoDepiction: https://example.com/d") {
		t.Errorf("rendered control dropped unknown field: %q", rendered)
	}
}

func TestSplitStanzas(t *testing.T) {
	text := "Package: a\nVersion: 1\n\nPackage: b\nVersion: 2\n\n\n"
	stanzas := splitStanzas(text)
	if len(stanzas) != 2 {
		t.Fatalf("got %d stanzas, want 2", len(stanzas))
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(" a, b ,c"); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("splitList = %v", got)
	}
	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %v, want nil", got)
	}
}

func TestMissingRequiredFields(t *testing.T) {
	cf, _ := parseControlFile("Package: a\n")
	missing := missingRequiredFields(cf)
	if len(missing) != 2 {
		t.Errorf("missing = %v, want 2 entries", missing)
	}
}
