package deb

import "testing"

func TestParseStanzaAdmitsPackageOnly(t *testing.T) {
	p, err := ParseStanza("Package: com.example.a\n\n")
	if err != nil {
		t.Fatalf("ParseStanza: %v", err)
	}
	if p.Package != "com.example.a" {
		t.Errorf("Package = %q, want com.example.a", p.Package)
	}
	if p.Version != "" || p.Architecture != "" {
		t.Errorf("expected missing Version/Architecture to be left blank, got %+v", p)
	}
}

func TestParseStanzaRejectsMissingPackage(t *testing.T) {
	_, err := ParseStanza("Version: 1.0\nArchitecture: iphoneos-arm64\n\n")
	if err == nil {
		t.Fatal("expected an error when Package is absent")
	}
}
