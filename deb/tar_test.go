package deb

import "testing"

func TestPermissionModeDirectory(t *testing.T) {
	if got := permissionMode("usr/bin", true, nil); got != 0755 {
		t.Errorf("dir mode = %o, want 0755", got)
	}
}

func TestPermissionModeMaintainerScript(t *testing.T) {
	if got := permissionMode("DEBIAN/postinst", false, []byte("#!/bin/sh\n")); got != 0755 {
		t.Errorf("postinst mode = %o, want 0755", got)
	}
}

func TestPermissionModeBinDir(t *testing.T) {
	if got := permissionMode("usr/bin/tool", false, []byte("binary-data")); got != 0755 {
		t.Errorf("bin mode = %o, want 0755", got)
	}
}

func TestPermissionModeShebang(t *testing.T) {
	if got := permissionMode("usr/share/script.sh", false, []byte("#!/bin/sh\necho hi\n")); got != 0755 {
		t.Errorf("shebang mode = %o, want 0755", got)
	}
}

func TestPermissionModeDefault(t *testing.T) {
	if got := permissionMode("usr/share/doc/readme.txt", false, []byte("hello")); got != 0644 {
		t.Errorf("default mode = %o, want 0644", got)
	}
}

func TestCompressionFromSuffix(t *testing.T) {
	cases := map[string]compression{
		".gz":   compGzip,
		".xz":   compXZ,
		".lzma": compLZMA,
		".bz2":  compBzip,
		"":      compNone,
	}
	for suffix, want := range cases {
		if got := compressionFromSuffix(suffix); got != want {
			t.Errorf("compressionFromSuffix(%q) = %q, want %q", suffix, got, want)
		}
	}
}
