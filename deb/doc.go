// Package deb provides a pure Go library for unpacking, inspecting and
// building Debian binary packages (.deb files), as used by the Cydia,
// Sileo and Zebra package managers.
//
// A .deb is a SysV ar container holding three members in order:
// debian-binary, a compressed control tarball, and a compressed data
// tarball. Extract, Build, Info and Contents work directly against a
// folder on disk (a DEBIAN control directory plus the installed file
// tree) rather than an in-memory object graph, matching how dpkg-deb
// itself is driven.
//
// Build writes gzip or xz members. Extract, Info and Contents read gzip,
// xz and uncompressed members, plus raw ("alone"-format) lzma for the data
// tarball; bzip2 members are not selected from a .deb.
package deb
