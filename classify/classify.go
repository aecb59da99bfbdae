// Package classify implements the jailbreak-compatibility classifier: for
// a given package record, decide whether it targets a Rootless jailbreak,
// a Rootful one, both, or neither can be determined (Unknown).
//
// Grounded on original_source/src/core/repo_manager.py's
// get_jailbreak_compatibility / is_rootless_compatible /
// is_architecture_compatible.
package classify

import (
	"strings"

	"github.com/evil0ctal/tweakcore/record"
)

// Compatibility is the outcome of classifying a package.
type Compatibility int

const (
	Unknown Compatibility = iota
	Rootless
	Rootful
	Both
)

func (c Compatibility) String() string {
	switch c {
	case Rootless:
		return "rootless"
	case Rootful:
		return "rootful"
	case Both:
		return "both"
	default:
		return "unknown"
	}
}

// rootlessOnlyDeps are dependency names that only make sense on a rootless
// jailbreak: their presence in Depends is a strong rootless signal.
var rootlessOnlyDeps = []string{
	"ellekit", "libhooker", "com.ex.substitute", "org.coolstar.libhooker", "com.opa334.altlist",
}

// rootfulSubstrateMarkers exclude the "modern arch + mobilesubstrate"
// heuristic from firing on packages that are clearly still Cydia/rootful
// (mobilesubstrate is ambiguous by itself; these markers disambiguate it).
var rootfulSubstrateMarkers = []string{"cydia", "com.saurik", "substrate.safemode"}

// Classify runs the full rule cascade against p, in priority order:
//  1. an explicit Rootless flag
//  2. a rootless/rootful signal in the distribution filename
//  3. a rootless/rootful signal in the package name
//  4. a rootless path or label mentioned in the description
//  5. a known rootless-only dependency
//  6. a modern architecture (arm64/arm64e) combined with a
//     mobilesubstrate dependency, absent any rootful marker -> Rootless
//     (mobilesubstrate alone is no longer a reliable Rootful signal on a
//     modern architecture)
//  7. a legacy architecture (arm, armv7, armv7s) that is not arm64
//  8. mobilesubstrate alone, with no other signal -> Unknown
//
// Falling through every rule yields Unknown — no claim is the conservative
// default, since misclassifying a package as compatible with the wrong
// jailbreak mode is worse than surfacing ambiguity to the caller.
func Classify(p *record.Package) Compatibility {
	if p.Rootless {
		return Rootless
	}

	lowerFilename := strings.ToLower(p.Filename)
	if containsAny(lowerFilename, "rootless", "var-jb", "varjb") {
		return Rootless
	}
	if containsAny(lowerFilename, "rootful", "roothide-rootful") {
		return Rootful
	}

	lowerName := strings.ToLower(p.Package)
	if containsAny(lowerName, "rootless") {
		return Rootless
	}
	if containsAny(lowerName, "rootful") {
		return Rootful
	}

	lowerDesc := strings.ToLower(p.Description + " " + p.DisplayName())
	if containsAny(lowerDesc, "/var/jb", "rootless", "无根") {
		return Rootless
	}

	for _, dep := range p.Depends {
		ld := strings.ToLower(dep)
		for _, marker := range rootlessOnlyDeps {
			if strings.Contains(ld, marker) {
				return Rootless
			}
		}
	}

	arch := strings.ToLower(p.Architecture)
	modernArch := strings.Contains(arch, "arm64")
	hasSubstrate := false
	for _, dep := range p.Depends {
		if strings.Contains(strings.ToLower(dep), "mobilesubstrate") {
			hasSubstrate = true
			break
		}
	}
	if modernArch && hasSubstrate && !containsAny(lowerDesc+" "+lowerName, rootfulSubstrateMarkers...) {
		return Rootless
	}

	legacyArch := strings.Contains(arch, "arm") && !modernArch
	if legacyArch {
		return Rootful
	}

	if hasSubstrate {
		return Unknown
	}

	return Unknown
}

// IsRootlessCompatible mirrors is_rootless_compatible: permissive by
// default, true whenever the Rootless flag is set or the architecture
// names arm64e, and true for anything not otherwise disqualified.
func IsRootlessCompatible(p *record.Package) bool {
	if p.Rootless {
		return true
	}
	if strings.Contains(strings.ToLower(p.Architecture), "arm64e") {
		return true
	}
	return true
}

// archCompat maps a device architecture to the set of package
// architectures it can install, per is_architecture_compatible.
var archCompat = map[string][]string{
	"arm64": {"iphoneos-arm64", "iphoneos-arm", "all", "any", "darwin-arm64", "darwin-arm"},
	"arm64e": {
		"iphoneos-arm64", "iphoneos-arm64e", "iphoneos-arm", "all", "any",
		"darwin-arm64", "darwin-arm64e", "darwin-arm",
	},
	"armv7":  {"iphoneos-arm", "all", "any", "darwin-arm"},
	"armv7s": {"iphoneos-arm", "all", "any", "darwin-arm"},
}

// IsArchitectureCompatible reports whether p can install on deviceArch. A
// package that declares no architecture at all is treated as universally
// compatible.
func IsArchitectureCompatible(p *record.Package, deviceArch string) bool {
	if p.Architecture == "" {
		return true
	}
	allowed, ok := archCompat[strings.ToLower(deviceArch)]
	if !ok {
		return true
	}
	pkgArch := strings.ToLower(p.Architecture)
	for _, a := range allowed {
		if a == pkgArch {
			return true
		}
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
