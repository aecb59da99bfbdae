package deb

import "strings"

// Metadata is a typed view over a parsed control stanza, covering the
// fields most callers care about. Unlike the underlying controlFile, it
// does not preserve unrecognized fields on its own — callers that need
// perfect round-tripping work with the controlFile directly.
//
// Reference: https://www.debian.org/doc/debian-policy/ch-controlfields.html#binary-package-control-files-debian-control
type Metadata struct {
	Package      string
	Version      string
	Architecture string
	Maintainer   string
	Description  string
	Section      string
	Priority     string
	Homepage     string
	Essential    bool

	Depends    []string
	PreDepends []string
	Recommends []string
	Suggests   []string
	Enhances   []string
	Conflicts  []string
	Breaks     []string
	Replaces   []string
	Provides   []string

	BuiltUsing     string
	Source         string
	InstalledSize  string
	ExtraFields    map[string]string
}

// metadataFromControlFile builds a Metadata view from a parsed stanza.
// Fields not recognized by Metadata land in ExtraFields.
func metadataFromControlFile(cf *controlFile) Metadata {
	m := Metadata{ExtraFields: make(map[string]string)}
	for _, f := range cf.fields {
		switch ControlField(f.Key) {
		case FieldPackage:
			m.Package = f.Value
		case FieldVersion:
			m.Version = f.Value
		case FieldArchitecture:
			m.Architecture = f.Value
		case FieldMaintainer:
			m.Maintainer = f.Value
		case FieldDescription:
			m.Description = f.Value
		case FieldSection:
			m.Section = f.Value
		case FieldPriority:
			m.Priority = f.Value
		case FieldHomepage:
			m.Homepage = f.Value
		case FieldEssential:
			m.Essential = strings.EqualFold(f.Value, "yes")
		case FieldDepends:
			m.Depends = splitList(f.Value)
		case FieldPreDepends:
			m.PreDepends = splitList(f.Value)
		case FieldRecommends:
			m.Recommends = splitList(f.Value)
		case FieldSuggests:
			m.Suggests = splitList(f.Value)
		case FieldEnhances:
			m.Enhances = splitList(f.Value)
		case FieldConflicts:
			m.Conflicts = splitList(f.Value)
		case FieldBreaks:
			m.Breaks = splitList(f.Value)
		case FieldReplaces:
			m.Replaces = splitList(f.Value)
		case FieldProvides:
			m.Provides = splitList(f.Value)
		case FieldBuiltUsing:
			m.BuiltUsing = f.Value
		case FieldSource:
			m.Source = f.Value
		case FieldInstalledSize:
			m.InstalledSize = f.Value
		default:
			m.ExtraFields[f.Key] = f.Value
		}
	}
	return m
}

// StandardFilename returns the canonical "{Package}_{Version}_{Architecture}.deb" name.
func (m Metadata) StandardFilename() string {
	return m.Package + "_" + m.Version + "_" + m.Architecture + ".deb"
}

// UpstreamVersion returns everything before the last "-" in Version.
func (m Metadata) UpstreamVersion() string {
	if i := strings.LastIndex(m.Version, "-"); i != -1 {
		return m.Version[:i]
	}
	return m.Version
}

// Iteration returns everything after the last "-" in Version, or "" if none.
func (m Metadata) Iteration() string {
	if i := strings.LastIndex(m.Version, "-"); i != -1 {
		return m.Version[i+1:]
	}
	return ""
}
