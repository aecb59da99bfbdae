package deb

// ControlField names a well-known field in a Debian control stanza.
type ControlField string

const (
	FieldPackage       ControlField = "Package"
	FieldVersion       ControlField = "Version"
	FieldArchitecture  ControlField = "Architecture"
	FieldMaintainer    ControlField = "Maintainer"
	FieldDescription   ControlField = "Description"
	FieldSection       ControlField = "Section"
	FieldPriority      ControlField = "Priority"
	FieldHomepage      ControlField = "Homepage"
	FieldEssential     ControlField = "Essential"
	FieldDepends       ControlField = "Depends"
	FieldPreDepends    ControlField = "Pre-Depends"
	FieldRecommends    ControlField = "Recommends"
	FieldSuggests      ControlField = "Suggests"
	FieldEnhances      ControlField = "Enhances"
	FieldConflicts     ControlField = "Conflicts"
	FieldBreaks        ControlField = "Breaks"
	FieldReplaces      ControlField = "Replaces"
	FieldProvides      ControlField = "Provides"
	FieldBuiltUsing    ControlField = "Built-Using"
	FieldSource        ControlField = "Source"
	FieldInstalledSize ControlField = "Installed-Size"
)

// requiredFields must be present for a control stanza to describe a valid package.
var requiredFields = []ControlField{FieldPackage, FieldVersion, FieldArchitecture}

// ControlFilename names a well-known member of the control tarball.
type ControlFilename string

const (
	FileControl   ControlFilename = "control"
	FileMd5sums   ControlFilename = "md5sums"
	FileConffiles ControlFilename = "conffiles"
	FilePreinst   ControlFilename = "preinst"
	FilePostinst  ControlFilename = "postinst"
	FilePrerm     ControlFilename = "prerm"
	FilePostrm    ControlFilename = "postrm"
	FileConfig    ControlFilename = "config"
	FileTriggers  ControlFilename = "triggers"
)

var maintainerScripts = []ControlFilename{FilePreinst, FilePostinst, FilePrerm, FilePostrm, FileConfig}

// arMember names a well-known member of the outer ar container.
type arMember string

const (
	memberDebianBinary arMember = "debian-binary"
	memberControlTar   arMember = "control.tar"
	memberDataTar      arMember = "data.tar"
)

// debianBinaryVersion is the fixed contents of the debian-binary member.
const debianBinaryVersion = "2.0\n"
