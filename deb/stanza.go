package deb

import (
	"strconv"
	"strings"

	"github.com/evil0ctal/tweakcore/record"
)

// ParseStanza parses one control stanza of a Packages index into a
// record.Package, folding continuation lines per parseControlFile. A
// stanza is admitted as long as it declares Package; Version and
// Architecture (and every other field) are optional here, unlike the
// stricter 3-field requirement Info/Verify apply to an actual .deb's
// control file.
func ParseStanza(text string) (*record.Package, error) {
	cf, err := parseControlFile(text)
	if err != nil {
		return nil, err
	}
	if pkg, _ := cf.Get(string(FieldPackage)); pkg == "" {
		return nil, newError(KindMissingRequiredField, string(FieldPackage), nil)
	}

	p := &record.Package{Extra: make(map[string]string)}
	for _, f := range cf.fields {
		switch strings.ToLower(f.Key) {
		case "package":
			p.Package = f.Value
		case "version":
			p.Version = f.Value
		case "architecture":
			p.Architecture = f.Value
		case "name":
			p.Name = f.Value
		case "author":
			p.Author = f.Value
		case "maintainer":
			p.Maintainer = f.Value
		case "section":
			p.Section = f.Value
		case "description":
			p.Description = f.Value
		case "depends":
			p.Depends = splitList(f.Value)
		case "tag":
			p.Tag = splitList(f.Value)
		case "filename":
			p.Filename = f.Value
		case "size":
			p.Size, _ = strconv.ParseInt(f.Value, 10, 64)
		case "md5sum":
			p.MD5Sum = f.Value
		case "sha256":
			p.SHA256 = f.Value
		case "icon":
			p.Icon = f.Value
		case "depiction":
			p.Depiction = f.Value
		case "sileodepiction":
			p.SileoDepiction = f.Value
		case "native_depiction", "nativedepiction":
			p.NativeDepiction = f.Value
		case "rootless":
			v := strings.ToLower(f.Value)
			p.Rootless = v == "yes" || v == "true" || v == "1"
		case "commercial":
			v := strings.ToLower(f.Value)
			p.Commercial = v == "yes" || v == "true" || v == "1"
		case "payment_link", "paymentlink":
			p.PaymentLink = f.Value
		case "installed-size":
			p.InstalledSize, _ = strconv.ParseInt(f.Value, 10, 64)
		default:
			p.Extra[f.Key] = f.Value
		}
	}
	return p, nil
}
