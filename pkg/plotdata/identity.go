package plotdata

import "fmt"

type IdentityKind string

const (
	KindCaption IdentityKind = "caption"
	KindPath    IdentityKind = "path"
	KindSite    IdentityKind = "site"
)

// Identity names one logical chart for the lifetime of the process.
// Examples:
//
//	{Kind: "caption", Name: "Live Trigonometry"}
//	{Kind: "path",    Name: "plots/Options.jpg"}
//	{Kind: "site",    Name: "main.go:42"}
type Identity struct {
	Kind IdentityKind
	Name string
}

// ResolveIdentity picks the identity of a plot: the caption if present, else
// the output path, else the call site.
func ResolveIdentity(caption, path, site string) Identity {
	switch {
	case caption != "":
		return Identity{Kind: KindCaption, Name: caption}
	case path != "":
		return Identity{Kind: KindPath, Name: path}
	default:
		return Identity{Kind: KindSite, Name: site}
	}
}

// IsZero reports whether the identity is incomplete.
func (id Identity) IsZero() bool { return id.Kind == "" || id.Name == "" }

// String returns "kind/name".
func (id Identity) String() string {
	if id.IsZero() {
		return fmt.Sprintf("<invalid>/%s", id.Name)
	}
	return string(id.Kind) + "/" + id.Name
}
