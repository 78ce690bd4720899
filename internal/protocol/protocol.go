package protocol

import "strings"

// URI identifies the cryptichearts protocol in every record message.
const URI = "http://ansellmaximilian.github.io/crypticheartsprotocol"

const (
	FormatJSON = "application/json"
	FormatJPEG = "image/jpeg"
	FormatText = "text/plain"
)

// Path is a protocol path such as "following/sharedProfile". The last
// segment names the record type.
type Path string

const (
	PathProfile       Path = "profile"
	PathProfileImage  Path = "profile/profileImage"
	PathFollowing     Path = "following"
	PathSharedProfile Path = "following/sharedProfile"
	PathPost          Path = "post"
	PathPostComment   Path = "post/postComment"
	PathMessage       Path = "message"
)

// Type returns the record type name, the last path segment.
func (p Path) Type() string {
	if i := strings.LastIndexByte(string(p), '/'); i >= 0 {
		return string(p[i+1:])
	}
	return string(p)
}

// Parent returns the enclosing path, or "" for a root path.
func (p Path) Parent() Path {
	if i := strings.LastIndexByte(string(p), '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// Schema returns the schema URI of the record type at p.
func (p Path) Schema() string {
	return Schema(p.Type())
}

// DataFormat returns the first declared data format of the type at p.
func (p Path) DataFormat() string {
	t, ok := Types[p.Type()]
	if !ok || len(t.DataFormats) == 0 {
		return ""
	}
	return t.DataFormats[0]
}

// Valid reports whether p is declared in the protocol structure.
func (p Path) Valid() bool {
	_, ok := Structure[p]
	return ok
}

// Schema builds the schema URI for a record type name.
func Schema(typeName string) string {
	return URI + "/" + typeName
}

type TypeDef struct {
	Schema      string
	DataFormats []string
}

// Types lists every record type with the formats it accepts.
var Types = map[string]TypeDef{
	"profile":       {Schema: Schema("profile"), DataFormats: []string{FormatJSON}},
	"profileImage":  {Schema: Schema("profileImage"), DataFormats: []string{FormatJPEG}},
	"following":     {Schema: Schema("following"), DataFormats: []string{FormatJSON}},
	"sharedProfile": {Schema: Schema("sharedProfile"), DataFormats: []string{FormatJSON}},
	"post":          {Schema: Schema("post"), DataFormats: []string{FormatJSON}},
	"postComment":   {Schema: Schema("postComment"), DataFormats: []string{FormatText}},
	"message":       {Schema: Schema("message"), DataFormats: []string{FormatJSON}},
}
