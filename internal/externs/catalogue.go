package externs

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/udonc/udonc/internal/udontype"
)

// JSONCatalogue is the default Resolver: a `{"Owner": {"name":
// "Signature string"}}` JSON document nested by owner, keyed by
// owner/name alone (Kind
// and the operand types distinguish TAC shapes upstream; a catalogue
// entry is keyed by the symbol it names, not by how that symbol was
// reached). A miss reports found == false, same as an empty catalogue.
type JSONCatalogue struct {
	raw string
}

// LoadJSONCatalogue reads a catalogue document from disk.
func LoadJSONCatalogue(path string) (*JSONCatalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("externs: reading %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("externs: %s is not valid JSON", path)
	}
	return &JSONCatalogue{raw: string(data)}, nil
}

// NewJSONCatalogue wraps an already-loaded catalogue document, mainly
// for tests that build one via Builder instead of reading a file.
func NewJSONCatalogue(document string) *JSONCatalogue {
	return &JSONCatalogue{raw: document}
}

// ResolveExternSignature implements Resolver by a single gjson lookup
// on the path "Owner.name", which gjson reads as the name key inside the
// owner's object — the nested shape Builder writes. A flat top-level key
// spelled "Owner.name" is not found. An owner or method name carrying a
// literal `.` or `*` would need gjson's own escape syntax.
func (c *JSONCatalogue) ResolveExternSignature(owner, name string, _ Kind, _ []*udontype.Type, _ *udontype.Type) (Signature, bool) {
	if c == nil || c.raw == "" {
		return "", false
	}
	key := owner + "." + name
	result := gjson.Get(c.raw, key)
	if !result.Exists() {
		return "", false
	}
	return Signature(result.String()), true
}

// Builder assembles a JSONCatalogue document programmatically, so a
// backend test can stand up a fixture catalogue without hand-writing
// JSON strings.
type Builder struct {
	document string
	err      error
}

// NewBuilder starts an empty catalogue document.
func NewBuilder() *Builder {
	return &Builder{document: "{}"}
}

// Set registers one owner/name pair's signature. Calls chain; an error
// from any Set is returned by Build rather than at the call site, so a
// fixture can be assembled in one expression.
func (b *Builder) Set(owner, name, signature string) *Builder {
	if b.err != nil {
		return b
	}
	updated, err := sjson.Set(b.document, owner+"."+name, signature)
	if err != nil {
		b.err = fmt.Errorf("externs: setting %s.%s: %w", owner, name, err)
		return b
	}
	b.document = updated
	return b
}

// Build finalizes the document into a JSONCatalogue, or returns the
// first error any Set call encountered.
func (b *Builder) Build() (*JSONCatalogue, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewJSONCatalogue(b.document), nil
}

// MustBuild is Build without the error return, for test fixtures that
// know their catalogue is well-formed by construction.
func (b *Builder) MustBuild() *JSONCatalogue {
	cat, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cat
}
