package descriptor

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	oerrors "github.com/opmodel/modgraph/internal/errors"
)

//go:embed schema/descriptor.cue
var descriptorSchemaCUE []byte

// CUEDecoder decodes project.cue descriptors and validates them against the
// embedded #Descriptor schema.
//
// A cue.Context is not safe for concurrent use, so Decode serialises access.
type CUEDecoder struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewCUEDecoder compiles the embedded schema and returns a ready decoder.
func NewCUEDecoder() (*CUEDecoder, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(descriptorSchemaCUE, cue.Filename("descriptor.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling descriptor schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Descriptor"))
	if !def.Exists() {
		return nil, fmt.Errorf("descriptor schema has no #Descriptor definition")
	}
	return &CUEDecoder{ctx: ctx, schema: def}, nil
}

// Decode compiles data, unifies it with #Descriptor and extracts the fields.
func (d *CUEDecoder) Decode(path string, data []byte) (*Descriptor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, &oerrors.DetailError{
			Type:     "invalid descriptor",
			Message:  cueerrors.Details(err, nil),
			Location: path,
			Cause:    oerrors.ErrValidation,
		}
	}

	unified := d.schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, &oerrors.DetailError{
			Type:     "descriptor does not match schema",
			Message:  cueerrors.Details(err, nil),
			Location: path,
			Hint:     "parent.relativePath and modules entries must be strings",
			Cause:    oerrors.ErrValidation,
		}
	}

	// Fields are read from the document itself so that optional schema
	// fields the document omits stay absent.
	desc := &Descriptor{
		Name:    lookupString(v, "name"),
		Version: lookupString(v, "version"),
	}

	if p := v.LookupPath(cue.ParsePath("parent")); p.Exists() {
		desc.Parent = &ParentRef{RelativePath: lookupString(p, "relativePath")}
	}

	desc.Modules = lookupStrings(v, "modules")
	desc.Dependencies = lookupStrings(v, "dependencies")

	return desc, nil
}

func lookupString(v cue.Value, path string) string {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return ""
	}
	s, err := f.String()
	if err != nil {
		return ""
	}
	return s
}

func lookupStrings(v cue.Value, path string) []string {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil
	}
	iter, err := f.List()
	if err != nil {
		return nil
	}
	var out []string
	for iter.Next() {
		if s, err := iter.Value().String(); err == nil {
			out = append(out, s)
		}
	}
	return out
}
