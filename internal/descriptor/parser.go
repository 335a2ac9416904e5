package descriptor

import (
	"fmt"

	"github.com/opmodel/modgraph/internal/output"
)

// Parser binds a Decoder to a descriptor filename. It satisfies the
// workspace registry's parser contract.
type Parser struct {
	filename string
	decoder  Decoder
}

// NewParser returns a Parser for descriptors named filename.
func NewParser(filename string) (*Parser, error) {
	dec, err := ForFilename(filename)
	if err != nil {
		return nil, err
	}
	return &Parser{filename: filename, decoder: dec}, nil
}

// Filename returns the descriptor filename this parser handles.
func (p *Parser) Filename() string {
	return p.filename
}

// Parse decodes the descriptor at path.
func (p *Parser) Parse(path string, data []byte) (*Descriptor, error) {
	desc, err := p.decoder.Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	output.Debug("parsed descriptor",
		"path", path,
		"parent", desc.HasParent(),
		"modules", len(desc.Modules),
	)
	return desc, nil
}
