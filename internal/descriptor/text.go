package descriptor

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/modgraph/internal/errors"
)

// YAMLDecoder decodes project.yaml descriptors.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(path string, data []byte) (*Descriptor, error) {
	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, &oerrors.DetailError{
			Type:     "invalid descriptor",
			Message:  err.Error(),
			Location: path,
			Cause:    oerrors.ErrValidation,
		}
	}
	return &desc, nil
}

// TOMLDecoder decodes project.toml descriptors. The parent reference is a
// [parent] table.
type TOMLDecoder struct{}

// Decode implements Decoder.
func (TOMLDecoder) Decode(path string, data []byte) (*Descriptor, error) {
	var desc Descriptor
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&desc); err != nil {
		return nil, &oerrors.DetailError{
			Type:     "invalid descriptor",
			Message:  err.Error(),
			Location: path,
			Cause:    oerrors.ErrValidation,
		}
	}
	return &desc, nil
}
