package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/opmodel/modgraph/internal/descriptor"
	oerrors "github.com/opmodel/modgraph/internal/errors"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Unwrap lets errors.Is match ErrValidation.
func (e ValidationErrors) Unwrap() error {
	return oerrors.ErrValidation
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(configSchemaCUE, cue.Filename("config.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if !def.Exists() {
		return nil, fmt.Errorf("config schema has no #Config definition")
	}

	return &Validator{
		ctx:    ctx,
		schema: def,
	}, nil
}

// Validate checks value rules the schema cannot express.
func (v *Validator) Validate(cfg *Config) error {
	var errs ValidationErrors

	if cfg.Descriptor != "" {
		if _, err := descriptor.ForFilename(cfg.Descriptor); err != nil {
			errs = append(errs, ValidationError{
				Field:   "descriptor",
				Message: fmt.Sprintf("unsupported extension (expected one of %s)", strings.Join(descriptor.SupportedExtensions(), ", ")),
			})
		}
		if strings.ContainsAny(cfg.Descriptor, `/\`) {
			errs = append(errs, ValidationError{
				Field:   "descriptor",
				Message: "must be a bare filename",
			})
		}
	}

	for i, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("ignore[%d]", i),
				Message: fmt.Sprintf("invalid doublestar pattern %q", pat),
			})
		}
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce",
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateData checks raw YAML config content against the CUE schema.
// Unknown keys are rejected.
func (v *Validator) ValidateData(path string, data []byte) error {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  err.Error(),
			Location: path,
			Cause:    oerrors.ErrValidation,
		}
	}
	if doc == nil {
		return nil
	}

	// Durations are written as strings ("500ms"); make sure they parse.
	if watch, ok := doc["watch"].(map[string]interface{}); ok {
		if raw, ok := watch["debounce"].(string); ok {
			if _, err := time.ParseDuration(raw); err != nil {
				return &oerrors.DetailError{
					Type:     "validation failed",
					Message:  fmt.Sprintf("invalid duration %q", raw),
					Location: path,
					Field:    "watch.debounce",
					Hint:     "use a Go duration such as 500ms or 2s",
					Cause:    oerrors.ErrValidation,
				}
			}
		}
	}

	value := v.ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := v.schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  cueerrors.Details(err, nil),
			Location: path,
			Hint:     "allowed keys: " + strings.Join(allowedKeys(), ", "),
			Cause:    oerrors.ErrValidation,
		}
	}

	return nil
}

// ValidateFile runs ValidateData and Validate on the file at path.
func (v *Validator) ValidateFile(loader *Loader, path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return fmt.Errorf("expanding config path: %w", err)
	}

	data, err := readFile(loader, expanded)
	if err != nil {
		return err
	}
	if err := v.ValidateData(expanded, data); err != nil {
		return err
	}

	cfg, err := loader.Load(expanded)
	if err != nil {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  err.Error(),
			Location: expanded,
			Cause:    oerrors.ErrValidation,
		}
	}
	return v.Validate(cfg)
}

func readFile(loader *Loader, path string) ([]byte, error) {
	data, err := afero.ReadFile(loader.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, oerrors.NewNotFoundError("config file does not exist", path, "run 'modgraph config init' to create one")
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return data, nil
}

func allowedKeys() []string {
	keys := []string{"descriptor", "project", "ignore", "watch.debounce", "log.timestamps"}
	slices.Sort(keys)
	return keys
}
