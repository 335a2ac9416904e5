package cmdutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/output"
)

// PrintError prints err in a user-friendly format. Detailed errors get a
// short summary line followed by their structured body on stderr.
func PrintError(msg string, err error) {
	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		output.Error(fmt.Sprintf("%s: %s", msg, detail.Type))
		output.Details(detail.Error())
		return
	}
	output.Error(msg, "error", err)
}

// Fail prints err and wraps it in an ExitError carrying the exit code its
// sentinel maps to. The returned error is marked as printed.
func Fail(msg string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *oerrors.ExitError
	if errors.As(err, &exitErr) && exitErr.Printed {
		return err
	}
	PrintError(msg, err)
	return &oerrors.ExitError{
		Code:    oerrors.ExitCodeFromError(err),
		Err:     err,
		Printed: true,
	}
}

// WriteStructured writes v as YAML or JSON.
func WriteStructured(w io.Writer, v interface{}, format output.OutputFormat) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case output.FormatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case output.FormatYAML:
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("format %q is not a structured format", format)
	}
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", format, err)
	}

	_, err = w.Write(data)
	return err
}
