// Package cmdutil provides shared command utilities for mod subcommands.
// It centralizes flag group management, workspace wiring and output
// formatting helpers.
package cmdutil

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/modgraph/internal/errors"
	"github.com/opmodel/modgraph/internal/output"
)

// OutputFlags holds the -o flag of commands that print structured data
// (list, show).
type OutputFlags struct {
	Format string

	allowed []output.OutputFormat
}

// AddTo registers the output flag on the given cobra command. The first
// allowed format is the default.
func (f *OutputFlags) AddTo(cmd *cobra.Command, allowed ...output.OutputFormat) {
	f.allowed = allowed
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		names = append(names, a.String())
	}
	cmd.Flags().StringVarP(&f.Format, "output", "o", names[0],
		fmt.Sprintf("Output format: %s", strings.Join(names, ", ")))
}

// Parse returns the selected format, or a validation error when the value
// is unknown or not allowed for this command.
func (f *OutputFlags) Parse() (output.OutputFormat, error) {
	format, ok := output.ParseOutputFormat(f.Format)
	if !ok || (len(f.allowed) > 0 && !slices.Contains(f.allowed, format)) {
		names := make([]string, 0, len(f.allowed))
		for _, a := range f.allowed {
			names = append(names, a.String())
		}
		return "", oerrors.NewValidationError(
			fmt.Sprintf("unsupported output format %q", f.Format),
			"", "output",
			"use one of: "+strings.Join(names, ", "),
		)
	}
	return format, nil
}
