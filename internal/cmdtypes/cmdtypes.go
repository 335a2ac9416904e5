// Package cmdtypes provides shared types for the cmd package and its sub-packages.
// It is separate from internal/cmd to avoid import cycles between internal/cmd
// and its sub-packages (internal/cmd/mod, internal/cmd/config).
package cmdtypes

import (
	"github.com/opmodel/modgraph/internal/config"
	oerrors "github.com/opmodel/modgraph/internal/errors"
)

// GlobalConfig holds CLI-wide configuration resolved during PersistentPreRunE.
// It is populated once at startup and passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	// Config is the config file merged with defaults and the resolved
	// project and descriptor values.
	Config *config.Config

	// Resolved records where each flag-backed value came from.
	Resolved *config.ResolvedConfig

	ConfigPath string // resolved --config path
	Project    string // resolved --project root
	Descriptor string // resolved --descriptor filename
	Verbose    bool
}

// Exit codes, aliased from internal/errors.
const (
	ExitSuccess          = oerrors.ExitSuccess
	ExitGeneralError     = oerrors.ExitGeneralError
	ExitValidationError  = oerrors.ExitValidationError
	ExitPermissionDenied = oerrors.ExitPermissionDenied
	ExitNotFound         = oerrors.ExitNotFound
)

// ExitError is a type alias to internal/errors.ExitError.
type ExitError = oerrors.ExitError
