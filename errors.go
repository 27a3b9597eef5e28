package gofpd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/albertocavalcante/go-fpd/fpd"
)

// Sentinel errors for platform level failures.
var (
	// ErrModuleNotInPlatform indicates the module instance is not part of
	// the platform description.
	ErrModuleNotInPlatform = errors.New("module instance not in platform")

	// ErrModuleInPlatform indicates the module instance is already present.
	ErrModuleInPlatform = errors.New("module instance already in platform")

	// ErrNotInWorkspace indicates a module or library referenced by the
	// platform cannot be found in the workspace.
	ErrNotInWorkspace = errors.New("not in workspace")
)

// NotInWorkspaceError reports a module instance or library instance whose
// backing module is missing from the workspace.
type NotInWorkspaceError struct {
	// Instance is the module instance being reconciled.
	Instance fpd.ModuleSAKey

	// Library is set when the missing module is a library instance.
	Library *fpd.LibraryInstance
}

func (e *NotInWorkspaceError) Error() string {
	if e.Library != nil {
		return fmt.Sprintf("library instance %s of %s %s",
			e.Library.Module().Identification, e.Instance, ErrNotInWorkspace)
	}
	return fmt.Sprintf("module %s %s", e.Instance, ErrNotInWorkspace)
}

func (e *NotInWorkspaceError) Is(target error) bool { return target == ErrNotInWorkspace }

// ModuleSyncError wraps the failure of one module during Sync.
type ModuleSyncError struct {
	Key    fpd.ModuleSAKey
	Module string
	Err    error
}

func (e *ModuleSyncError) Error() string {
	return fmt.Sprintf("module %s: %v", e.Module, e.Err)
}

func (e *ModuleSyncError) Unwrap() error { return e.Err }

// listErrorFormat renders an aggregated error. A single error is rendered
// as is; several are listed one per line.
func listErrorFormat(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors occurred:", len(errs))
	for _, err := range errs {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func newMultiError() *multierror.Error {
	return &multierror.Error{ErrorFormat: listErrorFormat}
}
