// Package gofpd keeps the PCD build definitions of an EDK2 platform
// description (FPD) consistent with the PCD usage declared by its modules
// (MSA) and packages (SPD).
//
// # Overview
//
// The package provides three main components:
//
//   - Consumer index: maps every PCD to the module instances that consume it
//   - Synthesizer: attaches PCD build definitions, enforcing one item type
//     per PCD and one value per platform
//   - Reconciliation: recomputes the PCDs of a module instance from its
//     module and library instances, for one module or the whole platform
//
// # Quick Start
//
// Reconciling a platform file against a workspace directory:
//
//	result, err := gofpd.SyncFile(ctx, "Platform.fpd.yaml", "workspace/")
//
// Editing a platform programmatically:
//
//	engine, err := gofpd.NewEngine(doc, registry)
//	err = engine.AddModule(key, libs...)
//	changed, err := engine.RemoveLibraryInstance(key, lib)
//
// # Default Values
//
// The first module instance to introduce a PCD into the platform fixes its
// value. Any later consumer gets that value, even when its own usage or the
// package declaration proposes another default. Removing the last consumer
// forgets the value.
//
// # Thread Safety
//
// Engine is safe for concurrent use. The platform document it edits must not
// be modified by other code while engine operations run.
package gofpd

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/workspace"
)

// Open loads the platform description at fpdPath and the descriptors under
// workspaceDir, and returns an engine over them.
func Open(fpdPath, workspaceDir string, opts ...Option) (*Engine, error) {
	ws, err := workspace.LoadDir(workspaceDir)
	if err != nil {
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	doc, err := fpd.ReadFile(fpdPath)
	if err != nil {
		return nil, err
	}
	return NewEngine(doc, ws, opts...)
}

// SyncFile reconciles every module instance of the platform at fpdPath and
// writes the file back when anything changed. Module failures are returned
// alongside the result, as with Engine.Sync; the changes of the modules that
// succeeded are saved.
func SyncFile(ctx context.Context, fpdPath, workspaceDir string, opts ...Option) (*SyncResult, error) {
	engine, err := Open(fpdPath, workspaceDir, opts...)
	if err != nil {
		return nil, err
	}

	result, syncErr := engine.Sync(ctx)
	if len(result.Changed) == 0 {
		return result, syncErr
	}
	if err := engine.Document().WriteFile(fpdPath); err != nil {
		return result, multierror.Append(newMultiError(), syncErr, err).ErrorOrNil()
	}
	return result, syncErr
}
