package gofpd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/identity"
	"github.com/albertocavalcante/go-fpd/pcd"
	"github.com/albertocavalcante/go-fpd/workspace"
)

// PcdChange is a PCD entering or leaving a module instance.
type PcdChange struct {
	ID pcd.ID `json:"id"`

	// Owner names the module or library instance whose usage brings the PCD
	// in. Empty for removals.
	Owner string `json:"owner,omitempty"`
}

// PcdDiff describes what reconciling a module instance changes.
//
// Example usage:
//
//	diff, err := engine.PlanAdjust(key)
//	if err == nil && !diff.IsEmpty() {
//	    fmt.Printf("%d added, %d removed\n", len(diff.Added), len(diff.Removed))
//	}
type PcdDiff struct {
	Key fpd.ModuleSAKey `json:"key"`

	// Added contains PCDs used by the module or its libraries but not
	// attached to the module instance.
	Added []PcdChange `json:"added,omitempty"`

	// Removed contains attached PCDs nothing uses anymore.
	Removed []PcdChange `json:"removed,omitempty"`

	// Unchanged contains attached PCDs that are still used.
	Unchanged []pcd.ID `json:"unchanged,omitempty"`
}

// IsEmpty returns true if reconciling would change nothing.
func (d *PcdDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// TotalChanges returns the number of PCDs added or removed.
func (d *PcdDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed)
}

// plannedAdd is a PCD to attach together with its resolved declaration.
type plannedAdd struct {
	req   PcdRequest
	decl  pcd.Declaration
	owner identity.ModuleIdentification
}

// adjustPlan is the outcome of the read-only phase of a reconciliation.
type adjustPlan struct {
	key    fpd.ModuleSAKey
	module identity.ModuleIdentification

	remove []pcd.ID
	add    []plannedAdd
	keep   []pcd.ID

	// missing reports library instances absent from the workspace. While any
	// is missing no PCD is removed, since its usage is unknown.
	missing *multierror.Error

	// abort is the first failure found while planning additions. Additions
	// planned before it are still applied.
	abort error
}

// plan computes the reconciliation of key without touching the document.
// The workspace is consulted outside the engine lock.
func (e *Engine) plan(key fpd.ModuleSAKey) (*adjustPlan, error) {
	e.mu.Lock()
	e.initIndexLocked()
	m := e.doc.Module(key)
	if m == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrModuleNotInPlatform, key)
	}
	current := m.PcdIDs()
	libs := slices.Clone(m.Libraries)
	e.mu.Unlock()

	module, ok := e.ws.FindModule(key.Module())
	if !ok {
		return nil, &NotInWorkspaceError{Instance: key}
	}

	p := &adjustPlan{key: key, module: module}
	archs := key.Archs()

	// Union of usages, first owner wins.
	type want struct {
		usage pcd.Usage
		owner identity.ModuleIdentification
	}
	var wanted []want
	seen := make(map[pcd.ID]bool)
	collect := func(owner identity.ModuleIdentification) error {
		usages, err := e.ws.ModuleUsages(owner)
		if err != nil {
			return err
		}
		for _, u := range usages {
			if !u.AppliesTo(archs) || seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			wanted = append(wanted, want{usage: u, owner: owner})
		}
		return nil
	}

	if err := collect(module); err != nil {
		return nil, fmt.Errorf("%s: %w", module.DisplayName(), err)
	}
	for _, lib := range libs {
		libModule, ok := e.ws.FindModule(lib.Module())
		if !ok {
			if p.missing == nil {
				p.missing = newMultiError()
			}
			p.missing = multierror.Append(p.missing, &NotInWorkspaceError{Instance: key, Library: &lib})
			continue
		}
		if err := collect(libModule); err != nil {
			return nil, fmt.Errorf("library %s of %s: %w", libModule.DisplayName(), module.DisplayName(), err)
		}
	}

	for _, id := range current {
		switch {
		case seen[id]:
			p.keep = append(p.keep, id)
		case p.missing == nil:
			p.remove = append(p.remove, id)
		default:
			p.keep = append(p.keep, id)
		}
	}

	attached := make(map[pcd.ID]bool, len(current))
	for _, id := range current {
		attached[id] = true
	}
	for _, w := range wanted {
		if attached[w.usage.ID] {
			continue
		}
		decl, err := workspace.FindDeclaration(e.ws, w.owner, w.usage.ID)
		if err != nil {
			p.abort = ownerError(w.owner, err)
			break
		}
		p.add = append(p.add, plannedAdd{req: requestFor(w.usage, decl), decl: decl, owner: w.owner})
	}
	return p, nil
}

// ownerError embeds the name of the module or library whose usage failed.
// Declaration errors already carry it.
func ownerError(owner identity.ModuleIdentification, err error) error {
	var notFound *pcd.DeclarationNotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	return fmt.Errorf("%s: %w", owner.DisplayName(), err)
}

// PlanAdjust reports what AdjustPcd would change for key without changing
// anything. Item type conflicts are only detected by AdjustPcd.
func (e *Engine) PlanAdjust(key fpd.ModuleSAKey) (*PcdDiff, error) {
	p, err := e.plan(key)
	if err != nil {
		return nil, err
	}
	diff := &PcdDiff{Key: key, Unchanged: p.keep}
	for _, id := range p.remove {
		diff.Removed = append(diff.Removed, PcdChange{ID: id})
	}
	for _, a := range p.add {
		diff.Added = append(diff.Added, PcdChange{ID: a.req.ID, Owner: a.owner.DisplayName()})
	}
	errs := multierror.Append(newMultiError(), p.missing)
	if p.abort != nil {
		errs = multierror.Append(errs, p.abort)
	}
	return diff, errs.ErrorOrNil()
}

// AdjustPcd reconciles the PCDs attached to module instance key with the
// usage of the module and its library instances, restricted to the
// instance's architectures.
//
// Attached PCDs no longer used are removed first. Used PCDs not attached are
// then synthesized with GenPcdData semantics; the first failure (a missing
// declaration, an item type conflict, a malformed value) stops further
// additions and is returned. Library instances missing from the workspace
// are reported as *NotInWorkspaceError while reconciliation continues.
//
// changed reports whether the document was modified, even when an error is
// returned.
func (e *Engine) AdjustPcd(key fpd.ModuleSAKey) (changed bool, err error) {
	p, err := e.plan(key)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.doc.Module(key)
	if m == nil {
		return false, fmt.Errorf("%w: %s", ErrModuleNotInPlatform, key)
	}

	for _, id := range p.remove {
		if m.RemovePcd(id) {
			changed = true
		}
		e.removeConsumerLocked(id, key)
	}

	errs := multierror.Append(newMultiError(), p.missing)

	for _, a := range p.add {
		added, err := e.genPcdDataLocked(key, a.req, a.decl)
		if err != nil {
			errs = multierror.Append(errs, ownerError(a.owner, err))
			return changed, errs.ErrorOrNil()
		}
		changed = changed || added
	}
	if p.abort != nil {
		errs = multierror.Append(errs, p.abort)
	}

	if changed {
		e.cfg.log().Debug("module pcds adjusted",
			"module", p.module.DisplayName(),
			"removed", len(p.remove),
			"added", len(p.add))
	}
	return changed, errs.ErrorOrNil()
}
