// Package workspace provides the surface area lookup service the platform
// engine consults: which PCDs a module uses, which packages it depends on,
// what type it is, and what each package declares.
//
// [Registry] is an in-memory implementation safe for concurrent reads. It is
// filled programmatically or from a directory of descriptors with [LoadDir].
package workspace

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/albertocavalcante/go-fpd/identity"
	"github.com/albertocavalcante/go-fpd/pcd"
)

// Sentinel errors for lookup failures.
var (
	// ErrModuleNotFound indicates the module is not in the workspace.
	ErrModuleNotFound = errors.New("module not found in workspace")

	// ErrPackageNotFound indicates the package is not in the workspace.
	ErrPackageNotFound = errors.New("package not found in workspace")
)

// Lookup is the read-only view of a workspace used by the platform engine.
// Implementations must be safe for concurrent use.
type Lookup interface {
	// FindModule returns the fully populated identity of the module matching
	// m (GUID and version, package GUID and version).
	FindModule(m identity.ModuleIdentification) (identity.ModuleIdentification, bool)

	// ModuleUsages returns the PCDs a module declares it uses.
	ModuleUsages(m identity.ModuleIdentification) ([]pcd.Usage, error)

	// DependentPackages returns the packages a module depends on.
	DependentPackages(m identity.ModuleIdentification) ([]identity.PackageIdentification, error)

	// ModuleType returns the module type, or "" if unknown.
	ModuleType(m identity.ModuleIdentification) string

	// PackageDeclarations returns the PCDs a package declares.
	PackageDeclarations(p identity.PackageIdentification) ([]pcd.Declaration, error)
}

type packageEntry struct {
	id    identity.PackageIdentification
	decls []pcd.Declaration
}

type moduleEntry struct {
	id     identity.ModuleIdentification
	deps   []identity.PackageIdentification
	usages []pcd.Usage
}

// Registry is an in-memory Lookup.
type Registry struct {
	mu       sync.RWMutex
	packages map[string][]*packageEntry // keyed by identity hash key
	modules  map[string][]*moduleEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		packages: make(map[string][]*packageEntry),
		modules:  make(map[string][]*moduleEntry),
	}
}

// AddPackage registers a package and its PCD declarations. Registering an
// equal package again replaces it.
func (r *Registry) AddPackage(p identity.PackageIdentification, decls []pcd.Declaration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &packageEntry{id: p, decls: slices.Clone(decls)}
	key := p.HashKey()
	for i, existing := range r.packages[key] {
		if existing.id.Identification == p.Identification {
			r.packages[key][i] = entry
			return
		}
	}
	r.packages[key] = append(r.packages[key], entry)
}

// AddModule registers a module with its package dependencies and PCD usages.
// Registering the same module again replaces it.
func (r *Registry) AddModule(m identity.ModuleIdentification, deps []identity.PackageIdentification, usages []pcd.Usage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &moduleEntry{id: m, deps: slices.Clone(deps), usages: slices.Clone(usages)}
	key := m.HashKey()
	for i, existing := range r.modules[key] {
		if existing.id.Identification == m.Identification && existing.id.Package.Identification == m.Package.Identification {
			r.modules[key][i] = entry
			return
		}
	}
	r.modules[key] = append(r.modules[key], entry)
}

func (r *Registry) module(m identity.ModuleIdentification) (*moduleEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.modules[m.HashKey()] {
		if e.id.Equal(m) {
			return e, true
		}
	}
	return nil, false
}

func (r *Registry) pkg(p identity.PackageIdentification) (*packageEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.packages[p.HashKey()] {
		if e.id.Equal(p) {
			return e, true
		}
	}
	return nil, false
}

// FindModule implements Lookup.
func (r *Registry) FindModule(m identity.ModuleIdentification) (identity.ModuleIdentification, bool) {
	e, ok := r.module(m)
	if !ok {
		return identity.ModuleIdentification{}, false
	}
	return e.id, true
}

// FindPackage returns the registered package matching p.
func (r *Registry) FindPackage(p identity.PackageIdentification) (identity.PackageIdentification, bool) {
	e, ok := r.pkg(p)
	if !ok {
		return identity.PackageIdentification{}, false
	}
	return e.id, true
}

// ModuleUsages implements Lookup.
func (r *Registry) ModuleUsages(m identity.ModuleIdentification) ([]pcd.Usage, error) {
	e, ok := r.module(m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, m)
	}
	return slices.Clone(e.usages), nil
}

// DependentPackages implements Lookup.
func (r *Registry) DependentPackages(m identity.ModuleIdentification) ([]identity.PackageIdentification, error) {
	e, ok := r.module(m)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, m)
	}
	return slices.Clone(e.deps), nil
}

// ModuleType implements Lookup.
func (r *Registry) ModuleType(m identity.ModuleIdentification) string {
	e, ok := r.module(m)
	if !ok {
		return ""
	}
	return e.id.ModuleType
}

// PackageDeclarations implements Lookup.
func (r *Registry) PackageDeclarations(p identity.PackageIdentification) ([]pcd.Declaration, error) {
	e, ok := r.pkg(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, p)
	}
	return slices.Clone(e.decls), nil
}

// ModuleLocation implements identity.Resolver.
func (r *Registry) ModuleLocation(m identity.ModuleIdentification) (string, string, bool) {
	e, ok := r.module(m)
	if !ok {
		return "", "", false
	}
	return e.id.Path, e.id.ModuleType, true
}

// Modules lists every registered module, libraries included.
func (r *Registry) Modules() []identity.ModuleIdentification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []identity.ModuleIdentification
	for _, entries := range r.modules {
		for _, e := range entries {
			out = append(out, e.id)
		}
	}
	slices.SortFunc(out, func(a, b identity.ModuleIdentification) int {
		if a.Name != b.Name {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.GUID), strings.ToLower(b.GUID))
	})
	return out
}

// FindDeclaration searches the dependency packages of m, then m's own
// package, for the declaration of id. Packages missing from the workspace are
// skipped. A *pcd.DeclarationNotFoundError is returned when no package
// declares id.
func FindDeclaration(l Lookup, m identity.ModuleIdentification, id pcd.ID) (pcd.Declaration, error) {
	deps, err := l.DependentPackages(m)
	if err != nil {
		return pcd.Declaration{}, err
	}
	if !slices.ContainsFunc(deps, m.Package.Equal) {
		deps = append(deps, m.Package)
	}
	for _, p := range deps {
		decls, err := l.PackageDeclarations(p)
		if err != nil {
			continue
		}
		for _, d := range decls {
			if d.ID == id {
				return d, nil
			}
		}
	}
	return pcd.Declaration{}, &pcd.DeclarationNotFoundError{PCD: id, Module: m.DisplayName()}
}
