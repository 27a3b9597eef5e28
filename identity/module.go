package identity

import "fmt"

// Module types recognised by the build. The list is not closed; descriptors
// may carry any string and it is passed through untouched.
const (
	ModuleTypeBase        = "BASE"
	ModuleTypeSEC         = "SEC"
	ModuleTypePEICore     = "PEI_CORE"
	ModuleTypePEIM        = "PEIM"
	ModuleTypeDXECore     = "DXE_CORE"
	ModuleTypeDXEDriver   = "DXE_DRIVER"
	ModuleTypeUEFIDriver  = "UEFI_DRIVER"
	ModuleTypeApplication = "UEFI_APPLICATION"
)

// ModuleIdentification identifies a module together with its owning package.
type ModuleIdentification struct {
	Identification `yaml:",inline"`

	// Package is the package the module belongs to.
	Package PackageIdentification `yaml:"package"`

	// ModuleType is the MSA module type, e.g. "DXE_DRIVER".
	ModuleType string `yaml:"type,omitempty"`

	// Library is true for library instances.
	Library bool `yaml:"library,omitempty"`

	// Path is the module description file. It is empty until Resolve has
	// been called against a Resolver that knows the module.
	Path string `yaml:"path,omitempty"`
}

// Equal compares module and package identities.
func (m ModuleIdentification) Equal(other ModuleIdentification) bool {
	return m.Identification.Equal(other.Identification) && m.Package.Equal(other.Package)
}

// Resolver supplies the location and type of a module. It is implemented by
// the workspace registry.
type Resolver interface {
	ModuleLocation(m ModuleIdentification) (path, moduleType string, ok bool)
}

// Resolve returns a copy of m with Path and ModuleType filled from r. The
// receiver is not modified. Resolving an already resolved identity is a no-op.
func (m ModuleIdentification) Resolve(r Resolver) (ModuleIdentification, error) {
	if m.Path != "" && m.ModuleType != "" {
		return m, nil
	}
	path, moduleType, ok := r.ModuleLocation(m)
	if !ok {
		return m, fmt.Errorf("module %s not found in workspace", m)
	}
	resolved := m
	if resolved.Path == "" {
		resolved.Path = path
	}
	if resolved.ModuleType == "" {
		resolved.ModuleType = moduleType
	}
	return resolved, nil
}

// DisplayName returns the module name, falling back to the GUID.
func (m ModuleIdentification) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.GUID
}
