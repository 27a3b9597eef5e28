package fpd

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-fpd/identity"
)

// nullVersion is how a blank version is spelled in the legacy five token key.
const nullVersion = "null"

// ModuleSAKey identifies a module instance inside a platform: the module, its
// package and the architectures it is built for. Arch holds the architecture
// list joined by single spaces; its order is significant.
//
// Keys are persisted in the legacy five token text form, see String.
type ModuleSAKey struct {
	ModuleGUID     string
	ModuleVersion  string
	PackageGUID    string
	PackageVersion string
	Arch           string
}

// NewModuleSAKey builds the key of module m built for archs.
func NewModuleSAKey(m identity.ModuleIdentification, archs []string) ModuleSAKey {
	return ModuleSAKey{
		ModuleGUID:     m.GUID,
		ModuleVersion:  m.Version,
		PackageGUID:    m.Package.GUID,
		PackageVersion: m.Package.Version,
		Arch:           strings.Join(archs, " "),
	}
}

// ParseModuleSAKey parses the legacy "moduleGuid moduleVersion packageGuid
// packageVersion arch..." form produced by String.
func ParseModuleSAKey(s string) (ModuleSAKey, error) {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return ModuleSAKey{}, fmt.Errorf("invalid module instance key %q: want at least 4 fields, got %d", s, len(fields))
	}
	return ModuleSAKey{
		ModuleGUID:     fields[0],
		ModuleVersion:  fromNull(fields[1]),
		PackageGUID:    fields[2],
		PackageVersion: fromNull(fields[3]),
		Arch:           strings.Join(fields[4:], " "),
	}, nil
}

// String returns the legacy five token form. Blank versions are written as
// "null".
func (k ModuleSAKey) String() string {
	s := k.ModuleGUID + " " + toNull(k.ModuleVersion) + " " + k.PackageGUID + " " + toNull(k.PackageVersion)
	if k.Arch != "" {
		s += " " + k.Arch
	}
	return s
}

// MarshalText implements encoding.TextMarshaler using the legacy form.
func (k ModuleSAKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ModuleSAKey) UnmarshalText(b []byte) error {
	parsed, err := ParseModuleSAKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Archs splits Arch into its architectures.
func (k ModuleSAKey) Archs() []string {
	return strings.Fields(k.Arch)
}

// WithArchs returns a copy of k built for archs.
func (k ModuleSAKey) WithArchs(archs []string) ModuleSAKey {
	k.Arch = strings.Join(archs, " ")
	return k
}

// Module returns the module part of the key as an identity.
func (k ModuleSAKey) Module() identity.ModuleIdentification {
	return identity.ModuleIdentification{
		Identification: identity.Identification{GUID: k.ModuleGUID, Version: k.ModuleVersion},
		Package: identity.PackageIdentification{
			Identification: identity.Identification{GUID: k.PackageGUID, Version: k.PackageVersion},
		},
	}
}

// Equal compares GUIDs case-insensitively and everything else exactly.
func (k ModuleSAKey) Equal(other ModuleSAKey) bool {
	return strings.EqualFold(k.ModuleGUID, other.ModuleGUID) &&
		k.ModuleVersion == other.ModuleVersion &&
		strings.EqualFold(k.PackageGUID, other.PackageGUID) &&
		k.PackageVersion == other.PackageVersion &&
		k.Arch == other.Arch
}

// SameInstance compares module GUID, package GUID and arch list, ignoring
// versions.
func (k ModuleSAKey) SameInstance(other ModuleSAKey) bool {
	return strings.EqualFold(k.ModuleGUID, other.ModuleGUID) &&
		strings.EqualFold(k.PackageGUID, other.PackageGUID) &&
		k.Arch == other.Arch
}

func toNull(v string) string {
	if strings.TrimSpace(v) == "" {
		return nullVersion
	}
	return v
}

func fromNull(v string) string {
	if v == nullVersion {
		return ""
	}
	return v
}

// LibraryInstance references a library module linked into a module instance.
type LibraryInstance struct {
	ModuleGUID     string `yaml:"module_guid"`
	ModuleVersion  string `yaml:"module_version,omitempty"`
	PackageGUID    string `yaml:"package_guid"`
	PackageVersion string `yaml:"package_version,omitempty"`
}

// NewLibraryInstance builds a reference to library module m.
func NewLibraryInstance(m identity.ModuleIdentification) LibraryInstance {
	return LibraryInstance{
		ModuleGUID:     m.GUID,
		ModuleVersion:  m.Version,
		PackageGUID:    m.Package.GUID,
		PackageVersion: m.Package.Version,
	}
}

// Module returns the library as a module identity.
func (l LibraryInstance) Module() identity.ModuleIdentification {
	return ModuleSAKey{
		ModuleGUID:     l.ModuleGUID,
		ModuleVersion:  l.ModuleVersion,
		PackageGUID:    l.PackageGUID,
		PackageVersion: l.PackageVersion,
	}.Module()
}

// Equal compares two library references.
func (l LibraryInstance) Equal(other LibraryInstance) bool {
	return l.Module().Equal(other.Module())
}
