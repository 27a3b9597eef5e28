// Package identity provides the identifiers used for EDK2 modules, packages
// and platforms inside a workspace.
//
// Identities are compared by GUID. The comparison is case-insensitive and a
// blank version on either side acts as a wildcard. Because the hash key is
// derived from the GUID alone, two identities with equal GUIDs and different
// versions share a [Identification.HashKey] while still being unequal; any
// container that cares about versions must fall back to [Identification.Equal].
//
// # Types
//
//   - [Identification]: the common name/GUID/version triple
//   - [ModuleIdentification]: a module with its owning package and type
//   - [PackageIdentification]: a package and its declaration file
//   - [PlatformIdentification]: a platform and its description file
//
// Module locations are not looked up behind the caller's back. Use
// [ModuleIdentification.Resolve] to obtain a fully populated copy.
package identity

import (
	"fmt"
	"regexp"
	"strings"
)

// Identification is the name/GUID/version triple shared by every identity.
type Identification struct {
	Name    string `yaml:"name,omitempty"`
	GUID    string `yaml:"guid"`
	Version string `yaml:"version,omitempty"`
}

var guidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidateGUID checks that s is a registry format GUID (8-4-4-4-12 hex digits).
func ValidateGUID(s string) error {
	if s == "" {
		return fmt.Errorf("guid cannot be empty")
	}
	if !guidRegex.MatchString(s) {
		return fmt.Errorf("invalid guid %q: must match 8-4-4-4-12 hex digits", s)
	}
	return nil
}

// New creates an Identification after validating the GUID.
func New(name, guid, version string) (Identification, error) {
	if err := ValidateGUID(guid); err != nil {
		return Identification{}, err
	}
	return Identification{Name: name, GUID: guid, Version: version}, nil
}

// Equal reports whether two identities refer to the same entity.
func (id Identification) Equal(other Identification) bool {
	if !strings.EqualFold(id.GUID, other.GUID) {
		return false
	}
	return VersionMatches(id.Version, other.Version)
}

// HashKey returns the lower-cased GUID. Equal identities always share a
// hash key; the converse does not hold.
func (id Identification) HashKey() string {
	return strings.ToLower(id.GUID)
}

// String returns "name guid version", omitting blank parts.
func (id Identification) String() string {
	parts := make([]string, 0, 3)
	if id.Name != "" {
		parts = append(parts, id.Name)
	}
	parts = append(parts, id.GUID)
	if v := strings.TrimSpace(id.Version); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}

// VersionMatches treats a blank version on either side as a wildcard.
func VersionMatches(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return true
	}
	return a == b
}

// PackageIdentification identifies a package and the declaration file it was
// loaded from.
type PackageIdentification struct {
	Identification `yaml:",inline"`

	// Path is the package declaration file, empty when unknown.
	Path string `yaml:"path,omitempty"`
}

// Equal compares packages by identity only.
func (p PackageIdentification) Equal(other PackageIdentification) bool {
	return p.Identification.Equal(other.Identification)
}

// PlatformIdentification identifies a platform description.
type PlatformIdentification struct {
	Identification `yaml:",inline"`
	Path           string `yaml:"path,omitempty"`
}

// Equal compares platforms by identity only.
func (p PlatformIdentification) Equal(other PlatformIdentification) bool {
	return p.Identification.Equal(other.Identification)
}
