// Package pcd models Platform Configuration Database entries: their identity,
// item and datum types, package level declarations and module level usages.
//
// It also provides the value helpers the platform engine relies on, most
// notably [MaxSizeForPointer], whose result is persisted into the platform
// description and consumed by the native build.
package pcd

import (
	"fmt"
	"slices"
	"strings"
)

// ID identifies a PCD by C name and token space GUID C name. Both parts are
// compared as exact strings.
type ID struct {
	CName      string `yaml:"cname" json:"cname"`
	TokenSpace string `yaml:"token_space" json:"token_space"`
}

// String returns "TokenSpace.CName".
func (id ID) String() string {
	return id.TokenSpace + "." + id.CName
}

// Compare orders IDs by token space, then C name.
func (id ID) Compare(other ID) int {
	if c := strings.Compare(id.TokenSpace, other.TokenSpace); c != 0 {
		return c
	}
	return strings.Compare(id.CName, other.CName)
}

// ItemType is the binding time classification of a PCD.
type ItemType int

const (
	ItemTypeUnknown ItemType = iota
	FeatureFlag
	FixedAtBuild
	PatchableInModule
	Dynamic
	DynamicEx
)

var itemTypeNames = map[ItemType]string{
	FeatureFlag:       "FEATURE_FLAG",
	FixedAtBuild:      "FIXED_AT_BUILD",
	PatchableInModule: "PATCHABLE_IN_MODULE",
	Dynamic:           "DYNAMIC",
	DynamicEx:         "DYNAMIC_EX",
}

// ParseItemType parses the upper-case item type spelling used in MSA, SPD
// and FPD documents.
func ParseItemType(s string) (ItemType, error) {
	for t, name := range itemTypeNames {
		if name == s {
			return t, nil
		}
	}
	return ItemTypeUnknown, fmt.Errorf("unknown pcd item type %q", s)
}

func (t ItemType) String() string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ItemType(%d)", int(t))
}

// Valid reports whether t is one of the five item types.
func (t ItemType) Valid() bool {
	_, ok := itemTypeNames[t]
	return ok
}

// IsDynamic reports whether values of this type live in the platform wide
// dynamic PCD table.
func (t ItemType) IsDynamic() bool {
	return t == Dynamic || t == DynamicEx
}

// MarshalText implements encoding.TextMarshaler.
func (t ItemType) MarshalText() ([]byte, error) {
	name, ok := itemTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ItemType) UnmarshalText(b []byte) error {
	parsed, err := ParseItemType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Datum types.
const (
	DatumUint8   = "UINT8"
	DatumUint16  = "UINT16"
	DatumUint32  = "UINT32"
	DatumUint64  = "UINT64"
	DatumBoolean = "BOOLEAN"
	DatumPointer = "VOID*"
)

// Declaration is a PCD as declared by a package (SPD).
type Declaration struct {
	ID
	Token        int64
	DatumType    string
	DefaultValue string

	// ValidUsage lists the item types a consumer may bind this PCD as.
	// An empty list places no restriction.
	ValidUsage []ItemType
}

// Allows reports whether t is a valid usage of the declaration.
func (d Declaration) Allows(t ItemType) bool {
	return len(d.ValidUsage) == 0 || slices.Contains(d.ValidUsage, t)
}

// Usage is a PCD as consumed by a module or library instance (MSA).
type Usage struct {
	ID
	ItemType     ItemType
	DefaultValue string

	// SupArchs restricts the usage to some architectures. Empty means all.
	SupArchs []string
}

// AppliesTo reports whether the usage is relevant for a module instance built
// for archs.
func (u Usage) AppliesTo(archs []string) bool {
	if len(u.SupArchs) == 0 {
		return true
	}
	for _, a := range u.SupArchs {
		if slices.Contains(archs, a) {
			return true
		}
	}
	return false
}

// dynamicResolutionOrder is the order in which a generic DYNAMIC request is
// bound when the PCD has no consumer yet. DYNAMIC appears in its own fallback
// list; this matches the established platform files and is kept as is.
var dynamicResolutionOrder = []ItemType{FixedAtBuild, Dynamic, PatchableInModule, DynamicEx}

// ResolveDynamic binds a generic DYNAMIC request against the declaration's
// valid usages. ok is false when none of the candidates is allowed.
func (d Declaration) ResolveDynamic() (t ItemType, ok bool) {
	return d.resolve(dynamicResolutionOrder)
}

// ResolveDynamicStrict is ResolveDynamic without DYNAMIC in the candidate
// list.
func (d Declaration) ResolveDynamicStrict() (t ItemType, ok bool) {
	return d.resolve([]ItemType{FixedAtBuild, PatchableInModule, DynamicEx})
}

func (d Declaration) resolve(order []ItemType) (ItemType, bool) {
	for _, candidate := range order {
		if d.Allows(candidate) {
			return candidate, true
		}
	}
	return ItemTypeUnknown, false
}
