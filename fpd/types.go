package fpd

import (
	"fmt"

	"github.com/albertocavalcante/go-fpd/identity"
	"github.com/albertocavalcante/go-fpd/pcd"
)

// Document is a platform description.
type Document struct {
	Header identity.PlatformIdentification `yaml:"header"`

	// Modules are the platform's framework modules in document order.
	Modules []*ModuleSA `yaml:"framework_modules,omitempty"`

	// DynamicPcds is the platform wide dynamic PCD build table.
	DynamicPcds []*DynamicPcd `yaml:"dynamic_pcd_build_definitions,omitempty"`
}

// ModuleSA is a module instantiated in the platform.
type ModuleSA struct {
	Key          ModuleSAKey       `yaml:"key"`
	Libraries    []LibraryInstance `yaml:"libraries,omitempty"`
	Pcds         []PcdData         `yaml:"pcd_build_definitions,omitempty"`
	BuildOptions []BuildOption     `yaml:"build_options,omitempty"`
	FvBinding    string            `yaml:"fv_binding,omitempty"`
	ForceDebug   bool              `yaml:"force_debug,omitempty"`
}

// BuildOption is a per-module tool flag override.
type BuildOption struct {
	ToolChainFamily string `yaml:"tool_chain_family,omitempty"`
	Target          string `yaml:"target,omitempty"`
	Arch            string `yaml:"arch,omitempty"`
	ToolCode        string `yaml:"tool_code,omitempty"`
	Value           string `yaml:"value"`
}

// PcdData is a PCD build definition attached to a module instance.
type PcdData struct {
	pcd.ID       `yaml:",inline"`
	Token        int64        `yaml:"token"`
	DatumType    string       `yaml:"datum_type"`
	ItemType     pcd.ItemType `yaml:"item_type"`
	Value        string       `yaml:"value"`
	MaxDatumSize int          `yaml:"max_datum_size"`
}

// DynamicPcd is an entry of the platform wide dynamic PCD build table.
type DynamicPcd struct {
	pcd.ID       `yaml:",inline"`
	Token        int64     `yaml:"token"`
	DatumType    string    `yaml:"datum_type"`
	MaxDatumSize int       `yaml:"max_datum_size"`
	SkuInfo      []SkuInfo `yaml:"sku_info"`
}

// SkuKind tells which value form a SkuInfo carries.
type SkuKind int

const (
	SkuEmpty SkuKind = iota
	SkuVariable
	SkuVpd
	SkuValue
)

// SkuInfo is the value of a dynamic PCD for one SKU. A record carries exactly
// one of a HII variable, a VPD offset or a literal value.
type SkuInfo struct {
	SkuID           int    `yaml:"sku_id"`
	VariableName    string `yaml:"variable_name,omitempty"`
	VariableGUID    string `yaml:"variable_guid,omitempty"`
	VariableOffset  string `yaml:"variable_offset,omitempty"`
	HiiDefaultValue string `yaml:"hii_default_value,omitempty"`
	VpdOffset       string `yaml:"vpd_offset,omitempty"`
	Value           string `yaml:"value,omitempty"`
}

// Kind reports the value form, preferring a variable, then a VPD offset,
// then a literal value.
func (s SkuInfo) Kind() SkuKind {
	switch {
	case s.VariableName != "" || s.VariableGUID != "" || s.VariableOffset != "":
		return SkuVariable
	case s.VpdOffset != "":
		return SkuVpd
	case s.Value != "":
		return SkuValue
	default:
		return SkuEmpty
	}
}

// Validate checks that the record holds exactly one value form.
func (s SkuInfo) Validate() error {
	if s.SkuID < 0 {
		return fmt.Errorf("sku %d: id must be non-negative", s.SkuID)
	}
	switch s.Kind() {
	case SkuEmpty:
		return fmt.Errorf("sku %d: no value", s.SkuID)
	case SkuVariable:
		if s.VariableName == "" || s.VariableGUID == "" || s.VariableOffset == "" {
			return fmt.Errorf("sku %d: variable name, guid and offset must all be set", s.SkuID)
		}
		if s.VpdOffset != "" || s.Value != "" {
			return fmt.Errorf("sku %d: variable value combined with another value form", s.SkuID)
		}
	case SkuVpd:
		if s.Value != "" {
			return fmt.Errorf("sku %d: vpd offset combined with a literal value", s.SkuID)
		}
	}
	return nil
}

// Sku returns the record for skuID.
func (d *DynamicPcd) Sku(skuID int) (SkuInfo, bool) {
	for _, s := range d.SkuInfo {
		if s.SkuID == skuID {
			return s, true
		}
	}
	return SkuInfo{}, false
}

// SetSku adds or replaces the record for s.SkuID.
func (d *DynamicPcd) SetSku(s SkuInfo) {
	for i := range d.SkuInfo {
		if d.SkuInfo[i].SkuID == s.SkuID {
			d.SkuInfo[i] = s
			return
		}
	}
	d.SkuInfo = append(d.SkuInfo, s)
}

// Validate checks SKU 0 exists and every record is well formed.
func (d *DynamicPcd) Validate() error {
	if _, ok := d.Sku(0); !ok {
		return fmt.Errorf("dynamic pcd %s: sku 0 missing", d.ID)
	}
	seen := make(map[int]bool, len(d.SkuInfo))
	for _, s := range d.SkuInfo {
		if seen[s.SkuID] {
			return fmt.Errorf("dynamic pcd %s: duplicate sku %d", d.ID, s.SkuID)
		}
		seen[s.SkuID] = true
		if err := s.Validate(); err != nil {
			return fmt.Errorf("dynamic pcd %s: %w", d.ID, err)
		}
	}
	return nil
}
