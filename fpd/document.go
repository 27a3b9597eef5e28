package fpd

import (
	"fmt"
	"slices"

	"github.com/albertocavalcante/go-fpd/identity"
	"github.com/albertocavalcante/go-fpd/pcd"
)

// New creates an empty platform description.
func New(header identity.PlatformIdentification) *Document {
	return &Document{Header: header}
}

// Module returns the module instance with the given key, or nil.
func (d *Document) Module(key ModuleSAKey) *ModuleSA {
	for _, m := range d.Modules {
		if m.Key.Equal(key) {
			return m
		}
	}
	return nil
}

// AddModule appends a module instance. Keys must be unique.
func (d *Document) AddModule(m *ModuleSA) error {
	if m == nil {
		return fmt.Errorf("module instance is nil")
	}
	if d.Module(m.Key) != nil {
		return fmt.Errorf("module instance %s already in platform", m.Key)
	}
	d.Modules = append(d.Modules, m)
	return nil
}

// RemoveModule removes the module instance with the given key and returns it.
func (d *Document) RemoveModule(key ModuleSAKey) *ModuleSA {
	for i, m := range d.Modules {
		if m.Key.Equal(key) {
			d.Modules = slices.Delete(d.Modules, i, i+1)
			if len(d.Modules) == 0 {
				d.Modules = nil
			}
			return m
		}
	}
	return nil
}

// DynamicPcd returns the dynamic build table entry for id, or nil.
func (d *Document) DynamicPcd(id pcd.ID) *DynamicPcd {
	for _, p := range d.DynamicPcds {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// AddDynamicPcd adds an entry to the dynamic build table. Entries are unique
// per PCD.
func (d *Document) AddDynamicPcd(p *DynamicPcd) error {
	if d.DynamicPcd(p.ID) != nil {
		return fmt.Errorf("dynamic pcd %s already defined", p.ID)
	}
	d.DynamicPcds = append(d.DynamicPcds, p)
	return nil
}

// RemoveDynamicPcd removes the entry for id. Removing an absent entry is a
// no-op and reports false.
func (d *Document) RemoveDynamicPcd(id pcd.ID) bool {
	for i, p := range d.DynamicPcds {
		if p.ID == id {
			d.DynamicPcds = slices.Delete(d.DynamicPcds, i, i+1)
			if len(d.DynamicPcds) == 0 {
				d.DynamicPcds = nil
			}
			return true
		}
	}
	return false
}

// Pcd returns the build definition for id, or nil.
func (m *ModuleSA) Pcd(id pcd.ID) *PcdData {
	for i := range m.Pcds {
		if m.Pcds[i].ID == id {
			return &m.Pcds[i]
		}
	}
	return nil
}

// PcdIDs lists the attached PCDs in document order.
func (m *ModuleSA) PcdIDs() []pcd.ID {
	ids := make([]pcd.ID, 0, len(m.Pcds))
	for _, p := range m.Pcds {
		ids = append(ids, p.ID)
	}
	return ids
}

// AddPcd attaches a build definition. It reports false if one for the same
// PCD is already attached.
func (m *ModuleSA) AddPcd(p PcdData) bool {
	if m.Pcd(p.ID) != nil {
		return false
	}
	m.Pcds = append(m.Pcds, p)
	return true
}

// RemovePcd detaches the build definition for id.
func (m *ModuleSA) RemovePcd(id pcd.ID) bool {
	for i := range m.Pcds {
		if m.Pcds[i].ID == id {
			m.Pcds = slices.Delete(m.Pcds, i, i+1)
			if len(m.Pcds) == 0 {
				m.Pcds = nil
			}
			return true
		}
	}
	return false
}

// AddLibrary links a library instance. It reports false if already linked.
func (m *ModuleSA) AddLibrary(lib LibraryInstance) bool {
	for _, l := range m.Libraries {
		if l.Equal(lib) {
			return false
		}
	}
	m.Libraries = append(m.Libraries, lib)
	return true
}

// RemoveLibrary unlinks a library instance.
func (m *ModuleSA) RemoveLibrary(lib LibraryInstance) bool {
	for i, l := range m.Libraries {
		if l.Equal(lib) {
			m.Libraries = slices.Delete(m.Libraries, i, i+1)
			if len(m.Libraries) == 0 {
				m.Libraries = nil
			}
			return true
		}
	}
	return false
}
