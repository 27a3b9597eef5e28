package gofpd

import (
	"fmt"

	"github.com/albertocavalcante/go-fpd/fpd"
)

// AddModule adds a module instance built for the key's architectures,
// links libs to it and attaches the PCDs the module and its libraries use.
//
// The instance stays in the platform when attaching fails; the returned
// error says why its PCDs are incomplete.
func (e *Engine) AddModule(key fpd.ModuleSAKey, libs ...fpd.LibraryInstance) error {
	if _, ok := e.ws.FindModule(key.Module()); !ok {
		return &NotInWorkspaceError{Instance: key}
	}

	e.mu.Lock()
	e.initIndexLocked()
	if e.doc.Module(key) != nil {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrModuleInPlatform, key)
	}
	m := &fpd.ModuleSA{Key: key}
	for _, lib := range libs {
		m.AddLibrary(lib)
	}
	if err := e.doc.AddModule(m); err != nil {
		e.mu.Unlock()
		return err
	}
	libCount := len(m.Libraries)
	e.mu.Unlock()

	e.cfg.log().Info("module added", "module", e.describe(key), "libraries", libCount)
	_, err := e.AdjustPcd(key)
	return err
}

// RemoveModule removes a module instance and drops it from the consumers of
// every PCD attached to it.
func (e *Engine) RemoveModule(key fpd.ModuleSAKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initIndexLocked()

	m := e.doc.RemoveModule(key)
	if m == nil {
		return fmt.Errorf("%w: %s", ErrModuleNotInPlatform, key)
	}
	for _, p := range m.Pcds {
		e.removeConsumerLocked(p.ID, m.Key)
	}
	e.cfg.log().Info("module removed", "module", e.describe(key), "pcds", len(m.Pcds))
	return nil
}

// AddLibraryInstance links lib to the module instance key and reconciles its
// PCDs. It reports whether the document changed.
func (e *Engine) AddLibraryInstance(key fpd.ModuleSAKey, lib fpd.LibraryInstance) (bool, error) {
	return e.editLibraries(key, func(m *fpd.ModuleSA) bool { return m.AddLibrary(lib) })
}

// RemoveLibraryInstance unlinks lib from the module instance key and
// reconciles its PCDs. It reports whether the document changed.
func (e *Engine) RemoveLibraryInstance(key fpd.ModuleSAKey, lib fpd.LibraryInstance) (bool, error) {
	return e.editLibraries(key, func(m *fpd.ModuleSA) bool { return m.RemoveLibrary(lib) })
}

func (e *Engine) editLibraries(key fpd.ModuleSAKey, edit func(*fpd.ModuleSA) bool) (bool, error) {
	e.mu.Lock()
	e.initIndexLocked()
	m := e.doc.Module(key)
	if m == nil {
		e.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrModuleNotInPlatform, key)
	}
	edited := edit(m)
	e.mu.Unlock()

	if !edited {
		return false, nil
	}
	_, err := e.AdjustPcd(key)
	return true, err
}

// SetArchs moves the module instance key to a new architecture list and
// reconciles its PCDs against it. It returns the new key.
func (e *Engine) SetArchs(key fpd.ModuleSAKey, archs []string) (fpd.ModuleSAKey, bool, error) {
	newKey := key.WithArchs(archs)
	if newKey.Equal(key) {
		return key, false, nil
	}

	e.mu.Lock()
	e.initIndexLocked()
	m := e.doc.Module(key)
	if m == nil {
		e.mu.Unlock()
		return key, false, fmt.Errorf("%w: %s", ErrModuleNotInPlatform, key)
	}
	if e.doc.Module(newKey) != nil {
		e.mu.Unlock()
		return key, false, fmt.Errorf("%w: %s", ErrModuleInPlatform, newKey)
	}
	e.rekeyLocked(m.PcdIDs(), m.Key, newKey)
	m.Key = newKey
	e.mu.Unlock()

	e.cfg.log().Debug("module archs changed", "module", e.describe(newKey), "archs", newKey.Arch)
	_, err := e.AdjustPcd(newKey)
	return newKey, true, err
}
