package gofpd

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/pcd"
	"github.com/albertocavalcante/go-fpd/workspace"
)

func TestAdjustPcdReconciliationDiff(t *testing.T) {
	e := newTestEngine(t)
	key := keyOf(driverA, "X64")
	if err := e.AddModule(key, libOf(libOld)); err != nil {
		t.Fatalf("AddModule() error = %v", err)
	}
	m := e.Document().Module(key)
	if diff := cmp.Diff([]pcd.ID{pcdB, pcdA}, m.PcdIDs()); diff != "" {
		t.Fatalf("initial pcds mismatch (-want +got):\n%s", diff)
	}
	before := *m.Pcd(pcdB)

	// Swap the library instance behind the engine's back.
	m.Libraries = []fpd.LibraryInstance{libOf(libNew)}

	plan, err := e.PlanAdjust(key)
	if err != nil {
		t.Fatalf("PlanAdjust() error = %v", err)
	}
	wantPlan := &PcdDiff{
		Key:       key,
		Added:     []PcdChange{{ID: pcdC, Owner: "NewLib"}},
		Removed:   []PcdChange{{ID: pcdA}},
		Unchanged: []pcd.ID{pcdB},
	}
	if diff := cmp.Diff(wantPlan, plan); diff != "" {
		t.Errorf("PlanAdjust() mismatch (-want +got):\n%s", diff)
	}
	if plan.TotalChanges() != 2 || plan.IsEmpty() {
		t.Errorf("TotalChanges() = %d, IsEmpty() = %v", plan.TotalChanges(), plan.IsEmpty())
	}
	if m.Pcd(pcdA) == nil {
		t.Fatal("PlanAdjust() modified the document")
	}

	changed, err := e.AdjustPcd(key)
	if err != nil {
		t.Fatalf("AdjustPcd() error = %v", err)
	}
	if !changed {
		t.Error("AdjustPcd() changed = false, want true")
	}
	if diff := cmp.Diff([]pcd.ID{pcdB, pcdC}, m.PcdIDs()); diff != "" {
		t.Errorf("pcds after adjust mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, *m.Pcd(pcdB)); diff != "" {
		t.Errorf("unchanged pcd was rewritten (-want +got):\n%s", diff)
	}
	if got := m.Pcd(pcdC).Value; got != "0x42" {
		t.Errorf("library usage default = %q, want 0x42", got)
	}
	if len(e.Consumers(pcdA)) != 0 {
		t.Error("stale pcd still has consumers")
	}
	mustConsistent(t, e)

	changed, err = e.AdjustPcd(key)
	if err != nil || changed {
		t.Errorf("second AdjustPcd() = %v, %v; want false, nil", changed, err)
	}
}

func TestAdjustPcdArchFilter(t *testing.T) {
	e := newTestEngine(t)
	x64 := keyOf(driverA, "X64")
	if err := e.AddModule(x64); err != nil {
		t.Fatal(err)
	}
	if e.Document().Module(x64).Pcd(ia32Only) != nil {
		t.Error("IA32 only pcd attached to an X64 instance")
	}

	ia32, changed, err := e.SetArchs(x64, []string{"IA32", "X64"})
	if err != nil || !changed {
		t.Fatalf("SetArchs() = %v, %v", changed, err)
	}
	if ia32.Arch != "IA32 X64" {
		t.Errorf("new key arch = %q", ia32.Arch)
	}
	if e.Document().Module(x64) != nil {
		t.Error("old key still present")
	}
	m := e.Document().Module(ia32)
	if m == nil || m.Pcd(ia32Only) == nil {
		t.Fatal("IA32 only pcd not attached after SetArchs")
	}
	for _, c := range e.Consumers(pcdB) {
		if !c.Key.Equal(ia32) {
			t.Errorf("consumer record not rekeyed: %s", c.Key)
		}
	}
	mustConsistent(t, e)

	if _, _, err := e.SetArchs(x64, []string{"EBC"}); !errors.Is(err, ErrModuleNotInPlatform) {
		t.Errorf("SetArchs() on stale key error = %v", err)
	}
	if _, changed, err := e.SetArchs(ia32, []string{"IA32", "X64"}); err != nil || changed {
		t.Errorf("SetArchs() with same archs = %v, %v", changed, err)
	}
}

func TestAdjustPcdMissingLibrary(t *testing.T) {
	e := newTestEngine(t)
	key := keyOf(driverA, "X64")
	if err := e.AddModule(key, libOf(libOld)); err != nil {
		t.Fatal(err)
	}
	m := e.Document().Module(key)
	m.Libraries = []fpd.LibraryInstance{libOf(ghost), libOf(libNew)}

	changed, err := e.AdjustPcd(key)
	if !errors.Is(err, ErrNotInWorkspace) {
		t.Fatalf("AdjustPcd() error = %v, want ErrNotInWorkspace", err)
	}
	var missing *NotInWorkspaceError
	if !errors.As(err, &missing) || missing.Library == nil || missing.Library.ModuleGUID != ghostGUID {
		t.Errorf("error does not name the missing library: %v", err)
	}
	if !changed {
		t.Error("additions from known libraries were not applied")
	}
	// Nothing is removed while a library's usage is unknown.
	if diff := cmp.Diff([]pcd.ID{pcdB, pcdA, pcdC}, m.PcdIDs()); diff != "" {
		t.Errorf("pcds mismatch (-want +got):\n%s", diff)
	}
	mustConsistent(t, e)
}

func TestAdjustPcdModuleNotInWorkspace(t *testing.T) {
	doc := testDocument()
	key := keyOf(ghost, "X64")
	_ = doc.AddModule(&fpd.ModuleSA{Key: key})
	e, err := NewEngine(doc, testRegistry())
	if err != nil {
		t.Fatal(err)
	}

	_, err = e.AdjustPcd(key)
	var missing *NotInWorkspaceError
	if !errors.As(err, &missing) || missing.Library != nil {
		t.Fatalf("AdjustPcd() error = %v, want module *NotInWorkspaceError", err)
	}

	if _, err := e.AdjustPcd(keyOf(driverA, "X64")); !errors.Is(err, ErrModuleNotInPlatform) {
		t.Errorf("AdjustPcd() error = %v, want ErrModuleNotInPlatform", err)
	}
}

func TestAdjustPcdAbortsOnFirstAddFailure(t *testing.T) {
	r := testRegistry()
	// The main module's usages come first: pcdB is attached, the undeclared
	// PCD aborts, pcdC is never reached.
	r.AddModule(driverA, nil, []pcd.Usage{
		{ID: pcdB, ItemType: pcd.FixedAtBuild},
		{ID: undeclared, ItemType: pcd.FixedAtBuild},
		{ID: pcdC, ItemType: pcd.FixedAtBuild},
	})
	doc := testDocument()
	key := keyOf(driverA, "X64")
	_ = doc.AddModule(&fpd.ModuleSA{Key: key})
	e, err := NewEngine(doc, r)
	if err != nil {
		t.Fatal(err)
	}

	changed, err := e.AdjustPcd(key)
	if !errors.Is(err, pcd.ErrDeclarationNotFound) {
		t.Fatalf("AdjustPcd() error = %v, want ErrDeclarationNotFound", err)
	}
	var notFound *pcd.DeclarationNotFoundError
	if !errors.As(err, &notFound) || notFound.Module != "DriverA" || notFound.PCD != undeclared {
		t.Errorf("error = %v", err)
	}
	if !changed {
		t.Error("changed = false, want true")
	}
	if diff := cmp.Diff([]pcd.ID{pcdB}, doc.Module(key).PcdIDs()); diff != "" {
		t.Errorf("pcds mismatch (-want +got):\n%s", diff)
	}
	mustConsistent(t, e)
}

func TestAdjustPcdConflictNamesLibrary(t *testing.T) {
	e := newTestEngine(t)
	if err := e.AddModule(keyOf(driverB, "X64")); err != nil {
		t.Fatal(err)
	}

	r := e.ws.(*workspace.Registry)
	r.AddModule(libOld, nil, []pcd.Usage{{ID: mask, ItemType: pcd.FixedAtBuild}})

	err := e.AddModule(keyOf(driverA, "X64"), libOf(libOld))
	if !errors.Is(err, pcd.ErrItemTypeConflict) {
		t.Fatalf("AddModule() error = %v, want ErrItemTypeConflict", err)
	}
	if msg := err.Error(); !containsAll(msg, "OldLib", "DriverB", "DriverA") {
		t.Errorf("error %q should name the library and both modules", msg)
	}
	// The instance stays, without the conflicting pcd.
	m := e.Document().Module(keyOf(driverA, "X64"))
	if m == nil || m.Pcd(mask) != nil {
		t.Errorf("module = %+v", m)
	}
	mustConsistent(t, e)
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
