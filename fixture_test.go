package gofpd

import (
	"testing"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/identity"
	"github.com/albertocavalcante/go-fpd/pcd"
	"github.com/albertocavalcante/go-fpd/workspace"
)

const (
	mdePkgGUID  = "5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC"
	driverAGUID = "1A1E4886-9517-440E-9FDE-3BE44CEE2136"
	driverBGUID = "C1E6B4C5-1A87-4F7D-B27D-9C6B5A0A2F01"
	driverCGUID = "7B4A9F38-2E1C-4D5B-8A6F-3C2D1E0F9A8B"
	brokenGUID  = "9E1F2A3B-4C5D-4E6F-8A9B-0C1D2E3F4A5B"
	libOldGUID  = "27D67720-EA68-48AE-93DA-A3A074C90E30"
	libNewGUID  = "3DDC3B12-99EA-4364-B315-6310A2050BE5"
	ghostGUID   = "00000000-0000-0000-0000-00000000DEAD"
)

const tokenSpace = "gEfiMdePkgTokenSpaceGuid"

var (
	pcdA       = pcd.ID{CName: "PcdA", TokenSpace: tokenSpace}
	pcdB       = pcd.ID{CName: "PcdB", TokenSpace: tokenSpace}
	pcdC       = pcd.ID{CName: "PcdC", TokenSpace: tokenSpace}
	mask       = pcd.ID{CName: "PcdDebugPropertyMask", TokenSpace: tokenSpace}
	flashBase  = pcd.ID{CName: "PcdFlashNvStorageBase", TokenSpace: tokenSpace}
	ia32Only   = pcd.ID{CName: "PcdIa32Only", TokenSpace: tokenSpace}
	banner     = pcd.ID{CName: "PcdFirmwareVendor", TokenSpace: tokenSpace}
	undeclared = pcd.ID{CName: "PcdNobodyDeclares", TokenSpace: tokenSpace}
)

var mdePkg = identity.PackageIdentification{
	Identification: identity.Identification{Name: "MdePkg", GUID: mdePkgGUID, Version: "0.3"},
}

func testModule(name, guid string, library bool) identity.ModuleIdentification {
	moduleType := identity.ModuleTypeDXEDriver
	if library {
		moduleType = identity.ModuleTypeBase
	}
	return identity.ModuleIdentification{
		Identification: identity.Identification{Name: name, GUID: guid, Version: "1.0"},
		Package:        mdePkg,
		ModuleType:     moduleType,
		Library:        library,
	}
}

var (
	driverA = testModule("DriverA", driverAGUID, false)
	driverB = testModule("DriverB", driverBGUID, false)
	driverC = testModule("DriverC", driverCGUID, false)
	broken  = testModule("BrokenDriver", brokenGUID, false)
	libOld  = testModule("OldLib", libOldGUID, true)
	libNew  = testModule("NewLib", libNewGUID, true)
	ghost   = testModule("GhostLib", ghostGUID, true)
)

var declarations = []pcd.Declaration{
	{ID: pcdA, Token: 1, DatumType: pcd.DatumUint32, DefaultValue: "0", ValidUsage: []pcd.ItemType{pcd.FixedAtBuild}},
	{ID: pcdB, Token: 2, DatumType: pcd.DatumUint32, DefaultValue: "0", ValidUsage: []pcd.ItemType{pcd.FixedAtBuild}},
	{ID: pcdC, Token: 3, DatumType: pcd.DatumUint32, DefaultValue: "0", ValidUsage: []pcd.ItemType{pcd.FixedAtBuild}},
	{ID: mask, Token: 5, DatumType: pcd.DatumUint8, DefaultValue: "0x0f", ValidUsage: []pcd.ItemType{pcd.FixedAtBuild, pcd.PatchableInModule}},
	{ID: flashBase, Token: 0x30000001, DatumType: pcd.DatumUint32, DefaultValue: "0x10", ValidUsage: []pcd.ItemType{pcd.DynamicEx}},
	{ID: ia32Only, Token: 7, DatumType: pcd.DatumUint32, DefaultValue: "0"},
	{ID: banner, Token: 8, DatumType: pcd.DatumPointer, DefaultValue: `L"EDK"`},
}

func declaration(t *testing.T, id pcd.ID) pcd.Declaration {
	t.Helper()
	for _, d := range declarations {
		if d.ID == id {
			return d
		}
	}
	t.Fatalf("no test declaration for %s", id)
	return pcd.Declaration{}
}

func testRegistry() *workspace.Registry {
	r := workspace.NewRegistry()
	r.AddPackage(mdePkg, declarations)
	deps := []identity.PackageIdentification{mdePkg}

	r.AddModule(driverA, deps, []pcd.Usage{
		{ID: pcdB, ItemType: pcd.FixedAtBuild},
		{ID: ia32Only, ItemType: pcd.FixedAtBuild, SupArchs: []string{"IA32"}},
	})
	r.AddModule(driverB, deps, []pcd.Usage{
		{ID: mask, ItemType: pcd.PatchableInModule},
	})
	r.AddModule(driverC, deps, []pcd.Usage{
		{ID: pcdC, ItemType: pcd.FixedAtBuild},
		{ID: flashBase, ItemType: pcd.Dynamic},
	})
	r.AddModule(broken, deps, []pcd.Usage{
		{ID: undeclared, ItemType: pcd.FixedAtBuild},
	})
	r.AddModule(libOld, deps, []pcd.Usage{{ID: pcdA, ItemType: pcd.FixedAtBuild}})
	r.AddModule(libNew, deps, []pcd.Usage{{ID: pcdC, ItemType: pcd.FixedAtBuild, DefaultValue: "0x42"}})
	return r
}

func testDocument() *fpd.Document {
	return fpd.New(identity.PlatformIdentification{
		Identification: identity.Identification{Name: "Nt32", GUID: "EB216561-961F-47EE-9EF9-CA426EF547C2", Version: "0.3"},
	})
}

func keyOf(m identity.ModuleIdentification, archs ...string) fpd.ModuleSAKey {
	return fpd.NewModuleSAKey(m, archs)
}

func libOf(m identity.ModuleIdentification) fpd.LibraryInstance {
	return fpd.NewLibraryInstance(m)
}

// newTestEngine returns an engine over an empty platform with bare module
// instances (no libraries, no PCDs) for mods.
func newTestEngine(t *testing.T, mods ...identity.ModuleIdentification) *Engine {
	t.Helper()
	doc := testDocument()
	for _, m := range mods {
		if err := doc.AddModule(&fpd.ModuleSA{Key: keyOf(m, "X64")}); err != nil {
			t.Fatal(err)
		}
	}
	e, err := NewEngine(doc, testRegistry())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func requestOf(t *testing.T, id pcd.ID, itemType pcd.ItemType, value string) PcdRequest {
	t.Helper()
	d := declaration(t, id)
	return PcdRequest{ID: id, Token: d.Token, ItemType: itemType, DatumType: d.DatumType, DefaultValue: value}
}

func mustConsistent(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.CheckConsistency(); err != nil {
		t.Errorf("CheckConsistency() = %v", err)
	}
}
