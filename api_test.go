package gofpd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/albertocavalcante/go-fpd/fpd"
	"github.com/albertocavalcante/go-fpd/pcd"
)

const testPackageDescriptor = `
package(name = "MdePkg", guid = "5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC", version = "0.3")

pcd_declaration(
    cname = "PcdDebugPropertyMask",
    token_space = "gEfiMdePkgTokenSpaceGuid",
    token = 0x00000005,
    datum_type = "UINT8",
    default = "0x0f",
    usage = ["FIXED_AT_BUILD", "PATCHABLE_IN_MODULE"],
)

pcd_declaration(
    cname = "PcdFlashNvStorageBase",
    token_space = "gEfiMdePkgTokenSpaceGuid",
    token = 0x30000001,
    datum_type = "UINT32",
    default = "0x10",
    usage = ["DYNAMIC_EX"],
)
`

const testDriverDescriptor = `
module(
    name = "DriverA",
    guid = "1A1E4886-9517-440E-9FDE-3BE44CEE2136",
    version = "1.0",
    package_guid = "5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC",
    package_version = "0.3",
    type = "DXE_DRIVER",
)

depends(guid = "5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC", version = "0.3")

pcd_usage(
    cname = "PcdFlashNvStorageBase",
    token_space = "gEfiMdePkgTokenSpaceGuid",
    item_type = "DYNAMIC",
)
`

const testLibraryDescriptor = `
module(
    name = "DebugLib",
    guid = "27D67720-EA68-48AE-93DA-A3A074C90E30",
    version = "1.0",
    package_guid = "5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC",
    package_version = "0.3",
    type = "BASE",
    library = True,
)

pcd_usage(
    cname = "PcdDebugPropertyMask",
    token_space = "gEfiMdePkgTokenSpaceGuid",
    item_type = "FIXED_AT_BUILD",
    default = "0x1f",
    arch = ["IA32"],
)
`

const testPlatform = `header:
  name: Nt32
  guid: EB216561-961F-47EE-9EF9-CA426EF547C2
  version: "0.3"
framework_modules:
  - key: 1A1E4886-9517-440E-9FDE-3BE44CEE2136 1.0 5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC 0.3 IA32
    libraries:
      - module_guid: 27D67720-EA68-48AE-93DA-A3A074C90E30
        module_version: "1.0"
        package_guid: 5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC
        package_version: "0.3"
`

func writeTestWorkspace(t *testing.T) (fpdPath, wsDir string) {
	t.Helper()
	root := t.TempDir()
	wsDir = filepath.Join(root, "workspace")
	files := map[string]string{
		"MdePkg/MdePkg.spd.bzl":                    testPackageDescriptor,
		"MdePkg/Universal/DriverA/DriverA.msa.bzl": testDriverDescriptor,
		"MdePkg/Library/DebugLib/DebugLib.msa.bzl": testLibraryDescriptor,
	}
	for name, content := range files {
		path := filepath.Join(wsDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fpdPath = filepath.Join(root, "Nt32.fpd.yaml")
	if err := os.WriteFile(fpdPath, []byte(testPlatform), 0o644); err != nil {
		t.Fatal(err)
	}
	return fpdPath, wsDir
}

func TestSyncFile_Success(t *testing.T) {
	fpdPath, wsDir := writeTestWorkspace(t)

	result, err := SyncFile(context.Background(), fpdPath, wsDir)
	if err != nil {
		t.Fatalf("SyncFile() error = %v", err)
	}
	if result.Modules != 1 || len(result.Changed) != 1 {
		t.Errorf("result = %+v", result)
	}

	doc, err := fpd.ReadFile(fpdPath)
	if err != nil {
		t.Fatalf("ReadFile() after sync error = %v", err)
	}
	m := doc.Modules[0]
	maskID := pcd.ID{CName: "PcdDebugPropertyMask", TokenSpace: "gEfiMdePkgTokenSpaceGuid"}
	flashID := pcd.ID{CName: "PcdFlashNvStorageBase", TokenSpace: "gEfiMdePkgTokenSpaceGuid"}

	if p := m.Pcd(maskID); p == nil || p.Value != "0x1f" || p.ItemType != pcd.FixedAtBuild {
		t.Errorf("library pcd = %+v", p)
	}
	if p := m.Pcd(flashID); p == nil || p.ItemType != pcd.DynamicEx || p.Value != "0x10" {
		t.Errorf("module pcd = %+v", p)
	}
	if d := doc.DynamicPcd(flashID); d == nil {
		t.Error("dynamic entry not saved")
	}

	// Reloading rebuilds the same index.
	e, err := Open(fpdPath, wsDir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	mustConsistent(t, e)
}

func TestSyncFile_FileNotFound(t *testing.T) {
	_, wsDir := writeTestWorkspace(t)

	_, err := SyncFile(context.Background(), filepath.Join(t.TempDir(), "missing.fpd.yaml"), wsDir)
	if err == nil {
		t.Fatal("SyncFile() expected error for missing platform")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("SyncFile() error = %v, want os.ErrNotExist", err)
	}
}

func TestSyncFile_UnchangedFileNotRewritten(t *testing.T) {
	fpdPath, wsDir := writeTestWorkspace(t)
	if _, err := SyncFile(context.Background(), fpdPath, wsDir); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(fpdPath, 0o400); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(fpdPath, 0o600) })

	result, err := SyncFile(context.Background(), fpdPath, wsDir)
	if err != nil {
		t.Fatalf("second SyncFile() error = %v", err)
	}
	if len(result.Changed) != 0 {
		t.Errorf("second SyncFile() changed %v", result.Changed)
	}
}
