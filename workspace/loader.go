package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-fpd/identity"
	"github.com/albertocavalcante/go-fpd/internal/buildutil"
	"github.com/albertocavalcante/go-fpd/pcd"
)

// Descriptor file suffixes recognised by LoadDir.
const (
	PackageSuffix = ".spd.bzl"
	ModuleSuffix  = ".msa.bzl"
)

// PackageDescriptor is the parsed content of a package descriptor:
//
//	package(name = "MdePkg", guid = "5E0E9358-...", version = "0.3")
//	pcd_declaration(
//	    cname = "PcdDebugPropertyMask",
//	    token_space = "gEfiMdePkgTokenSpaceGuid",
//	    token = 0x00000005,
//	    datum_type = "UINT8",
//	    default = "0x0f",
//	    usage = ["FIXED_AT_BUILD", "PATCHABLE_IN_MODULE"],
//	)
type PackageDescriptor struct {
	Package      identity.PackageIdentification
	Declarations []pcd.Declaration
}

// ModuleDescriptor is the parsed content of a module descriptor:
//
//	module(name = "BaseLib", guid = "...", version = "1.0",
//	       package_guid = "...", package_version = "0.3",
//	       type = "BASE", library = True)
//	depends(guid = "5E0E9358-...", version = "0.3")
//	pcd_usage(cname = "PcdMaximumLinkedListLength",
//	          token_space = "gEfiMdePkgTokenSpaceGuid",
//	          item_type = "FIXED_AT_BUILD", default = "1000000",
//	          arch = ["IA32", "X64"])
type ModuleDescriptor struct {
	Module       identity.ModuleIdentification
	Dependencies []identity.PackageIdentification
	Usages       []pcd.Usage
}

// ParsePackageDescriptor parses a package descriptor.
func ParsePackageDescriptor(filename string, content []byte) (*PackageDescriptor, error) {
	f, err := build.ParseBzl(filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", filename, err)
	}

	desc := &PackageDescriptor{}
	seen := false
	for _, call := range calls(f) {
		switch buildutil.FuncName(call) {
		case "package":
			if seen {
				return nil, fmt.Errorf("%s: package declared twice", filename)
			}
			seen = true
			id, err := identity.New(buildutil.String(call, "name"), buildutil.String(call, "guid"), buildutil.String(call, "version"))
			if err != nil {
				return nil, fmt.Errorf("%s: package: %w", filename, err)
			}
			desc.Package = identity.PackageIdentification{Identification: id, Path: filename}

		case "pcd_declaration":
			decl, err := parseDeclaration(call)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", filename, err)
			}
			desc.Declarations = append(desc.Declarations, decl)
		}
	}
	if !seen {
		return nil, fmt.Errorf("%s: missing package()", filename)
	}
	return desc, nil
}

func parseDeclaration(call *build.CallExpr) (pcd.Declaration, error) {
	decl := pcd.Declaration{
		ID: pcd.ID{
			CName:      buildutil.String(call, "cname"),
			TokenSpace: buildutil.String(call, "token_space"),
		},
		DatumType:    buildutil.String(call, "datum_type"),
		DefaultValue: buildutil.String(call, "default"),
	}
	if decl.CName == "" || decl.TokenSpace == "" {
		return decl, fmt.Errorf("pcd_declaration: cname and token_space are required")
	}
	if _, err := pcd.MaxDatumSize(decl.DatumType, ""); err != nil {
		return decl, fmt.Errorf("pcd_declaration %s: %w", decl.ID, err)
	}
	token, err := buildutil.Int64(call, "token")
	if err != nil {
		return decl, fmt.Errorf("pcd_declaration %s: %w", decl.ID, err)
	}
	decl.Token = token
	for _, u := range buildutil.StringList(call, "usage") {
		t, err := pcd.ParseItemType(u)
		if err != nil {
			return decl, fmt.Errorf("pcd_declaration %s: %w", decl.ID, err)
		}
		decl.ValidUsage = append(decl.ValidUsage, t)
	}
	return decl, nil
}

// ParseModuleDescriptor parses a module descriptor.
func ParseModuleDescriptor(filename string, content []byte) (*ModuleDescriptor, error) {
	f, err := build.ParseBzl(filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %v", filename, err)
	}

	desc := &ModuleDescriptor{}
	seen := false
	for _, call := range calls(f) {
		switch buildutil.FuncName(call) {
		case "module":
			if seen {
				return nil, fmt.Errorf("%s: module declared twice", filename)
			}
			seen = true
			id, err := identity.New(buildutil.String(call, "name"), buildutil.String(call, "guid"), buildutil.String(call, "version"))
			if err != nil {
				return nil, fmt.Errorf("%s: module: %w", filename, err)
			}
			pkgID, err := identity.New("", buildutil.String(call, "package_guid"), buildutil.String(call, "package_version"))
			if err != nil {
				return nil, fmt.Errorf("%s: module package: %w", filename, err)
			}
			desc.Module = identity.ModuleIdentification{
				Identification: id,
				Package:        identity.PackageIdentification{Identification: pkgID},
				ModuleType:     buildutil.String(call, "type"),
				Library:        buildutil.Bool(call, "library"),
				Path:           filename,
			}

		case "depends":
			id, err := identity.New("", buildutil.String(call, "guid"), buildutil.String(call, "version"))
			if err != nil {
				return nil, fmt.Errorf("%s: depends: %w", filename, err)
			}
			desc.Dependencies = append(desc.Dependencies, identity.PackageIdentification{Identification: id})

		case "pcd_usage":
			u := pcd.Usage{
				ID: pcd.ID{
					CName:      buildutil.String(call, "cname"),
					TokenSpace: buildutil.String(call, "token_space"),
				},
				DefaultValue: buildutil.String(call, "default"),
				SupArchs:     buildutil.StringList(call, "arch"),
			}
			if u.CName == "" || u.TokenSpace == "" {
				return nil, fmt.Errorf("%s: pcd_usage: cname and token_space are required", filename)
			}
			t, err := pcd.ParseItemType(buildutil.String(call, "item_type"))
			if err != nil {
				return nil, fmt.Errorf("%s: pcd_usage %s: %w", filename, u.ID, err)
			}
			u.ItemType = t
			desc.Usages = append(desc.Usages, u)
		}
	}
	if !seen {
		return nil, fmt.Errorf("%s: missing module()", filename)
	}
	return desc, nil
}

func calls(f *build.File) []*build.CallExpr {
	var out []*build.CallExpr
	for _, stmt := range f.Stmt {
		if call, ok := stmt.(*build.CallExpr); ok {
			out = append(out, call)
		}
	}
	return out
}

// LoadDir walks dir and registers every package and module descriptor found.
// Packages are registered first so that module package references can be
// completed with the package name and path.
func LoadDir(dir string) (*Registry, error) {
	var pkgFiles, modFiles []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case strings.HasSuffix(path, PackageSuffix):
			pkgFiles = append(pkgFiles, path)
		case strings.HasSuffix(path, ModuleSuffix):
			modFiles = append(modFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workspace %s: %w", dir, err)
	}

	r := NewRegistry()
	for _, path := range pkgFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read package descriptor: %w", err)
		}
		desc, err := ParsePackageDescriptor(path, data)
		if err != nil {
			return nil, err
		}
		r.AddPackage(desc.Package, desc.Declarations)
	}

	for _, path := range modFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read module descriptor: %w", err)
		}
		desc, err := ParseModuleDescriptor(path, data)
		if err != nil {
			return nil, err
		}
		if p, ok := r.FindPackage(desc.Module.Package); ok {
			desc.Module.Package = p
		}
		for i, dep := range desc.Dependencies {
			if p, ok := r.FindPackage(dep); ok {
				desc.Dependencies[i] = p
			}
		}
		r.AddModule(desc.Module, desc.Dependencies, desc.Usages)
	}
	return r, nil
}
