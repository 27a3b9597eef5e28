package fpd

import (
	"testing"

	"github.com/albertocavalcante/go-fpd/identity"
)

const (
	modGUID = "27D67720-EA68-48AE-93DA-A3A074C90E30"
	pkgGUID = "5E0E9358-46B6-4AE2-8218-4AB8B9BBDCEC"
)

func TestModuleSAKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  ModuleSAKey
		want string
	}{
		{
			name: "versions and archs",
			key:  ModuleSAKey{ModuleGUID: modGUID, ModuleVersion: "1.0", PackageGUID: pkgGUID, PackageVersion: "0.3", Arch: "IA32 X64"},
			want: modGUID + " 1.0 " + pkgGUID + " 0.3 IA32 X64",
		},
		{
			name: "blank versions",
			key:  ModuleSAKey{ModuleGUID: modGUID, PackageGUID: pkgGUID, Arch: "IA32"},
			want: modGUID + " null " + pkgGUID + " null IA32",
		},
		{
			name: "no arch",
			key:  ModuleSAKey{ModuleGUID: modGUID, PackageGUID: pkgGUID},
			want: modGUID + " null " + pkgGUID + " null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			parsed, err := ParseModuleSAKey(tt.want)
			if err != nil {
				t.Fatalf("ParseModuleSAKey(%q) error = %v", tt.want, err)
			}
			if parsed != tt.key {
				t.Errorf("ParseModuleSAKey(%q) = %+v, want %+v", tt.want, parsed, tt.key)
			}
		})
	}
}

func TestParseModuleSAKeyInvalid(t *testing.T) {
	if _, err := ParseModuleSAKey(modGUID + " 1.0 " + pkgGUID); err == nil {
		t.Error("ParseModuleSAKey() with three fields expected error")
	}
}

func TestModuleSAKeyEqual(t *testing.T) {
	base := ModuleSAKey{ModuleGUID: modGUID, ModuleVersion: "1.0", PackageGUID: pkgGUID, Arch: "IA32 X64"}

	lower := base
	lower.ModuleGUID = "27d67720-ea68-48ae-93da-a3a074c90e30"
	if !base.Equal(lower) {
		t.Error("keys differing only by GUID case should be equal")
	}

	reordered := base.WithArchs([]string{"X64", "IA32"})
	if base.Equal(reordered) {
		t.Error("arch order is significant")
	}

	otherVersion := base
	otherVersion.ModuleVersion = "2.0"
	if base.Equal(otherVersion) {
		t.Error("keys with different module versions should differ")
	}
	if !base.SameInstance(otherVersion) {
		t.Error("SameInstance ignores versions")
	}
}

func TestNewModuleSAKey(t *testing.T) {
	m := identity.ModuleIdentification{
		Identification: identity.Identification{GUID: modGUID, Version: "1.0"},
		Package:        identity.PackageIdentification{Identification: identity.Identification{GUID: pkgGUID, Version: "0.3"}},
	}
	key := NewModuleSAKey(m, []string{"IA32", "X64"})
	if key.Arch != "IA32 X64" {
		t.Errorf("Arch = %q", key.Arch)
	}
	if got := key.Archs(); len(got) != 2 || got[0] != "IA32" || got[1] != "X64" {
		t.Errorf("Archs() = %v", got)
	}
	if !key.Module().Equal(m) {
		t.Errorf("Module() = %+v, want %+v", key.Module(), m)
	}
}
