// Copyright (c) 2026 OpenPackage Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package manifest

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParsePackageManifest(t *testing.T) {
	data := []byte(`
name: "@acme/my-rule"
version: 1.2.3
description: a rule
packages:
  - name: other-rule
    version: ^1.0.0
`)
	m, err := ParsePackageManifest(data)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "@acme/my-rule" {
		t.Errorf("Name = %q, want %q", m.Name, "@acme/my-rule")
	}
	if len(m.Packages) != 1 || m.Packages[0].Name != "other-rule" {
		t.Errorf("Packages = %+v", m.Packages)
	}
}

func TestPackageManifest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		m       PackageManifest
		wantErr bool
	}{
		{name: "valid", m: PackageManifest{Name: "my-rule", Version: "1.0.0"}},
		{name: "missing version", m: PackageManifest{Name: "my-rule"}, wantErr: true},
		{name: "invalid name", m: PackageManifest{Name: "", Version: "1.0.0"}, wantErr: true},
		{name: "unversioned sentinel ok", m: PackageManifest{Name: "my-rule", Version: UnversionedSentinel}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPackageManifest_MarshalQuotesScopedName(t *testing.T) {
	m := PackageManifest{Name: "@acme/my-rule", Version: "1.0.0"}
	out, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"@acme/my-rule"`) {
		t.Errorf("expected double-quoted scoped name, got:\n%s", out)
	}
}

func TestWorkspaceManifest_LoadMissing(t *testing.T) {
	dir := t.TempDir()
	m, existed, err := LoadWorkspaceManifest(filepath.Join(dir, "package.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if existed {
		t.Error("existed = true for missing file")
	}
	if m.Name != "" {
		t.Errorf("expected zero-value manifest, got %+v", m)
	}
}

func TestWorkspaceManifest_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.yml")

	m := WorkspaceManifest{Name: "my-workspace"}
	m.UpsertDependency(Dependency{Name: "my-rule", Version: "^1.0.0"}, false)

	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, existed, err := LoadWorkspaceManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if !existed {
		t.Fatal("existed = false after save")
	}
	if len(loaded.Packages) != 1 || loaded.Packages[0].Name != "my-rule" {
		t.Errorf("Packages = %+v", loaded.Packages)
	}
}

func TestWorkspaceManifest_UpsertReplacesExisting(t *testing.T) {
	var m WorkspaceManifest
	m.UpsertDependency(Dependency{Name: "a", Version: "1.0.0"}, false)
	m.UpsertDependency(Dependency{Name: "a", Version: "2.0.0"}, false)
	if len(m.Packages) != 1 || m.Packages[0].Version != "2.0.0" {
		t.Errorf("Packages = %+v", m.Packages)
	}
}

func TestWorkspaceManifest_RemoveDependency(t *testing.T) {
	var m WorkspaceManifest
	m.UpsertDependency(Dependency{Name: "a", Version: "1.0.0"}, false)
	m.UpsertDependency(Dependency{Name: "b", Version: "1.0.0"}, true)

	if !m.RemoveDependency("a") {
		t.Error("expected RemoveDependency(a) = true")
	}
	if m.RemoveDependency("missing") {
		t.Error("expected RemoveDependency(missing) = false")
	}
	if len(m.Packages) != 0 {
		t.Errorf("Packages = %+v, want empty", m.Packages)
	}
	if len(m.DevPackages) != 1 {
		t.Errorf("DevPackages = %+v, want 1 entry", m.DevPackages)
	}
}

func TestDependency_Partial(t *testing.T) {
	if (Dependency{Name: "a"}).Partial() {
		t.Error("expected Partial() = false with no files")
	}
	if !(Dependency{Name: "a", Files: []string{"rules/x.md"}}).Partial() {
		t.Error("expected Partial() = true with files")
	}
}
