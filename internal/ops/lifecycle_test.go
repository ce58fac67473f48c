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

package ops

import (
	"testing"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/prompt"
	"github.com/openpackage-dev/opkg/internal/semver"
	"github.com/openpackage-dev/opkg/internal/store"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ws, err := OpenWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewContext(ws, st, nil, nil, prompt.NoOp())
}

func TestInit_CreatesManifest(t *testing.T) {
	c := newTestContext(t)
	if err := Init(c, "my-rule"); err != nil {
		t.Fatal(err)
	}
	if c.Workspace.Manifest.Name != "my-rule" {
		t.Errorf("Manifest.Name = %q, want my-rule", c.Workspace.Manifest.Name)
	}
}

func TestInit_RefusesExistingManifest(t *testing.T) {
	c := newTestContext(t)
	if err := Init(c, "my-rule"); err != nil {
		t.Fatal(err)
	}
	if err := Init(c, "other"); err == nil {
		t.Error("expected error re-initialising an existing workspace")
	}
}

func TestInit_RejectsInvalidName(t *testing.T) {
	c := newTestContext(t)
	if err := Init(c, "Not A Valid Name!"); err == nil {
		t.Error("expected error for invalid package name")
	}
}

func TestUninstall_RemovesDependency(t *testing.T) {
	c := newTestContext(t)
	c.Workspace.Manifest.Packages = []manifest.Dependency{{Name: "my-rule", Version: "1.0.0"}}

	if err := Uninstall(c, "my-rule"); err != nil {
		t.Fatal(err)
	}
	if len(c.Workspace.Manifest.Packages) != 0 {
		t.Errorf("Packages = %v, want empty", c.Workspace.Manifest.Packages)
	}
}

func TestUninstall_NotInstalled(t *testing.T) {
	c := newTestContext(t)
	if err := Uninstall(c, "missing"); err == nil {
		t.Error("expected error uninstalling an undeclared dependency")
	}
}

func TestStatus_ReportsLocalVersions(t *testing.T) {
	c := newTestContext(t)
	name := mustParseTestName(t, "my-rule")
	if err := c.Store.Save(name, "1.0.0", []store.File{{Path: "package.yml", Content: []byte("name: my-rule\nversion: 1.0.0\n")}}, store.SaveOptions{}); err != nil {
		t.Fatal(err)
	}
	c.Workspace.Manifest.Packages = []manifest.Dependency{{Name: "my-rule", Version: "^1.0.0"}}

	statuses, err := Status(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != 1 || len(statuses[0].LocalVersions) != 1 || statuses[0].LocalVersions[0] != "1.0.0" {
		t.Errorf("Status = %+v", statuses)
	}
}

func TestList_CombinesRuntimeAndDevInOrder(t *testing.T) {
	c := newTestContext(t)
	c.Workspace.Manifest.Packages = []manifest.Dependency{{Name: "a"}, {Name: "b"}}
	c.Workspace.Manifest.DevPackages = []manifest.Dependency{{Name: "c"}}

	deps := List(c)
	if len(deps) != 3 || deps[0].Name != "a" || deps[1].Name != "b" || deps[2].Name != "c" {
		t.Errorf("List = %v", deps)
	}
}

func TestShow_ReportsDeclaredAndLocalVersions(t *testing.T) {
	c := newTestContext(t)
	name := mustParseTestName(t, "my-rule")
	if err := c.Store.Save(name, "1.0.0", []store.File{{Path: "package.yml", Content: []byte("name: my-rule\nversion: 1.0.0\n")}}, store.SaveOptions{}); err != nil {
		t.Fatal(err)
	}
	c.Workspace.Manifest.Packages = []manifest.Dependency{{Name: "my-rule", Version: "^1.0.0"}}

	result, err := Show(c, "my-rule")
	if err != nil {
		t.Fatal(err)
	}
	if result.Declared != "^1.0.0" || len(result.LocalVersions) != 1 {
		t.Errorf("Show = %+v", result)
	}
}

func TestDuplicate_CopiesEveryVersionWithoutRemovingSource(t *testing.T) {
	c := newTestContext(t)
	src := mustParseTestName(t, "my-rule")
	for _, v := range []string{"1.0.0", "2.0.0"} {
		if err := c.Store.Save(src, v, []store.File{
			{Path: "package.yml", Content: []byte("name: my-rule\nversion: " + v + "\n")},
			{Path: "rules/auth.md", Content: []byte("# Auth\n")},
		}, store.SaveOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	if err := Duplicate(c, "my-rule", "my-rule-copy"); err != nil {
		t.Fatal(err)
	}

	srcVersions, err := c.Store.List(src)
	if err != nil {
		t.Fatal(err)
	}
	if len(srcVersions) != 2 {
		t.Errorf("source versions = %v, want untouched 2 entries", srcVersions)
	}

	dst := mustParseTestName(t, "my-rule-copy")
	dstVersions, err := c.Store.List(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(dstVersions) != 2 {
		t.Fatalf("dst versions = %v, want 2", dstVersions)
	}

	files, err := c.Store.Load(dst, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range files {
		if f.Path == "package.yml" {
			found = true
			m, err := manifest.ParsePackageManifest(f.Content)
			if err != nil {
				t.Fatal(err)
			}
			if m.Name != "my-rule-copy" {
				t.Errorf("duplicated manifest name = %q, want my-rule-copy", m.Name)
			}
		}
	}
	if !found {
		t.Error("duplicated payload missing package.yml")
	}
}

func TestDuplicate_NoLocalVersions(t *testing.T) {
	c := newTestContext(t)
	if err := Duplicate(c, "missing", "dst"); err == nil {
		t.Error("expected error duplicating a package with no local versions")
	}
}

func TestDelete_SingleVersion(t *testing.T) {
	c := newTestContext(t)
	name := mustParseTestName(t, "my-rule")
	for _, v := range []string{"1.0.0", "2.0.0"} {
		if err := c.Store.Save(name, v, []store.File{{Path: "package.yml", Content: []byte("name: my-rule\nversion: " + v + "\n")}}, store.SaveOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	if err := Delete(c, "my-rule@1.0.0"); err != nil {
		t.Fatal(err)
	}

	versions, err := c.Store.List(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 1 || versions[0] != "2.0.0" {
		t.Errorf("versions after delete = %v, want only 2.0.0", versions)
	}
}

func TestDelete_WholePackage(t *testing.T) {
	c := newTestContext(t)
	name := mustParseTestName(t, "my-rule")
	if err := c.Store.Save(name, "1.0.0", []store.File{{Path: "package.yml", Content: []byte("name: my-rule\nversion: 1.0.0\n")}}, store.SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	if err := Delete(c, "my-rule"); err != nil {
		t.Fatal(err)
	}
	versions, err := c.Store.List(name)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 0 {
		t.Errorf("versions after whole-package delete = %v, want empty", versions)
	}
}

func TestDelete_MissingVersion(t *testing.T) {
	c := newTestContext(t)
	name := mustParseTestName(t, "my-rule")
	if err := c.Store.Save(name, "1.0.0", []store.File{{Path: "package.yml", Content: []byte("name: my-rule\nversion: 1.0.0\n")}}, store.SaveOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := Delete(c, "my-rule@9.9.9"); err == nil {
		t.Error("expected error deleting a version that doesn't exist")
	}
}

func TestPrune_RemovesOtherWorkspacesWipVersions(t *testing.T) {
	c := newTestContext(t)
	tag := semver.WorkspaceTag(c.Workspace.Root)
	name := mustParseTestName(t, "my-rule")

	for _, v := range []string{"1.0.0-wip." + tag + ".1", "1.0.0-wip.zzz999.1", "1.0.0"} {
		if err := c.Store.Save(name, v, []store.File{{Path: "package.yml", Content: []byte("name: my-rule\nversion: " + v + "\npartial: true\n")}}, store.SaveOptions{Partial: true}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := Prune(c, "my-rule")
	if err != nil {
		t.Fatal(err)
	}
	foundForeignTag := false
	for _, r := range removed {
		if r.Version == "1.0.0-wip.zzz999.1" {
			foundForeignTag = true
		}
		if r.Version == "1.0.0" {
			t.Errorf("Prune removed a stable version: %+v", r)
		}
	}
	if !foundForeignTag {
		t.Errorf("Prune should have removed the other workspace's wip version, removed = %+v", removed)
	}
}

func mustParseTestName(t *testing.T, raw string) pkgname.Name {
	t.Helper()
	parsed, err := pkgname.Parse(raw)
	if err != nil {
		t.Fatalf("parsing name %q: %v", raw, err)
	}
	return parsed
}
