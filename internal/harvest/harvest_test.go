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

package harvest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/platform"
	"github.com/openpackage-dev/opkg/internal/store"
	"github.com/openpackage-dev/opkg/internal/sync"
)

func claudeOnly(t *testing.T) []platform.Platform {
	t.Helper()
	p, ok := platform.Definition("claude")
	if !ok {
		t.Fatal("claude platform definition missing")
	}
	return []platform.Platform{p}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHarvestWorkspace_MapsBackToCanonical(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".claude/rules/auth.md", "be careful with auth")

	candidates, err := HarvestWorkspace(dir, claudeOnly(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1: %+v", len(candidates), candidates)
	}
	if candidates[0].Canonical != "rules/auth.md" {
		t.Errorf("Canonical = %q, want rules/auth.md", candidates[0].Canonical)
	}
	if candidates[0].Source != SourceWorkspace {
		t.Errorf("Source = %v, want SourceWorkspace", candidates[0].Source)
	}
}

func TestHarvestWorkspace_MissingDirsAreNotErrors(t *testing.T) {
	dir := t.TempDir()
	candidates, err := HarvestWorkspace(dir, claudeOnly(t), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 0 {
		t.Errorf("candidates = %+v, want none", candidates)
	}
}

func TestHarvestLocal_SkipsIndexFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, pkgname.IndexFileName, "files: {}\n")
	writeFile(t, dir, "notes/todo.md", "remember to ship")

	candidates, err := HarvestLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 || candidates[0].Canonical != "notes/todo.md" {
		t.Fatalf("candidates = %+v, want only notes/todo.md", candidates)
	}
}

func TestHarvestLocal_MissingDirIsNotAnError(t *testing.T) {
	candidates, err := HarvestLocal(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatal(err)
	}
	if candidates != nil {
		t.Errorf("candidates = %+v, want nil", candidates)
	}
}

func TestResolveConflicts(t *testing.T) {
	local := []Candidate{
		{Canonical: "rules/auth.md", Content: []byte("local body")},
		{Canonical: "rules/only-local.md", Content: []byte("local only")},
	}
	workspace := []Candidate{
		{Canonical: "rules/auth.md", Content: []byte("workspace body"), Hash: hashOf([]byte("workspace body"))},
		{Canonical: "rules/only-workspace.md", Content: []byte("new from workspace"), Hash: hashOf([]byte("new from workspace"))},
	}

	t.Run("prefer local on conflict by default", func(t *testing.T) {
		resolved := ResolveConflicts(workspace, local, false)
		if string(resolved["rules/auth.md"]) != "local body" {
			t.Errorf("rules/auth.md = %q, want local body", resolved["rules/auth.md"])
		}
		if string(resolved["rules/only-local.md"]) != "local only" {
			t.Error("local-only candidate dropped")
		}
		if string(resolved["rules/only-workspace.md"]) != "new from workspace" {
			t.Error("workspace-only candidate dropped")
		}
	})

	t.Run("prefer workspace when forced", func(t *testing.T) {
		resolved := ResolveConflicts(workspace, local, true)
		if string(resolved["rules/auth.md"]) != "workspace body" {
			t.Errorf("rules/auth.md = %q, want workspace body", resolved["rules/auth.md"])
		}
	})
}

func TestBuildPayload_IncludesManifest(t *testing.T) {
	payload := BuildPayload([]byte("name: acme-rule\nversion: 1.0.0\n"), map[string][]byte{
		"rules/auth.md": []byte("be careful"),
	})
	byPath := map[string]string{}
	for _, f := range payload {
		byPath[f.Path] = string(f.Content)
	}
	if byPath[pkgname.ManifestFileName] == "" {
		t.Error("manifest missing from payload")
	}
	if byPath["rules/auth.md"] != "be careful" {
		t.Error("content file missing from payload")
	}
}

type fakeCounters struct {
	n map[string]uint64
}

func (f *fakeCounters) Next(tag, base string) (uint64, error) {
	key := tag + "-" + base
	f.n[key]++
	return f.n[key], nil
}

func newTestPipeline(t *testing.T) (*Pipeline, string, pkgname.Name) {
	t.Helper()
	workspaceRoot := t.TempDir()
	storeRoot := t.TempDir()
	st, err := store.New(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	p := &Pipeline{
		WorkspaceRoot: workspaceRoot,
		Store:         st,
		Engine:        sync.New(workspaceRoot, claudeOnly(t)),
		Counters:      &fakeCounters{n: map[string]uint64{}},
	}
	name, err := pkgname.Parse("acme-rule")
	if err != nil {
		t.Fatal(err)
	}
	return p, workspaceRoot, name
}

func TestPipeline_PackRefusesExistingVersionWithoutForce(t *testing.T) {
	p, _, name := newTestPipeline(t)
	m := manifest.PackageManifest{Name: name.String(), Version: "1.0.0"}

	if _, err := p.Pack(context.Background(), name, m, "", false, true, sync.Options{DefaultStrategy: sync.StrategyOverwrite}); err != nil {
		t.Fatalf("first pack: %v", err)
	}
	if _, err := p.Pack(context.Background(), name, m, "", false, true, sync.Options{DefaultStrategy: sync.StrategyOverwrite}); err == nil {
		t.Fatal("expected refusal on second pack without force")
	}
	if _, err := p.Pack(context.Background(), name, m, "", true, true, sync.Options{DefaultStrategy: sync.StrategyOverwrite}); err != nil {
		t.Fatalf("forced pack: %v", err)
	}
}

func TestPipeline_SaveHarvestsWorkspaceContent(t *testing.T) {
	p, workspaceRoot, name := newTestPipeline(t)
	writeFile(t, workspaceRoot, ".claude/rules/auth.md", "be careful with auth")

	m := manifest.PackageManifest{Name: name.String(), Version: "1.0.0"}
	result, err := p.Save(context.Background(), name, m, "", true, sync.Options{DefaultStrategy: sync.StrategyOverwrite})
	if err != nil {
		t.Fatal(err)
	}

	files, err := p.Store.Load(name, result.Version)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range files {
		if f.Path == "rules/auth.md" && string(f.Content) == "be careful with auth" {
			found = true
		}
	}
	if !found {
		t.Errorf("harvested payload missing rules/auth.md, got %+v", files)
	}
}

func TestPipeline_SaveRotatesStaleWipVersions(t *testing.T) {
	p, workspaceRoot, name := newTestPipeline(t)
	writeFile(t, workspaceRoot, ".claude/rules/auth.md", "v1")

	m := manifest.PackageManifest{Name: name.String(), Version: "1.0.0"}
	first, err := p.Save(context.Background(), name, m, "", true, sync.Options{DefaultStrategy: sync.StrategyOverwrite})
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, workspaceRoot, ".claude/rules/auth.md", "v2")
	second, err := p.Save(context.Background(), name, m, "", true, sync.Options{DefaultStrategy: sync.StrategyOverwrite})
	if err != nil {
		t.Fatal(err)
	}

	if len(second.Rotated) != 1 || second.Rotated[0] != first.Version {
		t.Errorf("Rotated = %v, want [%s]", second.Rotated, first.Version)
	}

	versions, err := p.Store.List(name)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range versions {
		if v == first.Version {
			t.Errorf("stale WIP version %s was not rotated out", first.Version)
		}
	}
}

func TestPipeline_SaveResetsWipStreamOnBaseChange(t *testing.T) {
	p, workspaceRoot, name := newTestPipeline(t)
	writeFile(t, workspaceRoot, ".claude/rules/auth.md", "v1")

	first, err := p.Save(context.Background(), name, manifest.PackageManifest{Name: name.String(), Version: "1.0.0"}, "", true, sync.Options{DefaultStrategy: sync.StrategyOverwrite})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(first.Version, "1.0.0-wip.") {
		t.Fatalf("first.Version = %q, want a 1.0.0 WIP version", first.Version)
	}
	if first.Notice != "" {
		t.Errorf("first save should have no WIP cycle notice, got %q", first.Notice)
	}

	second, err := p.Save(context.Background(), name, manifest.PackageManifest{Name: name.String(), Version: "1.1.0"}, "", true, sync.Options{DefaultStrategy: sync.StrategyOverwrite})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(second.Version, "1.1.0-wip.") {
		t.Errorf("second.Version = %q, want a 1.1.0 WIP version after the manifest version changed base", second.Version)
	}
	if !strings.HasSuffix(second.Version, ".1") {
		t.Errorf("second.Version = %q, want the counter to restart at 1 for the new base", second.Version)
	}
	if second.Notice == "" {
		t.Error("expected a WIP stream reset notice when the base version changed")
	}
}

func TestPipeline_SaveContinuesFromPatchAfterPack(t *testing.T) {
	p, workspaceRoot, name := newTestPipeline(t)
	writeFile(t, workspaceRoot, ".claude/rules/auth.md", "v1")

	m := manifest.PackageManifest{Name: name.String(), Version: "1.0.0"}
	if _, err := p.Save(context.Background(), name, m, "", true, sync.Options{DefaultStrategy: sync.StrategyOverwrite}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Pack(context.Background(), name, m, "", false, true, sync.Options{DefaultStrategy: sync.StrategyOverwrite}); err != nil {
		t.Fatal(err)
	}

	writeFile(t, workspaceRoot, ".claude/rules/auth.md", "v2")
	result, err := p.Save(context.Background(), name, m, "", true, sync.Options{DefaultStrategy: sync.StrategyOverwrite})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(result.Version, "1.0.1-wip.") {
		t.Errorf("result.Version = %q, want a 1.0.1 WIP version once 1.0.0 is stable", result.Version)
	}
	if result.Notice == "" {
		t.Error("expected a WIP cycle continuation notice once the manifest version has gone stable")
	}
}

func TestRenamePackageCacheDir(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "old")
	newDir := filepath.Join(root, "new")
	writeFile(t, oldDir, "index.yml", "files: {}\n")

	if err := RenamePackageCacheDir(oldDir, newDir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old cache dir should no longer exist")
	}
	if _, err := os.Stat(filepath.Join(newDir, "index.yml")); err != nil {
		t.Errorf("renamed cache dir missing its contents: %v", err)
	}
}

func TestRenamePackageCacheDir_MissingSourceIsNotAnError(t *testing.T) {
	root := t.TempDir()
	if err := RenamePackageCacheDir(filepath.Join(root, "missing"), filepath.Join(root, "target")); err != nil {
		t.Fatal(err)
	}
}

func TestRenameRegistryDirectory(t *testing.T) {
	storeRoot := t.TempDir()
	st, err := store.New(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	oldName, _ := pkgname.Parse("acme-rule")
	newName, _ := pkgname.Parse("acme-guideline")

	m := manifest.PackageManifest{Name: oldName.String(), Version: "1.0.0"}
	manifestBytes, err := m.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save(oldName, "1.0.0", []store.File{
		{Path: pkgname.ManifestFileName, Content: manifestBytes},
		{Path: "rules/auth.md", Content: []byte("be careful")},
	}, store.SaveOptions{}); err != nil {
		t.Fatal(err)
	}

	if err := RenameRegistryDirectory(st, oldName, newName); err != nil {
		t.Fatal(err)
	}

	versions, err := st.List(newName)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 1 {
		t.Fatalf("List(newName) = %v, want one version", versions)
	}

	files, err := st.Load(newName, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if f.Path == pkgname.ManifestFileName {
			renamed, err := manifest.ParsePackageManifest(f.Content)
			if err != nil {
				t.Fatal(err)
			}
			if renamed.Name != newName.String() {
				t.Errorf("manifest name = %q, want %q", renamed.Name, newName.String())
			}
		}
	}

	oldVersions, err := st.List(oldName)
	if err != nil {
		t.Fatal(err)
	}
	if len(oldVersions) != 0 {
		t.Errorf("old name still has versions: %v", oldVersions)
	}
}

func TestRenameRegistryDirectory_NoExistingVersionsIsNoOp(t *testing.T) {
	storeRoot := t.TempDir()
	st, err := store.New(storeRoot)
	if err != nil {
		t.Fatal(err)
	}
	oldName, _ := pkgname.Parse("acme-rule")
	newName, _ := pkgname.Parse("acme-guideline")

	if err := RenameRegistryDirectory(st, oldName, newName); err != nil {
		t.Fatal(err)
	}
}

func TestAddSingleFile_AppendsAndResaves(t *testing.T) {
	p, workspaceRoot, _ := newTestPipeline(t)
	writeFile(t, workspaceRoot, "notes/one.md", "first file")
	writeFile(t, workspaceRoot, "notes/two.md", "second file")

	ws := &manifest.WorkspaceManifest{}
	if err := p.AddSingleFile(ws, "notes/one.md"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSingleFile(ws, "notes/two.md"); err != nil {
		t.Fatal(err)
	}

	if len(ws.Packages) != 1 || ws.Packages[0].Name != SingleFileHelperName {
		t.Fatalf("Packages = %+v, want one %q entry", ws.Packages, SingleFileHelperName)
	}
	if len(ws.Packages[0].Files) != 2 {
		t.Fatalf("Files = %v, want both notes", ws.Packages[0].Files)
	}

	helperName, _ := pkgname.Parse(SingleFileHelperName)
	files, err := p.Store.Load(helperName, manifest.UnversionedSentinel)
	if err != nil {
		t.Fatal(err)
	}
	byPath := map[string]string{}
	for _, f := range files {
		byPath[f.Path] = string(f.Content)
	}
	if byPath["notes/one.md"] != "first file" || byPath["notes/two.md"] != "second file" {
		t.Errorf("re-saved payload = %+v", byPath)
	}
}

func TestAddSingleFile_DoesNotDuplicateOnRepeatAdd(t *testing.T) {
	p, workspaceRoot, _ := newTestPipeline(t)
	writeFile(t, workspaceRoot, "notes/one.md", "first file")

	ws := &manifest.WorkspaceManifest{}
	if err := p.AddSingleFile(ws, "notes/one.md"); err != nil {
		t.Fatal(err)
	}
	if err := p.AddSingleFile(ws, "notes/one.md"); err != nil {
		t.Fatal(err)
	}

	if len(ws.Packages[0].Files) != 1 {
		t.Errorf("Files = %v, want exactly one entry", ws.Packages[0].Files)
	}
}
