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

// Package sync is the Install/Sync Engine: it materialises one package's
// payload into a workspace's detected platforms, merges root-file sections,
// and rebuilds the package index. It never talks to the network or the
// local registry store directly; callers hand it an already-loaded payload.
package sync

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgindex"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/platform"
	"github.com/openpackage-dev/opkg/internal/secureio"
	"github.com/openpackage-dev/opkg/internal/store"
)

// ConflictStrategy is one of the four policies spec 4.9 names for a
// present-diff file.
type ConflictStrategy int

const (
	StrategyAsk ConflictStrategy = iota
	StrategyOverwrite
	StrategyKeepBoth
	StrategySkip
)

// FileAction is the terminal state of one planned write, per the per-file
// state machine.
type FileAction int

const (
	ActionCreated FileAction = iota
	ActionUpdated
	ActionUnchanged
	ActionSkipped
	ActionOverwritten
	ActionRenamed
)

func (a FileAction) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	case ActionUnchanged:
		return "unchanged"
	case ActionSkipped:
		return "skipped"
	case ActionOverwritten:
		return "overwritten"
	case ActionRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// PlannedWrite is one file the engine intends to write (or skip) in the
// workspace.
type PlannedWrite struct {
	Canonical     string // registry path this write materialises
	WorkspacePath string // workspace-relative destination, forward-slash
	PlatformID    string // "" for a verbatim workspace-path passthrough
	Content       []byte
	Existing      []byte // prior workspace content; nil when WorkspacePath didn't exist
	Action        FileAction
}

// RootFileUpdate is one root file whose section this package contributes.
type RootFileUpdate struct {
	Path string // workspace-relative root file name, e.g. "AGENTS.md"
	Body []byte
}

// ConflictResolver is consulted once per present-diff file when the
// effective strategy is StrategyAsk. Only the command-orchestration layer
// is expected to supply one backed by an interactive prompt; the engine
// itself never talks to a terminal.
type ConflictResolver func(canonical, workspacePath string) (ConflictStrategy, error)

// Options configures a single package's Plan/Apply pass.
type Options struct {
	DefaultStrategy ConflictStrategy
	Resolve         ConflictResolver // required when DefaultStrategy == StrategyAsk
	Concurrency     int              // file-write fan-out width; 0 means a sane default
}

// Plan is the full, side-effect-free result of planning one package's
// install: every file write, every root-file contribution, the rebuilt
// index, and the workspace manifest dependency entry to upsert. Apply
// performs no planning of its own; it only executes what Plan decided.
type Plan struct {
	Name        pkgname.Name
	Version     string
	Writes      []PlannedWrite
	RootFiles   []RootFileUpdate
	Workspace   pkgindex.Workspace
	IndexFiles  map[string][]string // registry path -> workspace paths that exist after this install
	Dependency  manifest.Dependency
	Partial     bool
	Concurrency int
}

// Engine drives Plan/Apply against one workspace root for whatever set of
// platforms it was constructed with (normally platform.Detected(cwd)).
type Engine struct {
	WorkspaceRoot string
	Platforms     []platform.Platform
}

// New returns an Engine rooted at workspaceRoot, materialising into
// platforms.
func New(workspaceRoot string, platforms []platform.Platform) *Engine {
	return &Engine{WorkspaceRoot: workspaceRoot, Platforms: platforms}
}

// PackageCacheDir is the workspace-side mirror directory for name: where
// its manifest-dir-relative "workspace path" files and per-package index
// live, namespaced so one package's passthrough content never collides
// with another's.
func (e *Engine) PackageCacheDir(name pkgname.Name) string {
	return filepath.Join(e.WorkspaceRoot, ".openpackage", "packages", filepath.FromSlash(name.DirName()))
}

// IndexPath is the on-disk location of name's package index file.
func (e *Engine) IndexPath(name pkgname.Name) string {
	return filepath.Join(e.PackageCacheDir(name), pkgname.IndexFileName)
}

type universalFile struct {
	subdir  string
	rel     string
	suffix  string
	content []byte
}

// Plan classifies every file in payload (per C1), resolves conflicts
// against whatever already exists on disk, and returns the full write plan
// without touching the filesystem. manifestDir is "" for a top-level
// package, or the manifest-dir relative to package-root for a nested one.
// previousIndex is the package's prior index record (an empty Record for a
// first install).
func (e *Engine) Plan(name pkgname.Name, version string, payload []store.File, manifestDir string, previousIndex pkgindex.Record, opts Options) (Plan, error) {
	ids := platformIDs(e.Platforms)
	rootFileNames := platform.RootFileNames()

	rootBodies := map[string][]byte{}
	var universalFiles []universalFile
	var cacheFiles []store.File
	havePartial := false

	for _, f := range payload {
		cl := pkgname.ClassifyRegistryPath(f.Path, manifestDir, ids, rootFileNames)
		switch cl.Class {
		case pkgname.ClassManifest:
			m, err := manifest.ParsePackageManifest(f.Content)
			if err != nil {
				return Plan{}, err
			}
			havePartial = m.Partial
		case pkgname.ClassRoot:
			rootBodies[filepath.Base(filepath.FromSlash(f.Path))] = f.Content
		case pkgname.ClassUniversal:
			universalFiles = append(universalFiles, universalFile{subdir: cl.Subdir, rel: cl.Rel, suffix: cl.PlatformSuffix, content: f.Content})
		default:
			cacheFiles = append(cacheFiles, f)
		}
	}

	candidates, err := e.planUniversal(manifestDir, universalFiles)
	if err != nil {
		return Plan{}, err
	}
	candidates = append(candidates, e.planCacheFiles(name, cacheFiles)...)

	writes := make([]PlannedWrite, 0, len(candidates))
	indexFiles := map[string][]string{}
	for _, c := range candidates {
		w, err := e.resolveWrite(c, opts)
		if err != nil {
			return Plan{}, err
		}
		writes = append(writes, w)
		if w.Action != ActionSkipped {
			indexFiles[c.canonical] = append(indexFiles[c.canonical], w.WorkspacePath)
		}
	}

	overridden := map[string]bool{}
	for _, uf := range universalFiles {
		if uf.suffix != "" && !isOverlayRel(uf.rel) {
			overridden[registryPath(manifestDir, uf.subdir, uf.rel)] = true
		}
	}
	rebuilt := pkgindex.Rebuild(previousIndex, indexFiles, overridden)
	rebuilt.Workspace.Version = version

	dep := manifest.Dependency{Name: name.String(), Version: version}

	return Plan{
		Name:       name,
		Version:    version,
		Writes:     writes,
		RootFiles:  e.planRootFiles(rootBodies),
		Workspace:  rebuilt.Workspace,
		IndexFiles: rebuilt.Files,
		Dependency:  dep,
		Partial:     havePartial,
		Concurrency: opts.Concurrency,
	}, nil
}

type candidateWrite struct {
	canonical     string
	workspacePath string
	platformID    string
	content       []byte
}

func (e *Engine) planCacheFiles(name pkgname.Name, files []store.File) []candidateWrite {
	out := make([]candidateWrite, 0, len(files))
	cacheDir := e.PackageCacheDir(name)
	for _, f := range files {
		dest, err := filepath.Rel(e.WorkspaceRoot, filepath.Join(cacheDir, filepath.FromSlash(f.Path)))
		if err != nil {
			continue
		}
		out = append(out, candidateWrite{
			canonical:     f.Path,
			workspacePath: filepath.ToSlash(dest),
			content:       f.Content,
		})
	}
	return out
}

func (e *Engine) resolveWrite(c candidateWrite, opts Options) (PlannedWrite, error) {
	dest := filepath.Join(e.WorkspaceRoot, filepath.FromSlash(c.workspacePath))
	existing, err := os.ReadFile(dest)
	switch {
	case os.IsNotExist(err):
		return PlannedWrite{Canonical: c.canonical, WorkspacePath: c.workspacePath, PlatformID: c.platformID, Content: c.content, Action: ActionCreated}, nil
	case err != nil:
		return PlannedWrite{}, fmt.Errorf("%w: reading existing workspace file %s: %v", opkgerr.ErrConfig, c.workspacePath, err)
	}

	if bytes.Equal(existing, c.content) {
		return PlannedWrite{Canonical: c.canonical, WorkspacePath: c.workspacePath, PlatformID: c.platformID, Content: c.content, Existing: existing, Action: ActionUnchanged}, nil
	}

	strategy := opts.DefaultStrategy
	if strategy == StrategyAsk {
		if opts.Resolve == nil {
			strategy = StrategySkip
		} else {
			resolved, err := opts.Resolve(c.canonical, c.workspacePath)
			if err != nil {
				return PlannedWrite{}, err
			}
			strategy = resolved
		}
	}

	switch strategy {
	case StrategyOverwrite:
		return PlannedWrite{Canonical: c.canonical, WorkspacePath: c.workspacePath, PlatformID: c.platformID, Content: c.content, Existing: existing, Action: ActionOverwritten}, nil
	case StrategySkip:
		return PlannedWrite{Canonical: c.canonical, WorkspacePath: c.workspacePath, PlatformID: c.platformID, Content: c.content, Existing: existing, Action: ActionSkipped}, nil
	case StrategyKeepBoth:
		renamed := disambiguate(dest)
		relRenamed, err := filepath.Rel(e.WorkspaceRoot, renamed)
		if err != nil {
			return PlannedWrite{}, fmt.Errorf("%w: %v", opkgerr.ErrConfig, err)
		}
		return PlannedWrite{Canonical: c.canonical, WorkspacePath: filepath.ToSlash(relRenamed), PlatformID: c.platformID, Content: c.content, Existing: existing, Action: ActionRenamed}, nil
	default:
		return PlannedWrite{}, fmt.Errorf("%w: unresolved conflict strategy for %s", opkgerr.ErrValidation, c.workspacePath)
	}
}

// disambiguate finds the first "<stem>.<n><ext>" path that doesn't already
// exist, starting at n=1.
func disambiguate(dest string) string {
	dir := filepath.Dir(dest)
	ext := filepath.Ext(dest)
	stem := dest[:len(dest)-len(ext)]
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s.%d%s", filepath.Base(stem), n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func (e *Engine) planRootFiles(rootBodies map[string][]byte) []RootFileUpdate {
	universal, hasUniversal := rootBodies["AGENTS.md"]

	targets := map[string]bool{}
	if hasUniversal {
		targets["AGENTS.md"] = true
	}
	for _, p := range e.Platforms {
		if p.RootFile != "" {
			targets[p.RootFile] = true
		}
	}

	var names []string
	for rf := range targets {
		names = append(names, rf)
	}
	sort.Strings(names)

	var out []RootFileUpdate
	for _, rf := range names {
		body, ok := rootBodies[rf]
		if !ok {
			body, ok = universal, hasUniversal
		}
		if !ok {
			continue
		}
		out = append(out, RootFileUpdate{Path: rf, Body: body})
	}
	return out
}

// Apply performs plan's file writes (fanned out with bounded concurrency,
// all awaited before anything else), then the package index, then the
// root-file merges, in that order, matching the C9 ordering guarantee.
func (e *Engine) Apply(ctx context.Context, plan Plan) error {
	if err := e.applyWrites(ctx, plan.Writes, plan.Concurrency); err != nil {
		return err
	}

	rec := pkgindex.Record{Workspace: plan.Workspace, Files: plan.IndexFiles}
	if err := os.MkdirAll(filepath.Dir(e.IndexPath(plan.Name)), 0o755); err != nil {
		return fmt.Errorf("%w: creating package cache dir: %v", opkgerr.ErrConfig, err)
	}
	if err := rec.Save(e.IndexPath(plan.Name)); err != nil {
		return err
	}

	for _, rf := range plan.RootFiles {
		if err := e.mergeRootFile(plan.Name, rf); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) applyWrites(ctx context.Context, writes []PlannedWrite, concurrency int) error {
	g, ctx := errgroup.WithContext(ctx)
	if concurrency <= 0 {
		concurrency = 8
	}
	sem := make(chan struct{}, concurrency)

	for _, w := range writes {
		if w.Action == ActionSkipped || w.Action == ActionUnchanged {
			continue
		}
		w := w
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()
			return e.writeOne(w)
		})
	}
	return g.Wait()
}

func (e *Engine) writeOne(w PlannedWrite) error {
	dest := filepath.Join(e.WorkspaceRoot, filepath.FromSlash(w.WorkspacePath))
	if err := secureio.ValidateWithinRoot(e.WorkspaceRoot, dest); err != nil {
		return fmt.Errorf("%w: %v", opkgerr.ErrInvalidPackage, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: creating workspace dir: %v", opkgerr.ErrConfig, err)
	}
	if err := os.WriteFile(dest, w.Content, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", opkgerr.ErrConfig, w.WorkspacePath, err)
	}
	return nil
}

func platformIDs(platforms []platform.Platform) []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = p.ID
	}
	return out
}

func registryPath(manifestDir, subdir, rel string) string {
	var parts []string
	if manifestDir != "" {
		parts = append(parts, manifestDir)
	}
	parts = append(parts, subdir, rel)
	return strings.Join(parts, "/")
}
