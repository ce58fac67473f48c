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
	"fmt"
	"strings"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgindex"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/platform"
	"github.com/openpackage-dev/opkg/internal/semver"
	"github.com/openpackage-dev/opkg/internal/store"
	"github.com/openpackage-dev/opkg/internal/sync"
)

// Pipeline ties together one workspace's harvesting, conflict resolution,
// payload write, and re-sync, for both the save (WIP) and pack (stable)
// flows.
type Pipeline struct {
	WorkspaceRoot string
	Store         *store.Store
	Engine        *sync.Engine
	Counters      semver.CounterSource
}

// NewPipeline returns a Pipeline over workspaceRoot, detecting platforms
// itself (matching the same detection every other C11 façade operation
// uses).
func NewPipeline(workspaceRoot string, st *store.Store, counters semver.CounterSource) *Pipeline {
	platforms := platform.Detected(workspaceRoot)
	return &Pipeline{
		WorkspaceRoot: workspaceRoot,
		Store:         st,
		Engine:        sync.New(workspaceRoot, platforms),
		Counters:      counters,
	}
}

// Result is what a Save or Pack call returns: the version it wrote, the
// resync plan it applied, and (for Save) the WIP versions it rotated out
// and any WIP cycle policy notice (stream reset or patch continuation).
type Result struct {
	Version string
	Plan    sync.Plan
	Rotated []string
	Notice  string
}

// Save harvests the workspace, writes a new WIP version to the local
// registry store, re-syncs the workspace against it, and rotates out
// stale WIP versions sharing this workspace's tag (spec 4.10 "Save").
//
// Before generating the WIP version it applies the WIP cycle policy
// (spec §4.2) against the last version this workspace recorded in its own
// index: if that version's base differs from m.Version, the stream resets
// and the new WIP cycle starts from m.Version; if that version is already
// stable at m.Version's base (the package was packed since the last save),
// the new cycle starts one patch ahead of it instead of repeating a
// released version.
func (p *Pipeline) Save(ctx context.Context, name pkgname.Name, m manifest.PackageManifest, manifestDir string, preferWorkspace bool, conflictOpts sync.Options) (Result, error) {
	previousIndex, err := pkgindex.Load(p.Engine.IndexPath(name))
	if err != nil {
		return Result{}, err
	}

	base, notice, err := p.wipCycleBase(previousIndex, m.Version)
	if err != nil {
		return Result{}, err
	}

	wip, err := semver.GenerateWip(base, p.WorkspaceRoot, p.Counters)
	if err != nil {
		return Result{}, err
	}

	plan, err := p.writeAndResyncFrom(ctx, name, m, manifestDir, wip, previousIndex, preferWorkspace, conflictOpts)
	if err != nil {
		return Result{}, err
	}

	rotated, err := p.rotateStaleWip(name, wip)
	if err != nil {
		return Result{}, err
	}

	return Result{Version: wip, Plan: plan, Rotated: rotated, Notice: notice}, nil
}

// wipCycleBase implements spec §4.2's WIP cycle policy, returning the base
// version GenerateWip should build the next WIP version from, plus a
// human-readable notice when the policy diverged from simply continuing
// manifestVersion's own stream (empty when it didn't).
func (p *Pipeline) wipCycleBase(previousIndex pkgindex.Record, manifestVersion string) (base, notice string, err error) {
	prevVersion := previousIndex.Workspace.Version
	if prevVersion == "" {
		return manifestVersion, "", nil
	}

	prevBase, err := semver.Base(prevVersion)
	if err != nil {
		return "", "", err
	}
	curBase, err := semver.Base(manifestVersion)
	if err != nil {
		return "", "", err
	}

	if prevBase != curBase {
		return manifestVersion, fmt.Sprintf(
			"workspace version changed from %s to %s; resetting the WIP stream", prevBase, curBase,
		), nil
	}

	if semver.IsStable(prevVersion) {
		next, err := semver.BumpPatch(manifestVersion)
		if err != nil {
			return "", "", err
		}
		return next, fmt.Sprintf(
			"%s is already stable; continuing the WIP stream from %s", prevVersion, next,
		), nil
	}

	return manifestVersion, "", nil
}

// Pack harvests the workspace and writes a new stable version equal to
// m.Version, refusing if that version already exists unless force is set
// (spec 4.10 "Pack"). Pack never rotates other workspaces' WIP copies.
func (p *Pipeline) Pack(ctx context.Context, name pkgname.Name, m manifest.PackageManifest, manifestDir string, force bool, preferWorkspace bool, conflictOpts sync.Options) (Result, error) {
	state, err := p.Store.VersionStateOf(name, m.Version)
	if err != nil {
		return Result{}, err
	}
	if state.Exists && !force {
		return Result{}, fmt.Errorf("%w: %s@%s already exists; pass force to overwrite", opkgerr.ErrConflict, name, m.Version)
	}

	plan, err := p.writeAndResync(ctx, name, m, manifestDir, m.Version, preferWorkspace, conflictOpts)
	if err != nil {
		return Result{}, err
	}
	return Result{Version: m.Version, Plan: plan}, nil
}

func (p *Pipeline) writeAndResync(ctx context.Context, name pkgname.Name, m manifest.PackageManifest, manifestDir, version string, preferWorkspace bool, conflictOpts sync.Options) (sync.Plan, error) {
	previousIndex, err := pkgindex.Load(p.Engine.IndexPath(name))
	if err != nil {
		return sync.Plan{}, err
	}
	return p.writeAndResyncFrom(ctx, name, m, manifestDir, version, previousIndex, preferWorkspace, conflictOpts)
}

// writeAndResyncFrom is writeAndResync given an already-loaded previousIndex,
// so Save can decide the WIP cycle policy (spec §4.2) against the same index
// read it uses to drive the resync, rather than loading it twice.
func (p *Pipeline) writeAndResyncFrom(ctx context.Context, name pkgname.Name, m manifest.PackageManifest, manifestDir, version string, previousIndex pkgindex.Record, preferWorkspace bool, conflictOpts sync.Options) (sync.Plan, error) {
	workspaceCandidates, err := HarvestWorkspace(p.WorkspaceRoot, p.Engine.Platforms, manifestDir)
	if err != nil {
		return sync.Plan{}, err
	}
	localCandidates, err := HarvestLocal(p.Engine.PackageCacheDir(name))
	if err != nil {
		return sync.Plan{}, err
	}
	resolved := ResolveConflicts(workspaceCandidates, localCandidates, preferWorkspace)

	m.Version = version
	manifestBytes, err := m.Marshal()
	if err != nil {
		return sync.Plan{}, err
	}
	payload := BuildPayload(manifestBytes, resolved)

	if err := p.Store.Delete(name, version); err != nil {
		return sync.Plan{}, err
	}
	if err := p.Store.Save(name, version, payload, store.SaveOptions{Partial: m.Partial}); err != nil {
		return sync.Plan{}, err
	}

	plan, err := p.Engine.Plan(name, version, payload, manifestDir, previousIndex, conflictOpts)
	if err != nil {
		return sync.Plan{}, err
	}
	return plan, p.Engine.Apply(ctx, plan)
}

// rotateStaleWip deletes every WIP version of name sharing keepVersion's
// workspace tag but not equal to keepVersion.
func (p *Pipeline) rotateStaleWip(name pkgname.Name, keepVersion string) ([]string, error) {
	tag := semver.WorkspaceTag(p.WorkspaceRoot)
	versions, err := p.Store.List(name)
	if err != nil {
		return nil, err
	}

	var rotated []string
	marker := "-wip." + tag + "."
	for _, v := range versions {
		if v == keepVersion {
			continue
		}
		if !strings.Contains(v, marker) {
			continue
		}
		if err := p.Store.Delete(name, v); err != nil {
			return nil, err
		}
		rotated = append(rotated, v)
	}
	return rotated, nil
}
