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
	"context"
	"fmt"

	"github.com/openpackage-dev/opkg/internal/pkgindex"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/resolver"
	"github.com/openpackage-dev/opkg/internal/store"
	"github.com/openpackage-dev/opkg/internal/sync"
)

// InstallResult reports what Install resolved and materialised. Applied is
// false for a dry run: Plan and Diffs describe what would have happened,
// but nothing was written and the workspace manifest was not updated.
type InstallResult struct {
	Name    pkgname.Name
	Version string
	Source  resolver.Source
	Plan    sync.Plan
	Diffs   []sync.FileDiff
	Applied bool
}

// InstallOne resolves spec.Name's version under ropts, fetching it from the
// remote registry into the local store first if it isn't cached locally,
// then materialises it into the workspace and records the dependency. dev
// files dev-packages instead of packages; paths, if non-empty, restricts
// the install to those canonical paths (a partial install). When dryRun is
// true, InstallOne stops after planning (spec 4.9 "Dry run"): it neither
// writes to the workspace nor records the dependency.
func InstallOne(ctx context.Context, c *Context, spec pkgname.InstallSpec, dev bool, ropts ResolveOpts, paths []string, sopts sync.Options, dryRun bool) (InstallResult, error) {
	constraint := spec.Version
	if constraint == "" {
		constraint = "*"
	}

	res, err := resolver.Resolve(ctx, constraint, ropts.mode(), c.sourcesFor(spec.Name), ropts.selectOptions())
	if err != nil {
		return InstallResult{}, err
	}

	state, err := c.Store.VersionStateOf(spec.Name, res.Version)
	if err != nil {
		return InstallResult{}, err
	}
	if !state.Exists {
		if _, err := Pull(ctx, c, pkgname.InstallSpec{Name: spec.Name, Version: res.Version}, false); err != nil {
			return InstallResult{}, err
		}
	}

	files, err := c.Store.Load(spec.Name, res.Version)
	if err != nil {
		return InstallResult{}, err
	}
	if spec.RegistryPath != "" && len(paths) == 0 {
		paths = []string{spec.RegistryPath}
	}
	if len(paths) > 0 {
		files = filterPayload(files, paths)
	}

	engine := c.Workspace.Engine
	previousIndex, err := pkgindex.Load(engine.IndexPath(spec.Name))
	if err != nil {
		return InstallResult{}, err
	}

	plan, err := engine.Plan(spec.Name, res.Version, files, "", previousIndex, sopts)
	if err != nil {
		return InstallResult{}, err
	}

	if dryRun {
		diffs, err := plan.Diffs()
		if err != nil {
			return InstallResult{}, err
		}
		return InstallResult{Name: spec.Name, Version: res.Version, Source: res.Source, Plan: plan, Diffs: diffs}, nil
	}

	if err := engine.Apply(ctx, plan); err != nil {
		return InstallResult{}, err
	}

	dep := plan.Dependency
	dep.Files = paths
	c.Workspace.Manifest.UpsertDependency(dep, dev)
	if err := c.Workspace.Save(); err != nil {
		return InstallResult{}, err
	}

	return InstallResult{Name: spec.Name, Version: res.Version, Source: res.Source, Plan: plan, Applied: true}, nil
}

// filterPayload keeps only the manifest plus the requested canonical paths
// (and anything nested under a requested directory prefix).
func filterPayload(files []store.File, paths []string) []store.File {
	want := map[string]bool{}
	for _, p := range paths {
		want[p] = true
	}
	var out []store.File
	for _, f := range files {
		if f.Path == pkgname.ManifestFileName || want[f.Path] || hasPrefixAny(f.Path, paths) {
			out = append(out, f)
		}
	}
	return out
}

func hasPrefixAny(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(path) > len(p) && path[:len(p)] == p && path[len(p)] == '/' {
			return true
		}
	}
	return false
}

// Install resolves and materialises every dependency already declared in
// the workspace manifest, in declaration order (spec 5's ordering
// guarantee), stopping at the first failure. A dryRun leaves every
// dependency's current install untouched, returning what each would do.
func Install(ctx context.Context, c *Context, ropts ResolveOpts, sopts sync.Options, dryRun bool) ([]InstallResult, error) {
	var results []InstallResult
	for _, dev := range []bool{false, true} {
		deps := c.Workspace.Manifest.Packages
		if dev {
			deps = c.Workspace.Manifest.DevPackages
		}
		for _, dep := range deps {
			name, err := pkgname.Parse(dep.Name)
			if err != nil {
				return results, err
			}
			spec := pkgname.InstallSpec{Name: name, Version: dep.Version}
			r, err := InstallOne(ctx, c, spec, dev, ropts, dep.Files, sopts, dryRun)
			if err != nil {
				return results, fmt.Errorf("installing %s: %w", dep.Name, err)
			}
			results = append(results, r)
		}
	}
	return results, nil
}
