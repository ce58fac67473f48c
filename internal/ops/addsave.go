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

	"github.com/openpackage-dev/opkg/internal/harvest"
	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/sync"
)

// Add appends relPath to the single-file helper package f@UNVERSIONED,
// harvesting and re-saving its payload immediately (spec 4.10's
// "Single-file save").
func Add(c *Context, relPath string) error {
	pipeline := harvest.Pipeline{WorkspaceRoot: c.Workspace.Root, Store: c.Store, Engine: c.Workspace.Engine, Counters: c.Counters}
	if err := pipeline.AddSingleFile(&c.Workspace.Manifest, relPath); err != nil {
		return err
	}
	return c.Workspace.Save()
}

// resolvePackageManifest builds name's manifest (the workspace root
// manifest's name when nameRaw is empty) from the workspace root manifest's
// version, description and dependency lists. A nested package's own
// manifest is not consulted.
func resolvePackageManifest(c *Context, nameRaw string) (pkgname.Name, manifest.PackageManifest, error) {
	if nameRaw == "" {
		nameRaw = c.Workspace.Manifest.Name
	}
	name, err := pkgname.Parse(nameRaw)
	if err != nil {
		return pkgname.Name{}, manifest.PackageManifest{}, err
	}

	m := manifest.PackageManifest{
		Name:        name.String(),
		Version:     c.Workspace.Manifest.Version,
		Description: c.Workspace.Manifest.Description,
		Packages:    c.Workspace.Manifest.Packages,
		DevPackages: c.Workspace.Manifest.DevPackages,
	}
	if err := m.Validate(); err != nil {
		return pkgname.Name{}, manifest.PackageManifest{}, err
	}
	return name, m, nil
}

// Save harvests the workspace and writes a new WIP version of nameRaw (the
// workspace's own package if empty), re-syncing the workspace afterwards.
func Save(ctx context.Context, c *Context, nameRaw string, preferWorkspace bool, sopts sync.Options) (harvest.Result, error) {
	name, m, err := resolvePackageManifest(c, nameRaw)
	if err != nil {
		return harvest.Result{}, err
	}

	pipeline := harvest.NewPipeline(c.Workspace.Root, c.Store, c.Counters)
	result, err := pipeline.Save(ctx, name, m, "", preferWorkspace, sopts)
	if err != nil {
		return harvest.Result{}, err
	}

	c.Workspace.Manifest.UpsertDependency(result.Plan.Dependency, false)
	return result, c.Workspace.Save()
}

// Pack harvests the workspace and writes a stable version of nameRaw equal
// to its manifest's version, refusing to overwrite an existing version
// unless force is set.
func Pack(ctx context.Context, c *Context, nameRaw string, force, preferWorkspace bool, sopts sync.Options) (harvest.Result, error) {
	name, m, err := resolvePackageManifest(c, nameRaw)
	if err != nil {
		return harvest.Result{}, err
	}
	if m.Version == "" {
		return harvest.Result{}, fmt.Errorf("%w: %s has no stable version to pack; set one in package.yml", opkgerr.ErrValidation, name)
	}

	pipeline := harvest.NewPipeline(c.Workspace.Root, c.Store, c.Counters)
	result, err := pipeline.Pack(ctx, name, m, "", force, preferWorkspace, sopts)
	if err != nil {
		return harvest.Result{}, err
	}

	c.Workspace.Manifest.UpsertDependency(result.Plan.Dependency, false)
	return result, c.Workspace.Save()
}
