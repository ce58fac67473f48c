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
	"fmt"
	"os"
	"strings"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/semver"
	"github.com/openpackage-dev/opkg/internal/store"
)

// Init creates an empty workspace manifest named name at c.Workspace.Root,
// refusing to overwrite an existing one.
func Init(c *Context, name string) error {
	if _, err := os.Stat(c.Workspace.ManifestPath); err == nil {
		return fmt.Errorf("%w: %s already has a package.yml", opkgerr.ErrConflict, c.Workspace.Root)
	}
	if _, err := pkgname.Parse(name); err != nil {
		return err
	}
	c.Workspace.Manifest = manifest.WorkspaceManifest{Name: name}
	return c.Workspace.Save()
}

// Uninstall removes name's dependency entry from the workspace manifest.
// It does not delete the package's files from the workspace; re-running
// install after editing package.yml is how a file set shrinks, matching
// the index-driven, idempotent-sync model (spec C6/C9).
func Uninstall(c *Context, nameRaw string) error {
	name, err := pkgname.Parse(nameRaw)
	if err != nil {
		return err
	}
	if !c.Workspace.Manifest.RemoveDependency(name.String()) {
		return fmt.Errorf("%w: %s is not installed", opkgerr.ErrPackageNotFound, name)
	}
	return c.Workspace.Save()
}

// DependencyStatus reports one workspace dependency's declared vs.
// locally-cached state.
type DependencyStatus struct {
	Name            string
	DeclaredVersion string
	Dev             bool
	LocalVersions   []string
	Partial         bool
}

// Status reports every workspace dependency's declared constraint next to
// what's available in the local store.
func Status(c *Context) ([]DependencyStatus, error) {
	var out []DependencyStatus
	for _, dev := range []bool{false, true} {
		deps := c.Workspace.Manifest.Packages
		if dev {
			deps = c.Workspace.Manifest.DevPackages
		}
		for _, dep := range deps {
			name, err := pkgname.Parse(dep.Name)
			if err != nil {
				return nil, err
			}
			versions, err := c.Store.List(name)
			if err != nil {
				return nil, err
			}
			out = append(out, DependencyStatus{
				Name:            dep.Name,
				DeclaredVersion: dep.Version,
				Dev:             dev,
				LocalVersions:   versions,
				Partial:         dep.Partial(),
			})
		}
	}
	return out, nil
}

// List returns every workspace dependency's name (runtime then dev),
// matching declaration order.
func List(c *Context) []manifest.Dependency {
	out := make([]manifest.Dependency, 0, len(c.Workspace.Manifest.Packages)+len(c.Workspace.Manifest.DevPackages))
	out = append(out, c.Workspace.Manifest.Packages...)
	out = append(out, c.Workspace.Manifest.DevPackages...)
	return out
}

// ShowResult is one package's full local detail: every version cached
// locally and (when it's a workspace dependency) its declared constraint.
type ShowResult struct {
	Name          pkgname.Name
	LocalVersions []string
	Declared      string
}

// Show reports everything known locally about nameRaw.
func Show(c *Context, nameRaw string) (ShowResult, error) {
	name, err := pkgname.Parse(nameRaw)
	if err != nil {
		return ShowResult{}, err
	}
	versions, err := c.Store.List(name)
	if err != nil {
		return ShowResult{}, err
	}
	declared := ""
	for _, dep := range List(c) {
		if dep.Name == name.String() {
			declared = dep.Version
		}
	}
	return ShowResult{Name: name, LocalVersions: versions, Declared: declared}, nil
}

// Duplicate copies every version of src to dst in the local registry store,
// rewriting each version's manifest name field, leaving src untouched
// (unlike Save's rename, which moves rather than copies).
func Duplicate(c *Context, srcRaw, dstRaw string) error {
	src, err := pkgname.Parse(srcRaw)
	if err != nil {
		return err
	}
	dst, err := pkgname.Parse(dstRaw)
	if err != nil {
		return err
	}

	versions, err := c.Store.List(src)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return fmt.Errorf("%w: %s has no local versions to duplicate", opkgerr.ErrPackageNotFound, src)
	}

	for _, v := range versions {
		files, err := c.Store.Load(src, v)
		if err != nil {
			return err
		}
		for i, f := range files {
			if f.Path != pkgname.ManifestFileName {
				continue
			}
			m, err := manifest.ParsePackageManifest(f.Content)
			if err != nil {
				return err
			}
			m.Name = dst.String()
			rewritten, err := m.Marshal()
			if err != nil {
				return err
			}
			files[i].Content = rewritten
		}
		if err := c.Store.Delete(dst, v); err != nil {
			return err
		}
		state, err := c.Store.VersionStateOf(src, v)
		if err != nil {
			return err
		}
		if err := c.Store.Save(dst, v, files, store.SaveOptions{Partial: state.IsPartial}); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes nameRaw[@version] from the local registry store. An empty
// version removes every version of the package.
func Delete(c *Context, nameRaw string) error {
	raw := nameRaw
	version := ""
	if idx := strings.LastIndex(raw, "@"); idx > 0 {
		version = raw[idx+1:]
		raw = raw[:idx]
	}
	name, err := pkgname.Parse(raw)
	if err != nil {
		return err
	}
	if version != "" {
		state, err := c.Store.VersionStateOf(name, version)
		if err != nil {
			return err
		}
		if !state.Exists {
			return fmt.Errorf("%w: %s@%s", opkgerr.ErrPackageNotFound, name, version)
		}
	}
	return c.Store.Delete(name, version)
}

// PruneResult reports what Prune removed.
type PruneResult struct {
	Name    string
	Version string
}

// Prune deletes stale WIP versions of nameRaw (every package in the store,
// if nameRaw is empty) that do not belong to this workspace's tag, or that
// share this workspace's tag but are not the most recent one recorded.
func Prune(c *Context, nameRaw string) ([]PruneResult, error) {
	var names []pkgname.Name
	if nameRaw != "" {
		name, err := pkgname.Parse(nameRaw)
		if err != nil {
			return nil, err
		}
		names = []pkgname.Name{name}
	} else {
		all, err := c.Store.Names()
		if err != nil {
			return nil, err
		}
		names = all
	}

	tag := semver.WorkspaceTag(c.Workspace.Root)
	marker := "-wip." + tag + "."

	var out []PruneResult
	for _, name := range names {
		versions, err := c.Store.List(name)
		if err != nil {
			return nil, err
		}
		seenCurrentTag := false
		for _, v := range versions {
			if !strings.Contains(v, "-wip.") {
				continue
			}
			if strings.Contains(v, marker) {
				if seenCurrentTag {
					if err := c.Store.Delete(name, v); err != nil {
						return nil, err
					}
					out = append(out, PruneResult{Name: name.String(), Version: v})
				}
				seenCurrentTag = true
				continue
			}
			if err := c.Store.Delete(name, v); err != nil {
				return nil, err
			}
			out = append(out, PruneResult{Name: name.String(), Version: v})
		}
	}
	return out, nil
}
