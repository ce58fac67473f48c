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
	"fmt"
	"os"
	"path/filepath"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/store"
)

// SingleFileHelperName is the special package name that collects ad-hoc
// single files saved outside of any package's manifest dir (spec 4.10
// "Single-file save").
const SingleFileHelperName = "f"

// AddSingleFile appends relPath (workspace-relative, forward-slash) to the
// "f" helper package's file list in ws, then re-saves the helper package's
// full payload so every previously-added file is re-emitted alongside the
// new one.
func (p *Pipeline) AddSingleFile(ws *manifest.WorkspaceManifest, relPath string) error {
	name, err := pkgname.Parse(SingleFileHelperName)
	if err != nil {
		return err
	}

	dep := findDependency(ws.Packages, name.String())
	if !containsString(dep.Files, relPath) {
		dep.Files = append(dep.Files, relPath)
	}
	dep.Name = name.String()
	ws.UpsertDependency(dep, false)

	payload, err := p.buildSingleFilePayload(name, dep.Files)
	if err != nil {
		return err
	}

	version := manifest.UnversionedSentinel
	if err := p.Store.Delete(name, version); err != nil {
		return err
	}
	return p.Store.Save(name, version, payload, store.SaveOptions{})
}

func (p *Pipeline) buildSingleFilePayload(name pkgname.Name, files []string) ([]store.File, error) {
	content := map[string][]byte{}
	for _, rel := range files {
		full := filepath.Join(p.WorkspaceRoot, filepath.FromSlash(rel))
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("%w: reading single-file save entry %s: %v", opkgerr.ErrConfig, rel, err)
		}
		content[rel] = data
	}

	m := manifest.PackageManifest{Name: name.String(), Version: manifest.UnversionedSentinel}
	manifestBytes, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	return BuildPayload(manifestBytes, content), nil
}

func findDependency(deps []manifest.Dependency, name string) manifest.Dependency {
	for _, d := range deps {
		if d.Name == name {
			return d
		}
	}
	return manifest.Dependency{Name: name}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
