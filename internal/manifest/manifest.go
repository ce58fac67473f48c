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

// Package manifest defines PackageManifest and WorkspaceManifest, the two
// YAML documents that carry dependency constraints: the former ships inside
// a registry payload, the latter lives at the root of an installed workspace.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
)

// UnversionedSentinel marks a single-file helper package with no version
// lifecycle.
const UnversionedSentinel = "UNVERSIONED"

// Dependency is one entry in a manifest's packages/dev-packages list. When
// Files is non-empty the dependency is partial: only those canonical paths
// are installed.
type Dependency struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version,omitempty"`
	Files   []string `yaml:"files,omitempty"`
}

// Partial reports whether d names a subset of the dependency's files.
func (d Dependency) Partial() bool { return len(d.Files) > 0 }

// PackageManifest is the metadata document inside a registry payload
// (package.yml at the manifest-dir).
type PackageManifest struct {
	Name         string       `yaml:"name"`
	Version      string       `yaml:"version,omitempty"`
	Description  string       `yaml:"description,omitempty"`
	Keywords     []string     `yaml:"keywords,omitempty,flow"`
	Include      []string     `yaml:"include,omitempty"`
	Exclude      []string     `yaml:"exclude,omitempty"`
	Packages     []Dependency `yaml:"packages,omitempty"`
	DevPackages  []Dependency `yaml:"dev-packages,omitempty"`
	Private      bool         `yaml:"private,omitempty"`
	Partial      bool         `yaml:"partial,omitempty"`
}

// Validate checks PackageManifest invariants: a well-formed name, a version
// unless the package is explicitly UNVERSIONED.
func (m PackageManifest) Validate() error {
	if _, err := pkgname.Parse(m.Name); err != nil {
		return fmt.Errorf("%w: manifest name: %v", opkgerr.ErrValidation, err)
	}
	if m.Version == "" {
		return fmt.Errorf("%w: manifest missing version (use %q for single-file packages)", opkgerr.ErrValidation, UnversionedSentinel)
	}
	return nil
}

// ParsePackageManifest parses raw YAML bytes into a PackageManifest.
func ParsePackageManifest(data []byte) (PackageManifest, error) {
	var m PackageManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return PackageManifest{}, fmt.Errorf("%w: parsing package manifest: %v", opkgerr.ErrInvalidPackage, err)
	}
	return m, nil
}

// Marshal renders m back to YAML bytes, scoped names always double-quoted so
// the leading "@" never looks like a YAML alias.
func (m PackageManifest) Marshal() ([]byte, error) {
	node, err := marshalQuotingScopedName(m)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

// marshalQuotingScopedName marshals v to a yaml.Node tree, then forces the
// top-level "name" scalar (when it starts with "@") into double-quoted
// style.
func marshalQuotingScopedName(v any) (*yaml.Node, error) {
	var doc yaml.Node
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return &doc, nil
	}
	mapping := doc.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		val := mapping.Content[i+1]
		if key.Value == "name" && strings.HasPrefix(val.Value, "@") {
			val.Style = yaml.DoubleQuotedStyle
		}
	}
	return &doc, nil
}

// WorkspaceManifest is the root package.yml of an installed workspace: it
// carries the same dependency lists as PackageManifest, plus workspace-only
// bookkeeping (the self-reference used by save).
type WorkspaceManifest struct {
	Name        string       `yaml:"name,omitempty"`
	Version     string       `yaml:"version,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Packages    []Dependency `yaml:"packages,omitempty"`
	DevPackages []Dependency `yaml:"dev-packages,omitempty"`

	// Extra preserves any keys this version of opkg does not recognise, so
	// round-tripping a newer manifest never silently drops data.
	Extra map[string]yaml.Node `yaml:",inline"`
}

// LoadWorkspaceManifest reads and parses the workspace manifest at path. A
// missing file is not an error: callers create it lazily on first write.
func LoadWorkspaceManifest(path string) (WorkspaceManifest, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return WorkspaceManifest{}, false, nil
	}
	if err != nil {
		return WorkspaceManifest{}, false, fmt.Errorf("%w: reading workspace manifest: %v", opkgerr.ErrConfig, err)
	}
	var m WorkspaceManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return WorkspaceManifest{}, false, fmt.Errorf("%w: parsing workspace manifest: %v", opkgerr.ErrConfig, err)
	}
	return m, true, nil
}

// Save writes m to path as YAML, creating parent directories as needed.
func (m WorkspaceManifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("%w: marshalling workspace manifest: %v", opkgerr.ErrConfig, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing workspace manifest: %v", opkgerr.ErrConfig, err)
	}
	return nil
}

// UpsertDependency adds dep to Packages (or DevPackages, if dev is true),
// replacing any existing entry with the same name.
func (m *WorkspaceManifest) UpsertDependency(dep Dependency, dev bool) {
	list := &m.Packages
	if dev {
		list = &m.DevPackages
	}
	for i, existing := range *list {
		if existing.Name == dep.Name {
			(*list)[i] = dep
			return
		}
	}
	*list = append(*list, dep)
}

// RemoveDependency removes any Packages/DevPackages entry named name,
// reporting whether one was found.
func (m *WorkspaceManifest) RemoveDependency(name string) bool {
	found := false
	m.Packages, found = removeByName(m.Packages, name, found)
	m.DevPackages, found = removeByName(m.DevPackages, name, found)
	return found
}

func removeByName(deps []Dependency, name string, foundSoFar bool) ([]Dependency, bool) {
	out := deps[:0:0]
	found := foundSoFar
	for _, d := range deps {
		if d.Name == name {
			found = true
			continue
		}
		out = append(out, d)
	}
	return out, found
}
