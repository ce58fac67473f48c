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

// Package pkgindex maintains the per-package index: a durable record of
// which workspace files a package's canonical paths materialised into,
// surviving partial installs, conflicts, and renames.
package pkgindex

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
)

// Workspace identifies the installed workspace an index record belongs to.
type Workspace struct {
	Hash    string `yaml:"hash"`
	Version string `yaml:"version"`
}

// Record is one package's index: the set of canonical-path keys (file keys
// or directory keys) mapped to the workspace paths they materialised.
type Record struct {
	Workspace Workspace           `yaml:"workspace"`
	Files     map[string][]string `yaml:"files"`
}

// NewRecord returns an empty Record for the given workspace identity.
func NewRecord(hash, version string) Record {
	return Record{Workspace: Workspace{Hash: hash, Version: version}, Files: map[string][]string{}}
}

// Load reads and parses the index file at path. A missing file yields an
// empty Record, not an error.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Record{Files: map[string][]string{}}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: reading package index: %v", opkgerr.ErrConfig, err)
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("%w: parsing package index: %v", opkgerr.ErrConfig, err)
	}
	if r.Files == nil {
		r.Files = map[string][]string{}
	}
	return r, nil
}

// indexHeaderComment is prepended to every saved index file so a user
// editing the workspace by hand knows not to touch it.
const indexHeaderComment = "# This file is managed by OpenPackage. Do not edit manually.\n"

// Save writes r to path as sorted, deterministic YAML, preceded by
// indexHeaderComment.
func (r Record) Save(path string) error {
	r.normalize()
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("%w: marshalling package index: %v", opkgerr.ErrConfig, err)
	}
	data = append([]byte(indexHeaderComment), data...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing package index: %v", opkgerr.ErrConfig, err)
	}
	return nil
}

// normalize sorts every key's value slice and removes duplicates, keeping
// the on-disk form deterministic across rebuilds.
func (r Record) normalize() {
	for k, v := range r.Files {
		sort.Strings(v)
		r.Files[k] = dedupeSorted(v)
	}
}

func dedupeSorted(sorted []string) []string {
	out := sorted[:0:0]
	var prev string
	for i, s := range sorted {
		if i > 0 && s == prev {
			continue
		}
		out = append(out, s)
		prev = s
	}
	return out
}

// isDirKey reports whether key is a directory key (ends with "/").
func isDirKey(key string) bool { return strings.HasSuffix(key, "/") }

// Rebuild replaces r's file keys for the materialisation described by
// current — a map from canonical registry path to the full set of
// workspace paths it currently produces — applying stale-key pruning,
// directory-key collapsing, and override pruning.
func Rebuild(previous Record, current map[string][]string, overriddenCoverage map[string]bool) Record {
	out := Record{Workspace: previous.Workspace, Files: map[string][]string{}}

	for regPath, workspacePaths := range current {
		wp := append([]string{}, workspacePaths...)
		wp = pruneOverriddenCoverage(wp, overriddenCoverage)
		if len(wp) == 0 {
			continue
		}
		sort.Strings(wp)
		out.Files[regPath] = dedupeSorted(wp)
	}

	return collapseDirectoryKeys(out)
}

func pruneOverriddenCoverage(paths []string, overridden map[string]bool) []string {
	if len(overridden) == 0 {
		return paths
	}
	var out []string
	for _, p := range paths {
		if overridden[p] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// collapseDirectoryKeys looks for groups of exact-path keys sharing a
// "<subdir>/<firstSegment>/" prefix and collapses them into a single
// directory key whose values are the deduplicated, nested-pruned parent
// directories of the underlying file targets.
func collapseDirectoryKeys(r Record) Record {
	groups := map[string][]string{} // prefix -> registry path keys
	for key := range r.Files {
		if isDirKey(key) {
			continue
		}
		prefix := sectionPrefix(key)
		if prefix == "" {
			continue
		}
		groups[prefix] = append(groups[prefix], key)
	}

	out := Record{Workspace: r.Workspace, Files: map[string][]string{}}
	collapsed := map[string]bool{}

	for prefix, keys := range groups {
		if len(keys) < 2 {
			continue
		}
		var dirs []string
		for _, k := range keys {
			for _, wp := range r.Files[k] {
				dirs = append(dirs, path.Dir(wp)+"/")
			}
			collapsed[k] = true
		}
		out.Files[prefix] = pruneNestedDirs(dedupeSorted(sortedCopy(dirs)))
	}

	for key, vals := range r.Files {
		if collapsed[key] {
			continue
		}
		out.Files[key] = vals
	}

	return out
}

func sortedCopy(s []string) []string {
	out := append([]string{}, s...)
	sort.Strings(out)
	return out
}

// pruneNestedDirs drops any directory that is a strict descendant of
// another directory already in the set, e.g. keeps "skills/x/" and drops
// "skills/x/y/".
func pruneNestedDirs(dirs []string) []string {
	var out []string
	for _, d := range dirs {
		nested := false
		for _, other := range dirs {
			if other != d && strings.HasPrefix(d, other) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, d)
		}
	}
	return out
}

// sectionPrefix returns "<subdir>/<firstSegment>/" for a universal canonical
// path, or "" if key has fewer than two path segments.
func sectionPrefix(key string) string {
	parts := strings.SplitN(key, "/", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[0] + "/" + parts[1] + "/"
}

// Merge unions previous's values into rebuilt for shared keys (directory
// keys unioned then re-pruned; file keys unioned and sorted), implementing
// the "union-and-sort" rebuild policy as an alternative to full replace.
func Merge(previous, rebuilt Record) Record {
	out := Record{Workspace: rebuilt.Workspace, Files: map[string][]string{}}
	for k, v := range rebuilt.Files {
		out.Files[k] = append([]string{}, v...)
	}
	for k, v := range previous.Files {
		out.Files[k] = dedupeSorted(sortedCopy(append(out.Files[k], v...)))
	}
	for k, v := range out.Files {
		if isDirKey(k) {
			out.Files[k] = pruneNestedDirs(v)
		}
	}
	return out
}
