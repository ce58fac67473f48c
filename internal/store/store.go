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

// Package store is the Local Registry Store: an on-disk package cache keyed
// by (name, version), owning the full payload under
// <store>/<name>/<version>/.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-slug"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/secureio"
	"github.com/openpackage-dev/opkg/internal/semver"
)

// Store is the local registry store rooted at Root.
type Store struct {
	Root string
}

// New returns a Store rooted at root, creating the directory if missing.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating store root: %v", opkgerr.ErrConfig, err)
	}
	return &Store{Root: root}, nil
}

// DefaultRoot returns ~/.openpackage/store, the CLI's default store
// location when --store-dir is not given.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving home directory: %v", opkgerr.ErrConfig, err)
	}
	return filepath.Join(home, ".openpackage", "store"), nil
}

// VersionState describes the on-disk state of one (name, version) slot.
type VersionState struct {
	Exists    bool
	IsPartial bool
	Paths     []string // canonical paths present in the payload, sorted
}

func (s *Store) versionDir(name pkgname.Name, version string) string {
	return filepath.Join(s.Root, filepath.FromSlash(name.DirName()), version)
}

// Names enumerates every package name with at least one version stored,
// sorted alphabetically by canonical name. Scoped names live two directory
// levels deep ("@scope/name"); unscoped names live one level deep.
func (s *Store) Names() ([]pkgname.Name, error) {
	entries, err := os.ReadDir(s.Root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing store root: %v", opkgerr.ErrConfig, err)
	}

	var names []pkgname.Name
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ".wip-counters" {
			continue
		}
		if strings.HasPrefix(e.Name(), "@") {
			scoped, err := os.ReadDir(filepath.Join(s.Root, e.Name()))
			if err != nil {
				return nil, fmt.Errorf("%w: listing scope %s: %v", opkgerr.ErrConfig, e.Name(), err)
			}
			for _, se := range scoped {
				if !se.IsDir() {
					continue
				}
				n, err := pkgname.Parse(e.Name() + "/" + se.Name())
				if err != nil {
					continue
				}
				names = append(names, n)
			}
			continue
		}
		n, err := pkgname.Parse(e.Name())
		if err != nil {
			continue
		}
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].String() < names[j].String() })
	return names, nil
}

// List enumerates the versions stored for name, semver-sorted descending.
func (s *Store) List(name pkgname.Name) ([]string, error) {
	dir := filepath.Join(s.Root, filepath.FromSlash(name.DirName()))
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: listing versions for %s: %v", opkgerr.ErrConfig, name, err)
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		cmp, err := semver.Compare(versions[i], versions[j])
		if err != nil {
			return versions[i] > versions[j]
		}
		return cmp > 0
	})
	return versions, nil
}

// VersionStateOf inspects the on-disk state of (name, version) without
// loading file contents. A missing manifest is defensively treated as
// partial, so a corrupted write never silently masquerades as complete.
func (s *Store) VersionStateOf(name pkgname.Name, version string) (VersionState, error) {
	dir := s.versionDir(name, version)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return VersionState{}, nil
	} else if err != nil {
		return VersionState{}, fmt.Errorf("%w: inspecting %s@%s: %v", opkgerr.ErrConfig, name, version, err)
	}

	paths, err := listPayloadPaths(dir)
	if err != nil {
		return VersionState{}, err
	}

	manifestPath := filepath.Join(dir, pkgname.ManifestFileName)
	data, err := os.ReadFile(manifestPath)
	if os.IsNotExist(err) {
		return VersionState{Exists: true, IsPartial: true, Paths: paths}, nil
	}
	if err != nil {
		return VersionState{}, fmt.Errorf("%w: reading manifest for %s@%s: %v", opkgerr.ErrConfig, name, version, err)
	}
	m, err := manifest.ParsePackageManifest(data)
	if err != nil {
		return VersionState{Exists: true, IsPartial: true, Paths: paths}, nil
	}
	return VersionState{Exists: true, IsPartial: m.Partial, Paths: paths}, nil
}

// SaveOptions configures Save.
type SaveOptions struct {
	Partial bool
}

// File is one canonical path and its content, as stored inside a version
// directory.
type File struct {
	Path    string // forward-slash, relative to the version directory
	Content []byte
}

// Save writes files into <root>/<name>/<version>/, creating the directory
// if missing. If opts.Partial is set, the manifest among files must already
// carry partial: true (callers are responsible for that invariant; Save
// itself only persists what it's given).
func (s *Store) Save(name pkgname.Name, version string, files []File, opts SaveOptions) error {
	dir := s.versionDir(name, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating version dir: %v", opkgerr.ErrConfig, err)
	}

	for _, f := range files {
		dest := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := secureio.ValidateWithinRoot(dir, dest); err != nil {
			return fmt.Errorf("%w: %v", opkgerr.ErrInvalidPackage, err)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("%w: creating payload dir: %v", opkgerr.ErrConfig, err)
		}
		if err := os.WriteFile(dest, f.Content, 0o644); err != nil {
			return fmt.Errorf("%w: writing payload file %s: %v", opkgerr.ErrConfig, f.Path, err)
		}
	}
	return nil
}

// Load reads every file under (name, version) into memory. Fails with
// opkgerr.ErrPackageNotFound if the version directory doesn't exist.
func (s *Store) Load(name pkgname.Name, version string) ([]File, error) {
	dir := s.versionDir(name, version)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s@%s", opkgerr.ErrPackageNotFound, name, version)
	}

	paths, err := listPayloadPaths(dir)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", opkgerr.ErrInvalidPackage, p, err)
		}
		files = append(files, File{Path: p, Content: data})
	}
	return files, nil
}

// Delete removes one version directory, or the whole name directory if
// version is "".
func (s *Store) Delete(name pkgname.Name, version string) error {
	var dir string
	if version == "" {
		dir = filepath.Join(s.Root, filepath.FromSlash(name.DirName()))
	} else {
		dir = s.versionDir(name, version)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: deleting %s: %v", opkgerr.ErrConfig, name, err)
	}
	return nil
}

// Export packs a version directory into a gzipped tar stream, for use as a
// pull/push payload body.
func (s *Store) Export(name pkgname.Name, version string, w io.Writer) (*slug.Meta, error) {
	dir := s.versionDir(name, version)
	meta, err := slug.Pack(dir, w, false)
	if err != nil {
		return nil, fmt.Errorf("%w: packing %s@%s: %v", opkgerr.ErrInvalidPackage, name, version, err)
	}
	return meta, nil
}

// Import unpacks a gzipped tar stream into a version directory, creating it
// if missing.
func (s *Store) Import(name pkgname.Name, version string, r io.Reader) error {
	dir := s.versionDir(name, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating version dir: %v", opkgerr.ErrConfig, err)
	}
	if err := slug.Unpack(r, dir); err != nil {
		return fmt.Errorf("%w: unpacking %s@%s: %v", opkgerr.ErrIntegrity, name, version, err)
	}
	return nil
}

// listPayloadPaths walks dir and returns every regular file's path relative
// to dir, forward-slash normalised and sorted.
func listPayloadPaths(dir string) ([]string, error) {
	var out []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking payload: %v", opkgerr.ErrConfig, err)
	}
	sort.Strings(out)
	return out, nil
}
