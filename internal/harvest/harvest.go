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

// Package harvest is the Save/Pack Engine (C10): it walks a workspace's
// detected platforms and in-workspace package cache to reconstruct a
// package's canonical payload, for saving as a WIP version or packing as a
// stable release.
package harvest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/openpackage-dev/opkg/internal/mapping"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/platform"
	"github.com/openpackage-dev/opkg/internal/store"
)

// Source identifies where a harvested candidate's content was found.
type Source int

const (
	SourceWorkspace Source = iota
	SourceLocal
)

// Candidate is one canonical path's content as harvested from one source.
type Candidate struct {
	Canonical     string
	WorkspacePath string // only set for SourceWorkspace candidates
	Content       []byte
	Hash          string
	Source        Source
}

func hashOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HarvestWorkspace walks every detected platform's universal subdirectories
// under workspaceRoot, mapping each file back to its canonical path via C4.
// Platform root files are not walked. manifestDir is the manifest-dir this package's
// canonical paths live under ("" for a top-level package).
//
// Known limitation: FromWorkspace cannot reconstruct whether a workspace
// file originated from a base fan-out or a platform override (the reverse
// mapping loses that distinction), so a package harvested after a manual
// edit to an override's rendered file will be folded back in as if it were
// the base content. This mirrors the spec's C4 reverse-mapping contract,
// which is deliberately best-effort.
func HarvestWorkspace(workspaceRoot string, platforms []platform.Platform, manifestDir string) ([]Candidate, error) {
	seenDirs := map[string]bool{}
	byCanonical := map[string][]Candidate{}

	for _, p := range platforms {
		for _, sd := range p.Subdirs {
			if seenDirs[sd.Path] {
				continue
			}
			seenDirs[sd.Path] = true

			full := filepath.Join(workspaceRoot, filepath.FromSlash(sd.Path))
			err := filepath.Walk(full, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					if os.IsNotExist(err) {
						return nil
					}
					return err
				}
				if info.IsDir() {
					return nil
				}
				rel, relErr := filepath.Rel(workspaceRoot, path)
				if relErr != nil {
					return relErr
				}
				relSlash := filepath.ToSlash(rel)
				canonical, ok := mapping.FromWorkspace(relSlash, manifestDir)
				if !ok {
					return nil
				}
				content, readErr := os.ReadFile(path)
				if readErr != nil {
					return readErr
				}
				byCanonical[canonical] = append(byCanonical[canonical], Candidate{
					Canonical:     canonical,
					WorkspacePath: relSlash,
					Content:       content,
					Hash:          hashOf(content),
					Source:        SourceWorkspace,
				})
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("%w: walking %s: %v", opkgerr.ErrConfig, sd.Path, err)
			}
		}
	}

	return dedupeByCanonical(byCanonical), nil
}

// dedupeByCanonical groups platform-specific candidates under their
// canonical base (per spec 4.10 step 3) by picking the alphabetically first
// workspace path's content when more than one platform produced the same
// canonical path, which keeps the choice deterministic across runs.
func dedupeByCanonical(byCanonical map[string][]Candidate) []Candidate {
	out := make([]Candidate, 0, len(byCanonical))
	for _, group := range byCanonical {
		sort.Slice(group, func(i, j int) bool { return group[i].WorkspacePath < group[j].WorkspacePath })
		out = append(out, group[0])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

// HarvestLocal walks the workspace's in-workspace package cache directory
// for name (see sync.Engine.PackageCacheDir), yielding a candidate for
// every "workspace path" file the package previously installed there.
func HarvestLocal(cacheDir string) ([]Candidate, error) {
	var out []Candidate
	err := filepath.Walk(cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(cacheDir, path)
		if relErr != nil {
			return relErr
		}
		relSlash := filepath.ToSlash(rel)
		if relSlash == pkgname.IndexFileName {
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		out = append(out, Candidate{Canonical: relSlash, Content: content, Hash: hashOf(content), Source: SourceLocal})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking package cache: %v", opkgerr.ErrConfig, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out, nil
}

// ResolveConflicts merges workspace and local candidates into the final
// canonical -> content map that becomes the saved payload. When a canonical
// path exists on both sides with differing content, the workspace
// candidate wins iff preferWorkspace is set (the "user/force says so" case
// in spec 4.10 step 3); otherwise the local (previously-saved) candidate is
// kept unchanged.
func ResolveConflicts(workspaceCandidates, localCandidates []Candidate, preferWorkspace bool) map[string][]byte {
	out := map[string][]byte{}
	for _, c := range localCandidates {
		out[c.Canonical] = c.Content
	}
	for _, c := range workspaceCandidates {
		existing, ok := out[c.Canonical]
		if !ok {
			out[c.Canonical] = c.Content
			continue
		}
		if hashOf(existing) == c.Hash {
			continue
		}
		if preferWorkspace {
			out[c.Canonical] = c.Content
		}
	}
	return out
}

// BuildPayload renders a resolved canonical->content map plus the package
// manifest into a store.File slice ready for store.Store.Save.
func BuildPayload(manifestBytes []byte, content map[string][]byte) []store.File {
	out := make([]store.File, 0, len(content)+1)
	out = append(out, store.File{Path: pkgname.ManifestFileName, Content: manifestBytes})
	for canonical, data := range content {
		out = append(out, store.File{Path: canonical, Content: data})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
