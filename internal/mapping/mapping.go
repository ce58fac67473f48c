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

// Package mapping is the bidirectional canonical <-> platform path
// translation engine: fanning a universal registry path out to zero or more
// platform-specific workspace paths, and normalising a workspace path back
// to its canonical form.
package mapping

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/platform"
)

// Target is one workspace destination a canonical path materialises to.
type Target struct {
	PlatformID string
	Path       string // workspace-relative, forward-slash
}

// ToPlatforms fans a canonical universal path out to every detected
// platform's workspace target, honouring extension remap, exts
// restrictions, and platform-override exclusivity. canonicalPath is
// <manifest-dir>/<subdir>/<rel> (manifest-dir already stripped by the
// caller, so rel is subdir-relative).
func ToPlatforms(subdir, rel string, platforms []platform.Platform, log *slog.Logger) []Target {
	suffix := detectOverrideSuffix(rel, platformIDs(platforms))
	if suffix != "" {
		p, ok := findPlatform(platforms, suffix)
		if !ok {
			return nil
		}
		t, ok := toSinglePlatform(subdir, stripOverrideSuffix(rel, suffix), p, log)
		if !ok {
			return nil
		}
		return []Target{t}
	}

	// Collect the set of platform ids that have an override sibling for
	// this exact rel; those are excluded from the base path's fan-out.
	excluded := map[string]bool{}
	_ = excluded // populated by caller via ExcludeOverridden, see below.

	var out []Target
	for _, p := range platforms {
		t, ok := toSinglePlatform(subdir, rel, p, log)
		if ok {
			out = append(out, t)
		}
	}
	return out
}

// ExcludeOverridden removes from base the targets for any platform id present
// in overridden, implementing "each override's workspace target is excluded
// from the base path's target list".
func ExcludeOverridden(base []Target, overridden map[string]bool) []Target {
	if len(overridden) == 0 {
		return base
	}
	out := base[:0:0]
	for _, t := range base {
		if overridden[t.PlatformID] {
			continue
		}
		out = append(out, t)
	}
	return out
}

func toSinglePlatform(subdir, rel string, p platform.Platform, log *slog.Logger) (Target, bool) {
	sd, ok := p.Subdirs[subdir]
	if !ok {
		return Target{}, false
	}

	dir, stem, ext := pkgname.StemExt(rel)
	mappedExt := ext
	if sd.ExtMap != nil {
		if mapped, ok := sd.ExtMap[ext]; ok {
			mappedExt = mapped
		}
	}
	if len(sd.Exts) > 0 && !containsStr(sd.Exts, mappedExt) {
		if log != nil {
			log.Debug("mapping: extension not allowed for platform, skipping",
				"platform", p.ID, "subdir", subdir, "rel", rel, "mappedExt", mappedExt)
		}
		return Target{}, false
	}

	path := joinPath(sd.Path, dir, stem+mappedExt)
	return Target{PlatformID: p.ID, Path: path}, true
}

// FromWorkspace normalises a workspace-relative path back to its canonical
// registry path, reversing the extension map for the platform it was
// inferred to belong to. Root files map to themselves at package root.
func FromWorkspace(workspacePath string, manifestDir string) (canonical string, ok bool) {
	clean := strings.TrimPrefix(workspacePath, "./")

	pid := platform.InferPlatformFromPath(clean)
	if pid == "" {
		return "", false
	}
	p, found := platform.Definition(pid)
	if !found {
		return "", false
	}

	if p.RootFile != "" && clean == p.RootFile {
		return clean, true
	}

	for subdir, sd := range p.Subdirs {
		prefix := sd.Path + "/"
		if !strings.HasPrefix(clean, prefix) {
			continue
		}
		rel := strings.TrimPrefix(clean, prefix)
		canonRel := rel
		for pkgExt, wsExt := range sd.ExtMap {
			if strings.HasSuffix(rel, wsExt) {
				canonRel = strings.TrimSuffix(rel, wsExt) + pkgExt
				break
			}
		}
		base := manifestDir
		if base != "" {
			return joinPath(base, subdir, canonRel), true
		}
		return joinPath(subdir, canonRel), true
	}

	return "", false
}

func detectOverrideSuffix(rel string, ids []string) string {
	_, stem, ext := pkgname.StemExt(rel)
	parts := strings.Split(stem, ".")
	if len(parts) < 2 {
		return ""
	}
	candidate := parts[len(parts)-1]
	for _, id := range ids {
		if id == candidate {
			return id
		}
	}
	_ = ext
	return ""
}

func stripOverrideSuffix(rel, suffix string) string {
	dir, stem, ext := pkgname.StemExt(rel)
	stem = strings.TrimSuffix(stem, "."+suffix)
	return joinPath(dir, stem+ext)
}

func findPlatform(platforms []platform.Platform, id string) (platform.Platform, bool) {
	for _, p := range platforms {
		if p.ID == id {
			return p, true
		}
	}
	return platform.Platform{}, false
}

func platformIDs(platforms []platform.Platform) []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = p.ID
	}
	return out
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func joinPath(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, strings.Trim(p, "/"))
		}
	}
	return strings.Join(nonEmpty, "/")
}

// ErrNoOverlay reports that no sibling override file is present. No function
// in this package returns it; Overlay only merges an overlay it is given.
var ErrNoOverlay = fmt.Errorf("no override file present")
