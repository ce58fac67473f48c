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

package pkgname

import (
	"path"
	"strings"
)

// ManifestFileName is the fixed filename of a PackageManifest inside a
// payload, relative to the manifest-dir (see spec Design Notes: manifest-dir
// is the directory containing package.yml; package-root is its parent, and
// payload-relative paths are measured from package-root).
const ManifestFileName = "package.yml"

// IndexFileName is the fixed filename of the per-package index inside a
// workspace (not inside a registry payload).
const IndexFileName = ".openpackage-index.yml"

// UniversalSubdirs is the closed set of universal subdirectories that
// materialise differently per platform.
var UniversalSubdirs = []string{"rules", "commands", "agents", "skills"}

// IsUniversalSubdir reports whether name is one of the four universal
// subdirectories.
func IsUniversalSubdir(name string) bool {
	for _, s := range UniversalSubdirs {
		if s == name {
			return true
		}
	}
	return false
}

// PathClass identifies which of the four RegistryPath classes a canonical
// path belongs to.
type PathClass int

const (
	ClassWorkspace PathClass = iota
	ClassRoot
	ClassManifest
	ClassUniversal
)

// Classification is the result of classifying a canonical registry path.
type Classification struct {
	Class PathClass

	// Subdir is the universal subdirectory name (rules/commands/agents/skills),
	// set only when Class == ClassUniversal.
	Subdir string

	// Rel is the path beneath Subdir, set only when Class == ClassUniversal.
	Rel string

	// PlatformSuffix is the detected platform id for a platform-override
	// file (filename ending "<stem>.<platformId>.<ext>"), or "" if the
	// universal path carries no override suffix.
	PlatformSuffix string
}

// ClassifyRegistryPath classifies p, a forward-slash canonical path measured
// from package-root, given manifestDir (the manifest-dir relative to
// package-root; "" for a top-level, non-nested package) and the set of known
// platform ids (used to detect platform-override suffixes). rootFileNames is
// the closed vocabulary of root filenames (e.g. "AGENTS.md", "CLAUDE.md").
func ClassifyRegistryPath(p string, manifestDir string, platformIDs []string, rootFileNames []string) Classification {
	p = path.Clean(strings.TrimPrefix(p, "./"))
	manifestDir = strings.Trim(manifestDir, "/")

	if manifestDir == "" {
		if p == ManifestFileName {
			return Classification{Class: ClassManifest}
		}
	} else if p == manifestDir+"/"+ManifestFileName {
		return Classification{Class: ClassManifest}
	}

	if !strings.Contains(p, "/") {
		for _, rf := range rootFileNames {
			if p == rf {
				return Classification{Class: ClassRoot}
			}
		}
	}

	prefix := manifestDir
	rest := p
	if manifestDir != "" {
		if !strings.HasPrefix(p, manifestDir+"/") {
			return Classification{Class: ClassWorkspace}
		}
		rest = strings.TrimPrefix(p, manifestDir+"/")
	}
	_ = prefix

	segs := strings.SplitN(rest, "/", 2)
	if len(segs) == 2 && IsUniversalSubdir(segs[0]) {
		cl := Classification{Class: ClassUniversal, Subdir: segs[0], Rel: segs[1]}
		cl.PlatformSuffix = detectPlatformSuffix(segs[1], platformIDs)
		return cl
	}

	return Classification{Class: ClassWorkspace}
}

// detectPlatformSuffix detects a "<stem>.<platformId>.<ext>" suffix in rel
// and returns the matched platformId, or "" if none of the known ids match.
func detectPlatformSuffix(rel string, platformIDs []string) string {
	base := path.Base(rel)
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return ""
	}
	candidate := parts[len(parts)-2]
	for _, id := range platformIDs {
		if id == candidate {
			return id
		}
	}
	return ""
}

// IsAllowedForIndex reports whether a canonical path should be recorded in
// the package index: false for root files, the manifest, the index file
// itself, and YAML override files under universal subdirs; true otherwise.
func IsAllowedForIndex(p string, manifestDir string, platformIDs []string, rootFileNames []string) bool {
	if p == IndexFileName {
		return false
	}

	cl := ClassifyRegistryPath(p, manifestDir, platformIDs, rootFileNames)
	switch cl.Class {
	case ClassRoot, ClassManifest:
		return false
	case ClassUniversal:
		return cl.PlatformSuffix == "" || !isYAMLOverride(cl.Rel)
	default:
		return true
	}
}

// isYAMLOverride reports whether rel has the ".yml"/".yaml" extension that a
// sibling YAML-frontmatter-override file ("<stem>.<platform>.yml") carries;
// the platform suffix itself is checked by the caller.
func isYAMLOverride(rel string) bool {
	return strings.HasSuffix(rel, ".yml") || strings.HasSuffix(rel, ".yaml")
}

// StemExt splits a universal-subdir-relative path into its directory, stem
// (filename without the final extension; a platform suffix such as ".cursor"
// stays part of the stem) and extension.
func StemExt(rel string) (dir, stem, ext string) {
	dir = path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	base := path.Base(rel)
	ext = path.Ext(base)
	stem = strings.TrimSuffix(base, ext)
	return dir, stem, ext
}
