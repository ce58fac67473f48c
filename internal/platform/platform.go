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

// Package platform is the Platform Registry: a static, data-driven table of
// every AI coding tool opkg knows how to materialise files for.
package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// Subdir describes one universal subdirectory's on-disk layout for a
// platform.
type Subdir struct {
	// Path is the workspace-relative directory this subdir materialises
	// under, e.g. ".cursor/rules".
	Path string

	// Exts, if non-empty, restricts the allowed workspace-side extensions;
	// a mapped extension outside this set is skipped.
	Exts []string

	// ExtMap maps package-side extensions (e.g. ".md") to workspace-side
	// extensions (e.g. ".mdc"). An extension absent from ExtMap passes
	// through unchanged.
	ExtMap map[string]string
}

// Platform is one consumer tool's on-disk layout and filename conventions.
type Platform struct {
	ID      string
	RootDir string

	// RootFile is the platform's aggregating root file name (e.g.
	// "CLAUDE.md"), or "" if the platform has none.
	RootFile string

	Subdirs map[string]Subdir
}

var platforms = []Platform{
	{
		ID:       "claude",
		RootDir:  ".claude",
		RootFile: "CLAUDE.md",
		Subdirs: map[string]Subdir{
			"rules":    {Path: ".claude/rules"},
			"commands": {Path: ".claude/commands"},
			"agents":   {Path: ".claude/agents"},
			"skills":   {Path: ".claude/skills"},
		},
	},
	{
		ID:      "cursor",
		RootDir: ".cursor",
		Subdirs: map[string]Subdir{
			"rules": {
				Path:   ".cursor/rules",
				Exts:   []string{".mdc"},
				ExtMap: map[string]string{".md": ".mdc"},
			},
			"commands": {Path: ".cursor/commands"},
		},
	},
	{
		ID:      "windsurf",
		RootDir: ".windsurf",
		Subdirs: map[string]Subdir{
			"rules":    {Path: ".windsurf/rules"},
			"commands": {Path: ".windsurf/workflows"},
		},
	},
	{
		ID:      "cline",
		RootDir: ".clinerules",
		Subdirs: map[string]Subdir{
			"rules": {Path: ".clinerules"},
		},
	},
	{
		ID:      "opencode",
		RootDir: ".opencode",
		Subdirs: map[string]Subdir{
			"commands": {Path: ".opencode/command"},
			"agents":   {Path: ".opencode/agent"},
		},
	},
	{
		ID:       "codex",
		RootDir:  ".",
		RootFile: "AGENTS.md",
		Subdirs:  map[string]Subdir{},
	},
	{
		ID:      "copilot",
		RootDir: ".github",
		Subdirs: map[string]Subdir{
			"rules":    {Path: ".github/instructions", ExtMap: map[string]string{".md": ".instructions.md"}},
			"commands": {Path: ".github/prompts", ExtMap: map[string]string{".md": ".prompt.md"}},
		},
	},
}

// All returns every known platform definition.
func All() []Platform {
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// Definition returns the platform with the given id.
func Definition(id string) (Platform, bool) {
	for _, p := range platforms {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}

// Detected returns the platforms whose RootDir exists under cwd. The codex
// platform (RootDir ".") is special-cased: it is detected only when its
// root file is present, since "." always exists.
func Detected(cwd string) []Platform {
	var out []Platform
	for _, p := range platforms {
		if p.RootDir == "." {
			if p.RootFile != "" {
				if _, err := os.Stat(filepath.Join(cwd, p.RootFile)); err == nil {
					out = append(out, p)
				}
			}
			continue
		}
		if info, err := os.Stat(filepath.Join(cwd, p.RootDir)); err == nil && info.IsDir() {
			out = append(out, p)
		}
	}
	return out
}

// RootFileNames returns the closed vocabulary of root file names across all
// platforms, in registration order, without duplicates.
func RootFileNames() []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range platforms {
		if p.RootFile == "" || seen[p.RootFile] {
			continue
		}
		seen[p.RootFile] = true
		out = append(out, p.RootFile)
	}
	return out
}

// IDs returns every known platform id, in registration order.
func IDs() []string {
	out := make([]string, len(platforms))
	for i, p := range platforms {
		out[i] = p.ID
	}
	return out
}

// IsUniversalSubdir reports whether name is one of rules/commands/agents/skills.
func IsUniversalSubdir(name string) bool {
	switch name {
	case "rules", "commands", "agents", "skills":
		return true
	default:
		return false
	}
}

// InferPlatformFromPath guesses which platform a workspace-relative path
// belongs to, by matching its leading directory component (or exact root
// file name) against the registry. Returns "" if no platform matches.
func InferPlatformFromPath(path string) string {
	clean := filepath.ToSlash(path)
	for _, p := range platforms {
		if p.RootFile != "" && clean == p.RootFile {
			return p.ID
		}
	}
	for _, p := range platforms {
		if p.RootDir == "." || p.RootDir == "" {
			continue
		}
		if clean == p.RootDir || strings.HasPrefix(clean, p.RootDir+"/") {
			return p.ID
		}
	}
	return ""
}
