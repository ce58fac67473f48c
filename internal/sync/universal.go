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

package sync

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openpackage-dev/opkg/internal/mapping"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
)

// universalKey groups a base file with its platform overrides and overlays:
// same subdir, same directory, same suffix-stripped stem.
type universalKey struct {
	subdir, dir, stem string
}

// planUniversal resolves every universal-subdir file (base, per-platform
// full overrides, and per-platform YAML frontmatter overlays) into the set
// of workspace writes it produces, honouring override exclusivity and
// overlay merging (spec 4.4 and 4.9 step 3).
func (e *Engine) planUniversal(manifestDir string, files []universalFile) ([]candidateWrite, error) {
	overridden := map[universalKey]map[string]bool{}
	overlays := map[universalKey]map[string]*yaml.Node{}

	for _, uf := range files {
		if uf.suffix == "" {
			continue
		}
		k := keyOf(uf)
		if isOverlayRel(uf.rel) {
			node, err := parseOverlayNode(uf.content)
			if err != nil {
				return nil, err
			}
			if overlays[k] == nil {
				overlays[k] = map[string]*yaml.Node{}
			}
			overlays[k][uf.suffix] = node
		} else {
			if overridden[k] == nil {
				overridden[k] = map[string]bool{}
			}
			overridden[k][uf.suffix] = true
		}
	}

	var out []candidateWrite
	for _, uf := range files {
		if uf.suffix != "" && isOverlayRel(uf.rel) {
			continue // overlays never materialise a file of their own
		}

		targets := mapping.ToPlatforms(uf.subdir, uf.rel, e.Platforms, nil)
		canonical := registryPath(manifestDir, uf.subdir, uf.rel)

		if uf.suffix == "" {
			targets = mapping.ExcludeOverridden(targets, overridden[keyOf(uf)])
			for _, t := range targets {
				content := uf.content
				if nodes := overlays[keyOf(uf)]; nodes != nil {
					if node, ok := nodes[t.PlatformID]; ok {
						merged, err := applyOverlay(content, node)
						if err != nil {
							return nil, err
						}
						content = merged
					}
				}
				out = append(out, candidateWrite{canonical: canonical, workspacePath: t.Path, platformID: t.PlatformID, content: content})
			}
			continue
		}

		for _, t := range targets {
			out = append(out, candidateWrite{canonical: canonical, workspacePath: t.Path, platformID: t.PlatformID, content: uf.content})
		}
	}
	return out, nil
}

func keyOf(uf universalFile) universalKey {
	dir, stem, _ := pkgname.StemExt(uf.rel)
	if uf.suffix != "" {
		stem = strings.TrimSuffix(stem, "."+uf.suffix)
	}
	return universalKey{subdir: uf.subdir, dir: dir, stem: stem}
}

// isOverlayRel reports whether rel names a YAML frontmatter overlay
// (".yml"/".yaml") rather than a full-content platform override.
func isOverlayRel(rel string) bool {
	return strings.HasSuffix(rel, ".yml") || strings.HasSuffix(rel, ".yaml")
}

func parseOverlayNode(content []byte) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(content, &node); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml overlay: %v", opkgerr.ErrInvalidPackage, err)
	}
	return &node, nil
}

func applyOverlay(content []byte, overlay *yaml.Node) ([]byte, error) {
	fm, body, ok := mapping.SplitFrontmatter(content)
	if !ok {
		return content, nil
	}
	merged, err := mapping.Overlay(fm, overlay)
	if err != nil {
		return nil, err
	}
	return mapping.JoinFrontmatter(merged, body)
}
