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
	"github.com/openpackage-dev/opkg/internal/rewrite"
)

// FileDiff is one present-diff file's unified diff, surfaced by a dry run
// (spec 4.9 "Dry run") instead of being written to disk.
type FileDiff struct {
	WorkspacePath string
	Canonical     string
	Action        FileAction
	Diff          string
	Additions     int
	Deletions     int
}

// Diffs renders a unified diff for every planned write whose content
// changes an existing workspace file: updated, overwritten, and skipped
// writes all have a prior body to diff against. A created write has no
// prior content, and a renamed write's destination never existed, so
// neither produces a diff.
func (p Plan) Diffs() ([]FileDiff, error) {
	return p.diffs(rewrite.GenerateUnifiedDiff)
}

// Patches renders the same present-diff files as Diffs, but as git-style
// patches (a/ b/ path prefixes and timestamps) suitable for `git apply`,
// for dry runs that want an exportable patch rather than a plain diff.
func (p Plan) Patches() ([]FileDiff, error) {
	return p.diffs(rewrite.GeneratePatch)
}

func (p Plan) diffs(render func(filename, oldContent, newContent string) (string, error)) ([]FileDiff, error) {
	var out []FileDiff
	for _, w := range p.Writes {
		if w.Action != ActionOverwritten && w.Action != ActionSkipped && w.Action != ActionUpdated {
			continue
		}
		text, err := render(w.WorkspacePath, string(w.Existing), string(w.Content))
		if err != nil {
			return nil, err
		}
		additions, deletions := rewrite.CountChanges(text)
		out = append(out, FileDiff{
			WorkspacePath: w.WorkspacePath,
			Canonical:     w.Canonical,
			Action:        w.Action,
			Diff:          text,
			Additions:     additions,
			Deletions:     deletions,
		})
	}
	return out, nil
}
