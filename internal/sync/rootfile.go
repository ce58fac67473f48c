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
	"os"
	"path/filepath"
	"strings"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
)

func marker(name, which string) string {
	return fmt.Sprintf("<!-- openpackage:%s %s -->", name, which)
}

// MergeRootFileSection applies the fenced-marker merge algorithm (spec
// 4.9, "Root-file merge"): replace an existing section for name, or append
// a new one, leaving every other package's section untouched.
func MergeRootFileSection(existing []byte, name string, body []byte) []byte {
	start := marker(name, "start")
	end := marker(name, "end")
	section := start + "\n" + strings.TrimSpace(string(body)) + "\n" + end

	text := string(existing)
	if si := strings.Index(text, start); si >= 0 {
		if ei := strings.Index(text[si:], end); ei >= 0 {
			ei += si + len(end)
			return []byte(text[:si] + section + text[ei:])
		}
	}

	if strings.TrimSpace(text) == "" {
		return []byte(section + "\n")
	}
	return []byte(strings.TrimRight(text, "\n") + "\n\n" + section + "\n")
}

// mergeRootFile reads rf.Path under the workspace root (empty if absent),
// merges in this package's section, and writes the result back. Per spec
// 5's ordering guarantee, bulk-install callers are responsible for
// serialising concurrent calls that target the same root-file path across
// packages; a single Apply call only ever touches one root file once.
func (e *Engine) mergeRootFile(name pkgname.Name, rf RootFileUpdate) error {
	dest := filepath.Join(e.WorkspaceRoot, filepath.FromSlash(rf.Path))

	existing, err := os.ReadFile(dest)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: reading root file %s: %v", opkgerr.ErrConfig, rf.Path, err)
	}

	merged := MergeRootFileSection(existing, name.String(), rf.Body)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: creating root file dir: %v", opkgerr.ErrConfig, err)
	}
	if err := os.WriteFile(dest, merged, 0o644); err != nil {
		return fmt.Errorf("%w: writing root file %s: %v", opkgerr.ErrConfig, rf.Path, err)
	}
	return nil
}
