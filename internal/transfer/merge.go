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

package transfer

import "github.com/openpackage-dev/opkg/internal/store"

// MergePartial implements the partial-pull merge procedure: the merged
// payload is the union of local and incoming files, with incoming
// overwriting on path conflict, preserving every local-only path.
func MergePartial(local, incoming []store.File) []store.File {
	byPath := map[string]store.File{}
	var order []string

	for _, f := range local {
		if _, seen := byPath[f.Path]; !seen {
			order = append(order, f.Path)
		}
		byPath[f.Path] = f
	}
	for _, f := range incoming {
		if _, seen := byPath[f.Path]; !seen {
			order = append(order, f.Path)
		}
		byPath[f.Path] = f
	}

	out := make([]store.File, 0, len(order))
	for _, p := range order {
		out = append(out, byPath[p])
	}
	return out
}

// ResultIsPartial determines whether the merged payload should be stamped
// partial: true. The merge is partial if it's still a strict subset of the
// authoritative file list (authoritativeFiles, derived from the incoming
// manifest's include expansion), or if either side was already partial.
func ResultIsPartial(mergedPaths []string, authoritativeFiles []string, localWasPartial, incomingWasPartial bool) bool {
	if localWasPartial || incomingWasPartial {
		return true
	}
	if len(authoritativeFiles) == 0 {
		return false
	}

	authoritative := map[string]bool{}
	for _, p := range authoritativeFiles {
		authoritative[p] = true
	}
	for _, p := range authoritativeFiles {
		found := false
		for _, m := range mergedPaths {
			if m == p {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}
	return false
}
