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

package semver

import (
	"fmt"
	"hash/fnv"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// WorkspaceTag derives a short, stable, base62-encoded tag identifying a
// workspace, from the 12 low bits of an FNV-1a hash of its absolute path.
// Two different workspace paths rarely collide; a collision only risks a
// shared WIP counter namespace, not a correctness failure.
func WorkspaceTag(absWorkspacePath string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(absWorkspacePath))
	n := h.Sum32() & 0xFFF // 12 bits
	return encodeBase62(uint64(n))
}

func encodeBase62(n uint64) string {
	if n == 0 {
		return string(base62Alphabet[0])
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(buf[i:])
}

// CounterSource supplies the next monotone counter value for a workspace
// tag and base version pair. Implementations persist state outside this
// package (e.g. the local registry store's
// <store>/.wip-counters/<tag>-<base>.json file) so that repeated WIP
// generation within one process, or across processes against the same
// workspace, never produces a duplicate suffix. Scoping the counter by base
// as well as tag is what makes the WIP cycle policy's "reset the stream"
// case (§4.2) free: moving to a new base starts a fresh counter file rather
// than continuing the old base's count.
type CounterSource interface {
	Next(tag, base string) (uint64, error)
}

// Base returns v's "major.minor.patch" with any prerelease/build metadata
// stripped, the unit the WIP cycle policy compares across saves.
func Base(v string) (string, error) {
	parsed, err := normalize(v)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", v, err)
	}
	return fmt.Sprintf("%d.%d.%d", parsed.Major(), parsed.Minor(), parsed.Patch()), nil
}

// BumpPatch returns v's base with its patch component incremented by one,
// used by the WIP cycle policy's continuation case: once the last recorded
// workspace version has gone stable at the manifest's version, the next
// development cycle starts one patch ahead of it rather than repeating it.
func BumpPatch(v string) (string, error) {
	parsed, err := normalize(v)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", v, err)
	}
	return fmt.Sprintf("%d.%d.%d", parsed.Major(), parsed.Minor(), parsed.Patch()+1), nil
}

// GenerateWip produces a WIP version string "<stable>-wip.<tag>.<counter>"
// given the stable base version, the absolute workspace path, and a counter
// source. It does not use wall-clock time: the counter's monotonicity is the
// sole ordering guarantee, so saves performed in rapid succession are still
// strictly increasing.
func GenerateWip(stable string, absWorkspacePath string, counters CounterSource) (string, error) {
	base, err := normalize(stable)
	if err != nil {
		return "", fmt.Errorf("invalid base version %q: %w", stable, err)
	}
	baseStr := fmt.Sprintf("%d.%d.%d", base.Major(), base.Minor(), base.Patch())

	tag := WorkspaceTag(absWorkspacePath)
	n, err := counters.Next(tag, baseStr)
	if err != nil {
		return "", fmt.Errorf("advancing wip counter for tag %q base %q: %w", tag, baseStr, err)
	}

	return fmt.Sprintf("%s-wip.%s.%d", baseStr, tag, n), nil
}
