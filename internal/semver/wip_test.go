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
	"strings"
	"testing"
)

type fakeCounters struct {
	n map[string]uint64
}

func (f *fakeCounters) Next(tag, base string) (uint64, error) {
	key := tag + "-" + base
	f.n[key]++
	return f.n[key], nil
}

func TestGenerateWip_Monotone(t *testing.T) {
	counters := &fakeCounters{n: map[string]uint64{}}

	v1, err := GenerateWip("1.2.3", "/home/me/ws", counters)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := GenerateWip("1.2.3", "/home/me/ws", counters)
	if err != nil {
		t.Fatal(err)
	}
	if v1 == v2 {
		t.Fatalf("expected distinct WIP versions, got %q twice", v1)
	}
	if IsStable(v1) || IsStable(v2) {
		t.Error("WIP versions must not classify as stable")
	}
}

func TestGenerateWip_SameWorkspaceSameTag(t *testing.T) {
	tag1 := WorkspaceTag("/home/me/ws")
	tag2 := WorkspaceTag("/home/me/ws")
	if tag1 != tag2 {
		t.Errorf("WorkspaceTag not deterministic: %q != %q", tag1, tag2)
	}
}

func TestGenerateWip_InvalidBase(t *testing.T) {
	counters := &fakeCounters{n: map[string]uint64{}}
	if _, err := GenerateWip("not-a-version", "/ws", counters); err == nil {
		t.Error("expected error for invalid base version")
	}
}

func TestGenerateWip_CounterResetsOnNewBase(t *testing.T) {
	counters := &fakeCounters{n: map[string]uint64{}}

	v1, err := GenerateWip("1.2.0", "/home/me/ws", counters)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := GenerateWip("1.2.0", "/home/me/ws", counters)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(v1, ".1") || !strings.HasSuffix(v2, ".2") {
		t.Fatalf("expected counters 1 then 2 for base 1.2.0, got %q then %q", v1, v2)
	}

	v3, err := GenerateWip("1.3.0", "/home/me/ws", counters)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(v3, ".1") {
		t.Errorf("expected a fresh counter starting at 1 for the new base 1.3.0, got %q", v3)
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.3"},
		{"1.2.3-wip.ab3.7", "1.2.3"},
		{"2.0.0-rc.1", "2.0.0"},
	}
	for _, tt := range tests {
		got, err := Base(tt.in)
		if err != nil {
			t.Fatalf("Base(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := Base("not-a-version"); err == nil {
		t.Error("expected error for invalid version")
	}
}

func TestBumpPatch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.2.3", "1.2.4"},
		{"1.2.9-wip.ab3.7", "1.2.10"},
	}
	for _, tt := range tests {
		got, err := BumpPatch(tt.in)
		if err != nil {
			t.Fatalf("BumpPatch(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("BumpPatch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := BumpPatch("not-a-version"); err == nil {
		t.Error("expected error for invalid version")
	}
}
