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

import "testing"

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		want    RangeType
		wantErr bool
	}{
		{name: "wildcard star", expr: "*", want: RangeWildcard},
		{name: "wildcard empty", expr: "", want: RangeWildcard},
		{name: "wildcard latest", expr: "latest", want: RangeWildcard},
		{name: "caret", expr: "^1.2.3", want: RangeCaret},
		{name: "tilde", expr: "~1.2.3", want: RangeTilde},
		{name: "exact prefixed", expr: "=1.2.3", want: RangeExact},
		{name: "exact bare", expr: "1.2.3", want: RangeExact},
		{name: "comparator gte", expr: ">=1.2.3", want: RangeComparator},
		{name: "comparator range", expr: ">=1.0.0 <2.0.0", want: RangeComparator},
		{name: "invalid", expr: "^not-a-version", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRange(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.Type != tt.want {
				t.Errorf("ParseRange(%q).Type = %v, want %v", tt.expr, got.Type, tt.want)
			}
		})
	}
}

func TestSatisfies(t *testing.T) {
	caret, _ := ParseRange("^1.2.0")
	tilde, _ := ParseRange("~1.2.0")
	wild, _ := ParseRange("*")

	tests := []struct {
		name              string
		version           string
		r                 Range
		includePrerelease bool
		want              bool
	}{
		{name: "caret minor bump", version: "1.5.0", r: caret, want: true},
		{name: "caret major bump excluded", version: "2.0.0", r: caret, want: false},
		{name: "caret below floor excluded", version: "1.1.0", r: caret, want: false},
		{name: "tilde patch bump", version: "1.2.9", r: tilde, want: true},
		{name: "tilde minor bump excluded", version: "1.3.0", r: tilde, want: false},
		{name: "wildcard stable", version: "9.9.9", r: wild, want: true},
		{name: "wildcard prerelease excluded by default", version: "1.0.0-alpha.1", r: wild, want: false},
		{name: "wildcard prerelease included when requested", version: "1.0.0-alpha.1", r: wild, includePrerelease: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Satisfies(tt.version, tt.r, tt.includePrerelease); got != tt.want {
				t.Errorf("Satisfies(%q) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestSelectVersion_StablePreferred(t *testing.T) {
	available := []string{"1.0.0", "1.1.0", "1.2.0-beta.1", "1.1.1"}
	r, err := ParseRange("*")
	if err != nil {
		t.Fatal(err)
	}

	got, err := SelectVersion(available, r, SelectOptions{PreferStable: true})
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != "1.1.1" {
		t.Errorf("Version = %q, want %q", got.Version, "1.1.1")
	}
	if got.IsPrerelease {
		t.Error("IsPrerelease = true, want false")
	}
}

func TestSelectVersion_StablePreferredFallsBackToPrerelease(t *testing.T) {
	available := []string{"1.0.0-alpha.1", "1.0.0-alpha.2"}
	r, err := ParseRange("*")
	if err != nil {
		t.Fatal(err)
	}

	got, err := SelectVersion(available, r, SelectOptions{PreferStable: true})
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != "1.0.0-alpha.2" {
		t.Errorf("Version = %q, want %q", got.Version, "1.0.0-alpha.2")
	}
	if !got.IsPrerelease {
		t.Error("IsPrerelease = false, want true")
	}
}

func TestSelectVersion_LatestWins(t *testing.T) {
	available := []string{"1.0.0", "1.1.0-beta.1", "0.9.0"}
	r, err := ParseRange("*")
	if err != nil {
		t.Fatal(err)
	}

	got, err := SelectVersion(available, r, SelectOptions{PreferStable: false})
	if err != nil {
		t.Fatal(err)
	}
	if got.Version != "1.1.0-beta.1" {
		t.Errorf("Version = %q, want %q", got.Version, "1.1.0-beta.1")
	}
}

func TestSelectVersion_ExactNotFound(t *testing.T) {
	r, err := ParseRange("=9.9.9")
	if err != nil {
		t.Fatal(err)
	}
	got, err := SelectVersion([]string{"1.0.0"}, r, SelectOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got.Reason != ReasonNone {
		t.Errorf("Reason = %v, want %v", got.Reason, ReasonNone)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.0.0", 1},
		{"v1.2.3", "1.2.3", 0},
	}
	for _, tt := range tests {
		got, err := Compare(tt.a, tt.b)
		if err != nil {
			t.Fatalf("Compare(%q, %q): %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsStable(t *testing.T) {
	if !IsStable("1.0.0") {
		t.Error("1.0.0 should be stable")
	}
	if IsStable("1.0.0-alpha.1") {
		t.Error("1.0.0-alpha.1 should not be stable")
	}
	if IsStable("not-a-version") {
		t.Error("invalid version should not be stable")
	}
}
