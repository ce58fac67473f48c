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

package cmd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/openpackage-dev/opkg/internal/ops"
	"github.com/openpackage-dev/opkg/internal/sync"
)

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ,c ", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		if got := splitCSV(tt.raw); !cmp.Equal(got, tt.want) {
			t.Errorf("splitCSV(%q) mismatch (-want +got):\n%s", tt.raw, cmp.Diff(tt.want, got))
		}
	}
}

func TestParseConflictStrategy(t *testing.T) {
	tests := []struct {
		raw     string
		want    sync.ConflictStrategy
		wantErr bool
	}{
		{"", sync.StrategyAsk, false},
		{"ask", sync.StrategyAsk, false},
		{"ASK", sync.StrategyAsk, false},
		{"keep-both", sync.StrategyKeepBoth, false},
		{"overwrite", sync.StrategyOverwrite, false},
		{"skip", sync.StrategySkip, false},
		{"bogus", sync.StrategyAsk, true},
	}
	for _, tt := range tests {
		got, err := parseConflictStrategy(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseConflictStrategy(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseConflictStrategy(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestResolutionFlags_ResolveOpts(t *testing.T) {
	f := resolutionFlags{local: true, stable: true}
	got := f.resolveOpts()
	want := ops.ResolveOpts{LocalOnly: true, PreferStable: true}
	if got != want {
		t.Errorf("resolveOpts() = %+v, want %+v", got, want)
	}
}

func TestAddResolutionFlags_Registers(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var f resolutionFlags
	addResolutionFlags(flags, &f)
	addConflictFlags(flags, &f)

	for _, name := range []string{"local", "remote", "stable", "conflicts", "paths"} {
		if flags.Lookup(name) == nil {
			t.Errorf("flag %q was not registered", name)
		}
	}
}
