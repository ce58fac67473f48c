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
	"strings"

	"github.com/spf13/pflag"

	"github.com/openpackage-dev/opkg/internal/ops"
)

// resolutionFlags holds the --local/--remote/--stable trio shared by every
// command that resolves a package version, and the --conflicts/--paths
// pair shared by every command that materialises files into the workspace.
type resolutionFlags struct {
	local     bool
	remote    bool
	stable    bool
	conflicts string
	paths     string
}

func addResolutionFlags(flags *pflag.FlagSet, f *resolutionFlags) {
	flags.BoolVar(&f.local, "local", false, "resolve only against the local store, never contacting the registry")
	flags.BoolVar(&f.remote, "remote", false, "prefer the remote registry's version over what's stored locally")
	flags.BoolVar(&f.stable, "stable", false, "prefer a stable version over a newer pre-release/WIP one")
}

func addConflictFlags(flags *pflag.FlagSet, f *resolutionFlags) {
	flags.StringVar(&f.conflicts, "conflicts", "ask", "how to resolve a workspace file that differs from the registry: ask, keep-both, overwrite, skip")
	flags.StringVar(&f.paths, "paths", "", "comma-separated subset of registry paths to install (partial install)")
}

func (f resolutionFlags) resolveOpts() ops.ResolveOpts {
	return ops.ResolveOpts{LocalOnly: f.local, RemotePrimary: f.remote, PreferStable: f.stable}
}

// splitCSV splits a comma-separated flag value into trimmed, non-empty
// entries, returning nil for an empty input.
func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
