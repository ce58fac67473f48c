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

// Package pkgname implements the Path & Name Model: normalising package
// names (scoped and unscoped), parsing install specs of the form
// "name[@version][/path]", and classifying paths inside a registry payload.
package pkgname

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
)

// segmentPattern matches one name segment: [a-z0-9][a-z0-9._-]{0,212}.
var segmentPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,212}$`)

// Name is a validated, case-folded PackageName. Two Names are equivalent iff
// their String() forms are equal.
type Name struct {
	scope string // without leading "@"; empty for unscoped names
	local string
}

// Parse validates and normalises raw into a Name. Fails with
// opkgerr.ErrInvalidName on any grammar violation.
func Parse(raw string) (Name, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Name{}, fmt.Errorf("%w: empty name", opkgerr.ErrInvalidName)
	}

	if len(s) > 214 {
		return Name{}, fmt.Errorf("%w: %q exceeds 214 characters", opkgerr.ErrInvalidName, raw)
	}

	if strings.HasPrefix(s, "@") {
		rest := s[1:]
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || parts[1] == "" {
			return Name{}, fmt.Errorf("%w: scoped name %q missing local part", opkgerr.ErrInvalidName, raw)
		}
		scope, local := parts[0], parts[1]
		if !validSegment(scope) || !validSegment(local) {
			return Name{}, fmt.Errorf("%w: %q", opkgerr.ErrInvalidName, raw)
		}
		return Name{scope: scope, local: local}, nil
	}

	if !validSegment(s) {
		return Name{}, fmt.Errorf("%w: %q", opkgerr.ErrInvalidName, raw)
	}

	return Name{local: s}, nil
}

func validSegment(s string) bool {
	if !segmentPattern.MatchString(s) {
		return false
	}
	return !strings.Contains(s, "--") && !strings.Contains(s, "..") &&
		!strings.Contains(s, "__") && !strings.Contains(s, "._") && !strings.Contains(s, "_.")
}

// Scoped reports whether the name carries an "@scope/" prefix.
func (n Name) Scoped() bool { return n.scope != "" }

// Scope returns the scope segment (without "@"), or "" if unscoped.
func (n Name) Scope() string { return n.scope }

// Local returns the local (unscoped) segment.
func (n Name) Local() string { return n.local }

// String renders the canonical lowercase form: "name" or "@scope/name".
func (n Name) String() string {
	if n.scope == "" {
		return n.local
	}
	return "@" + n.scope + "/" + n.local
}

// WithScope returns a copy of n rescoped under scope (used when a push
// handshake assigns "@username/name" to a previously unscoped package).
func (n Name) WithScope(scope string) Name {
	return Name{scope: strings.ToLower(scope), local: n.local}
}

// Equal reports whether a and b denote the same package identity.
func Equal(a, b Name) bool {
	return a.String() == b.String()
}

// DirName returns the filesystem-safe directory segment used under the local
// registry store, e.g. "@scope/name" stored as "@scope/name" (store callers
// join segments themselves so the "/" is preserved as a directory boundary).
func (n Name) DirName() string {
	return n.String()
}

// InstallSpec is the parsed form of a CLI-style install argument
// "name[@version][/path]".
type InstallSpec struct {
	Name         Name
	Version      string // raw version/range string; "" if unspecified
	RegistryPath string // "" if unspecified
}

// ParseInstallSpec splits raw at the first "/" after any scope prefix;
// anything after that slash is the registry path. "name@version/rest" is
// supported. RegistryPath must be non-empty if a slash is present.
func ParseInstallSpec(raw string) (InstallSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return InstallSpec{}, fmt.Errorf("%w: empty install spec", opkgerr.ErrValidation)
	}

	// Separate the scope prefix (if any) so we don't mistake its "/" for the
	// registry-path delimiter.
	scopePrefix := ""
	rest := s
	if strings.HasPrefix(s, "@") {
		idx := strings.Index(s, "/")
		if idx < 0 {
			return InstallSpec{}, fmt.Errorf("%w: scoped name %q missing local part", opkgerr.ErrInvalidName, raw)
		}
		scopePrefix = s[:idx]
		rest = s[idx+1:]
	}

	// rest is now "local[@version][/path...]"
	nameAndVersion := rest
	registryPath := ""
	if idx := strings.Index(rest, "/"); idx >= 0 {
		nameAndVersion = rest[:idx]
		registryPath = rest[idx+1:]
		if registryPath == "" {
			return InstallSpec{}, fmt.Errorf("%w: trailing slash with no registry path in %q", opkgerr.ErrValidation, raw)
		}
	}

	localPart := nameAndVersion
	version := ""
	if idx := strings.Index(nameAndVersion, "@"); idx >= 0 {
		localPart = nameAndVersion[:idx]
		version = nameAndVersion[idx+1:]
	}

	full := localPart
	if scopePrefix != "" {
		full = scopePrefix + "/" + localPart
	}

	name, err := Parse(full)
	if err != nil {
		return InstallSpec{}, err
	}

	return InstallSpec{Name: name, Version: version, RegistryPath: registryPath}, nil
}

// Format renders spec back into the "name[@version][/path]" textual form,
// the inverse of ParseInstallSpec.
func Format(spec InstallSpec) string {
	var b strings.Builder
	b.WriteString(spec.Name.String())
	if spec.Version != "" {
		b.WriteString("@")
		b.WriteString(spec.Version)
	}
	if spec.RegistryPath != "" {
		b.WriteString("/")
		b.WriteString(spec.RegistryPath)
	}
	return b.String()
}
