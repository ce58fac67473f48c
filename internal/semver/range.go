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

// Package semver implements the Version Algebra: parsing constraint
// expressions (exact, caret, tilde, comparator, wildcard), the deterministic
// stable-preferred / latest-wins selection policy, WIP version generation,
// and stable-vs-prerelease classification.
//
// It is built directly on github.com/Masterminds/semver/v3, the same
// library used for version comparison throughout the retrieval pack.
package semver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
)

// RangeType tags the syntactic shape of a VersionRange.
type RangeType string

const (
	RangeExact      RangeType = "exact"
	RangeCaret      RangeType = "caret"
	RangeTilde      RangeType = "tilde"
	RangeWildcard   RangeType = "wildcard"
	RangeComparator RangeType = "comparator"
)

// Range is a parsed VersionRange. BaseVersion is valid semver for every
// non-wildcard Type.
type Range struct {
	Original    string
	Type        RangeType
	BaseVersion string
	constraint  *semver.Constraints

	// hasPrereleaseIntent is true when some comparator in the parsed range
	// itself carries a prerelease tag (e.g. ">=2.0.0-alpha"), used by the
	// stable-preferred policy to decide whether to fall back to prereleases.
	hasPrereleaseIntent bool
}

// ParseRange validates s per semver rules plus the wildcard literals "*" and
// "latest".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" || s == "latest" {
		return Range{Original: s, Type: RangeWildcard}, nil
	}

	switch {
	case strings.HasPrefix(s, "^"):
		base := strings.TrimSpace(strings.TrimPrefix(s, "^"))
		c, err := semver.NewConstraint(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidRange, s, err)
		}
		return Range{Original: s, Type: RangeCaret, BaseVersion: base, constraint: c}, nil

	case strings.HasPrefix(s, "~"):
		base := strings.TrimSpace(strings.TrimPrefix(s, "~"))
		c, err := semver.NewConstraint(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidRange, s, err)
		}
		return Range{Original: s, Type: RangeTilde, BaseVersion: base, constraint: c}, nil

	case strings.HasPrefix(s, "="):
		base := strings.TrimSpace(strings.TrimPrefix(s, "="))
		if _, err := semver.NewVersion(base); err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidRange, s, err)
		}
		c, err := semver.NewConstraint("= " + base)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidRange, s, err)
		}
		return Range{Original: s, Type: RangeExact, BaseVersion: base, constraint: c, hasPrereleaseIntent: strings.Contains(base, "-")}, nil

	case strings.ContainsAny(s, "<>~^ ,|"):
		c, err := semver.NewConstraint(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidRange, s, err)
		}
		return Range{Original: s, Type: RangeComparator, constraint: c, hasPrereleaseIntent: strings.Contains(s, "-")}, nil

	default:
		if _, err := semver.NewVersion(s); err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidRange, s, err)
		}
		c, err := semver.NewConstraint("= " + s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidRange, s, err)
		}
		return Range{Original: s, Type: RangeExact, BaseVersion: s, constraint: c, hasPrereleaseIntent: strings.Contains(s, "-")}, nil
	}
}

// IsStable reports whether v carries no prerelease tag.
func IsStable(v string) bool {
	parsed, err := normalize(v)
	if err != nil {
		return false
	}
	return parsed.Prerelease() == ""
}

// Satisfies reports whether v is a member of r. When includePrerelease is
// false, a prerelease version never satisfies a non-exact range.
func Satisfies(v string, r Range, includePrerelease bool) bool {
	parsed, err := normalize(v)
	if err != nil {
		return false
	}

	if r.Type == RangeWildcard {
		return includePrerelease || parsed.Prerelease() == ""
	}

	if r.Type == RangeExact {
		base, err := normalize(r.BaseVersion)
		if err != nil {
			return false
		}
		return parsed.Equal(base)
	}

	if r.constraint == nil {
		return false
	}

	if parsed.Prerelease() != "" && !includePrerelease {
		return false
	}

	return r.constraint.Check(parsed)
}

// Compare returns -1, 0, 1 as a < b, a == b, a > b.
func Compare(a, b string) (int, error) {
	va, err := normalize(a)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidVersion, a, err)
	}
	vb, err := normalize(b)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", opkgerr.ErrInvalidVersion, b, err)
	}
	return va.Compare(vb), nil
}

// SelectReason records why SelectVersion returned what it did.
type SelectReason string

const (
	ReasonExact    SelectReason = "exact"
	ReasonWildcard SelectReason = "wildcard"
	ReasonRange    SelectReason = "range"
	ReasonNone     SelectReason = "none"
)

// SelectOptions configures SelectVersion's policy.
type SelectOptions struct {
	// PreferStable requests the stable-preferred policy; otherwise the
	// default latest-wins policy applies.
	PreferStable bool
}

// SelectResult is the outcome of SelectVersion.
type SelectResult struct {
	Version             string
	IsPrerelease        bool
	SatisfyingStable    []string
	SatisfyingPrerelease []string
	Reason              SelectReason
}

// SelectVersion is the resolution primitive described in spec 4.2: given a
// set of available versions and a parsed range, deterministically choose one
// version under either the stable-preferred or latest-wins policy.
func SelectVersion(available []string, r Range, opts SelectOptions) (SelectResult, error) {
	if r.Type == RangeExact {
		for _, v := range available {
			if eq, err := versionsEqual(v, r.BaseVersion); err == nil && eq {
				stable := IsStable(v)
				return SelectResult{Version: v, IsPrerelease: !stable, Reason: ReasonExact}, nil
			}
		}
		return SelectResult{Reason: ReasonNone}, nil
	}

	var stable, prerelease []string
	for _, v := range available {
		if !Satisfies(v, r, true) {
			continue
		}
		if IsStable(v) {
			stable = append(stable, v)
		} else {
			prerelease = append(prerelease, v)
		}
	}
	sortDescending(stable)
	sortDescending(prerelease)

	reason := ReasonRange
	if r.Type == RangeWildcard {
		reason = ReasonWildcard
	}

	if opts.PreferStable {
		if r.Type == RangeWildcard {
			if len(stable) > 0 {
				return finish(stable[0], stable, prerelease, reason)
			}
			if len(prerelease) > 0 {
				return finish(prerelease[0], stable, prerelease, reason)
			}
			return SelectResult{SatisfyingStable: stable, SatisfyingPrerelease: prerelease, Reason: ReasonNone}, nil
		}

		if len(stable) > 0 {
			return finish(stable[0], stable, prerelease, reason)
		}
		if len(prerelease) > 0 && (r.hasPrereleaseIntent || len(available) == len(prerelease)) {
			return finish(prerelease[0], stable, prerelease, reason)
		}
		return SelectResult{SatisfyingStable: stable, SatisfyingPrerelease: prerelease, Reason: ReasonNone}, nil
	}

	// latest-wins: merge both lists, return the maximum.
	all := append(append([]string{}, stable...), prerelease...)
	sortDescending(all)
	if len(all) == 0 {
		return SelectResult{SatisfyingStable: stable, SatisfyingPrerelease: prerelease, Reason: ReasonNone}, nil
	}
	return finish(all[0], stable, prerelease, reason)
}

func finish(version string, stable, prerelease []string, reason SelectReason) (SelectResult, error) {
	return SelectResult{
		Version:              version,
		IsPrerelease:         !IsStable(version),
		SatisfyingStable:     stable,
		SatisfyingPrerelease: prerelease,
		Reason:               reason,
	}, nil
}

func versionsEqual(a, b string) (bool, error) {
	va, err := normalize(a)
	if err != nil {
		return false, err
	}
	vb, err := normalize(b)
	if err != nil {
		return false, err
	}
	return va.Equal(vb), nil
}

func sortDescending(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		vi, erri := normalize(versions[i])
		vj, errj := normalize(versions[j])
		if erri != nil || errj != nil {
			return versions[i] > versions[j]
		}
		return vi.GreaterThan(vj)
	})
}

// normalize parses a version string leniently, trying both with and without
// a "v" prefix, mirroring the teacher's normalizeAndParse.
func normalize(v string) (*semver.Version, error) {
	if parsed, err := semver.NewVersion(v); err == nil {
		return parsed, nil
	}
	if !strings.HasPrefix(v, "v") {
		if parsed, err := semver.NewVersion("v" + v); err == nil {
			return parsed, nil
		}
	} else if parsed, err := semver.NewVersion(strings.TrimPrefix(v, "v")); err == nil {
		return parsed, nil
	}
	return nil, fmt.Errorf("invalid version: %s", v)
}
