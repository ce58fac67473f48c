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

// Package resolver implements the dependency resolution policy: given a
// version constraint and a choice of local/remote sources, select a
// version under the default, local-only, or remote-primary mode.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/semver"
)

// Mode selects which sources the resolver consults.
type Mode string

const (
	ModeDefault       Mode = "default"
	ModeLocalOnly     Mode = "local-only"
	ModeRemotePrimary Mode = "remote-primary"
)

// RemoteFailureReason classifies why a remote version lookup failed.
type RemoteFailureReason string

const (
	RemoteNotFound     RemoteFailureReason = "not-found"
	RemoteAccessDenied RemoteFailureReason = "access-denied"
	RemoteNetwork      RemoteFailureReason = "network"
	RemoteIntegrity    RemoteFailureReason = "integrity"
	RemoteUnknown      RemoteFailureReason = "unknown"
)

// RemoteError wraps a remote lookup failure with its classification.
type RemoteError struct {
	Reason RemoteFailureReason
	Err    error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %v", e.Reason, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

// retryable reports whether a remote failure is worth retrying once, per
// spec 4.7's taxonomy: not-found/access-denied are terminal per package,
// everything else may be retried.
func (e *RemoteError) retryable() bool {
	return e.Reason != RemoteNotFound && e.Reason != RemoteAccessDenied
}

// Sources supplies the version lists resolve consults.
type Sources interface {
	Local(ctx context.Context) ([]string, error)
	Remote(ctx context.Context) ([]string, error)
}

// Source identifies which partition a resolved version was chosen from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Result is the outcome of Resolve.
type Result struct {
	Version     string
	Source      Source
	Diagnostics []string
}

// Resolve selects a version for constraint under mode, consulting sources.
func Resolve(ctx context.Context, constraintExpr string, mode Mode, sources Sources, opts semver.SelectOptions) (Result, error) {
	r, err := semver.ParseRange(constraintExpr)
	if err != nil {
		return Result{}, err
	}

	switch mode {
	case ModeLocalOnly:
		return resolveLocalOnly(ctx, r, sources, opts)
	case ModeRemotePrimary:
		return resolveRemotePrimary(ctx, r, sources, opts)
	default:
		return resolveDefault(ctx, r, sources, opts)
	}
}

func resolveLocalOnly(ctx context.Context, r semver.Range, sources Sources, opts semver.SelectOptions) (Result, error) {
	local, err := sources.Local(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: listing local versions: %v", opkgerr.ErrConfig, err)
	}
	sel, err := semver.SelectVersion(local, r, opts)
	if err != nil {
		return Result{}, err
	}
	if sel.Reason == semver.ReasonNone {
		return Result{}, fmt.Errorf("%w: no local version satisfies %q", opkgerr.ErrPackageNotFound, r.Original)
	}
	return Result{Version: sel.Version, Source: SourceLocal}, nil
}

func resolveRemotePrimary(ctx context.Context, r semver.Range, sources Sources, opts semver.SelectOptions) (Result, error) {
	remote, err := fetchRemoteWithRetry(ctx, sources)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", opkgerr.ErrRemoteNotFound, err)
	}
	sel, err := semver.SelectVersion(remote, r, opts)
	if err != nil {
		return Result{}, err
	}
	if sel.Reason == semver.ReasonNone {
		return Result{}, fmt.Errorf("%w: no remote version satisfies %q", opkgerr.ErrRemoteNotFound, r.Original)
	}
	return Result{Version: sel.Version, Source: SourceRemote}, nil
}

func resolveDefault(ctx context.Context, r semver.Range, sources Sources, opts semver.SelectOptions) (Result, error) {
	var diagnostics []string

	local, err := sources.Local(ctx)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Sprintf("local lookup failed: %v", err))
		local = nil
	}

	localSel, err := semver.SelectVersion(local, r, opts)
	if err != nil {
		return Result{}, err
	}
	if localSel.Reason != semver.ReasonNone {
		return Result{Version: localSel.Version, Source: SourceLocal, Diagnostics: diagnostics}, nil
	}

	remote, err := fetchRemoteWithRetry(ctx, sources)
	if err != nil {
		diagnostics = append(diagnostics, fmt.Sprintf("remote lookup failed: %v", err))
		return Result{}, fmt.Errorf("%w: no local version satisfies %q and remote lookup failed: %v", opkgerr.ErrPackageNotFound, r.Original, err)
	}

	merged := mergeSemverSuperset(local, remote)
	sel, err := semver.SelectVersion(merged, r, opts)
	if err != nil {
		return Result{}, err
	}
	if sel.Reason == semver.ReasonNone {
		return Result{}, fmt.Errorf("%w: no version satisfies %q", opkgerr.ErrPackageNotFound, r.Original)
	}

	source := SourceLocal
	if containsVersion(remote, sel.Version) && !containsVersion(local, sel.Version) {
		source = SourceRemote
	}
	return Result{Version: sel.Version, Source: source, Diagnostics: diagnostics}, nil
}

// fetchRemoteWithRetry wraps a single call to sources.Remote with one retry
// for transient failures, mirroring the teacher's resolution procedure of
// tolerating exactly one flaky network round-trip before giving up.
func fetchRemoteWithRetry(ctx context.Context, sources Sources) ([]string, error) {
	versions, err := sources.Remote(ctx)
	if err == nil {
		return versions, nil
	}

	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && !remoteErr.retryable() {
		return nil, err
	}

	versions, retryErr := sources.Remote(ctx)
	if retryErr != nil {
		return nil, retryErr
	}
	return versions, nil
}

func mergeSemverSuperset(local, remote []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range local {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range remote {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func containsVersion(versions []string, target string) bool {
	for _, v := range versions {
		if v == target {
			return true
		}
	}
	return false
}
