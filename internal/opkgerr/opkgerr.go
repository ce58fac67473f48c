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

// Package opkgerr defines the typed error vocabulary shared by every
// OpenPackage engine. Engines return these sentinels wrapped with context via
// fmt.Errorf("...: %w", err); orchestrators translate them into exit codes
// and user-visible messages.
package opkgerr

import "errors"

// Sentinel errors classified per the error handling design. Use errors.Is to
// test for a kind after unwrapping.
var (
	// ErrInvalidName indicates a package name failed PackageName validation.
	ErrInvalidName = errors.New("invalid package name")

	// ErrInvalidVersion indicates a version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidRange indicates a version range/constraint failed to parse.
	ErrInvalidRange = errors.New("invalid version range")

	// ErrValidation indicates a general user-input validation failure.
	ErrValidation = errors.New("validation error")

	// ErrPackageNotFound indicates the local registry store has no matching
	// package/version.
	ErrPackageNotFound = errors.New("package not found")

	// ErrInvalidPackage indicates a registry payload violates the Package
	// invariants (missing manifest, bad paths, etc.).
	ErrInvalidPackage = errors.New("invalid package payload")

	// ErrRemoteNotFound indicates the remote registry returned 404.
	ErrRemoteNotFound = errors.New("remote package not found")

	// ErrAccessDenied indicates the remote registry returned 401/403.
	ErrAccessDenied = errors.New("access denied")

	// ErrNetwork indicates a transport-level failure talking to the remote
	// registry (timeout, connection refused, DNS, 5xx).
	ErrNetwork = errors.New("network error")

	// ErrIntegrity indicates a downloaded payload failed its size/hash check.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrRemoteUnknown indicates an unclassified remote failure.
	ErrRemoteUnknown = errors.New("unknown remote error")

	// ErrConflict indicates an operation would overwrite existing state
	// without --force (e.g. pack targeting an existing version).
	ErrConflict = errors.New("conflict")

	// ErrUserCancellation indicates an interactive prompt was declined.
	// Never retried; callers exit 1 without a stack trace.
	ErrUserCancellation = errors.New("cancelled by user")

	// ErrConfig indicates missing or invalid credentials/registry configuration.
	ErrConfig = errors.New("configuration error")
)
