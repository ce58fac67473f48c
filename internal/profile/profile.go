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

// Package profile stores named registry credentials (API key plus base
// URL) so the CLI can switch between registries without re-authenticating
// every run.
package profile

import "github.com/openpackage-dev/opkg/internal/opkgerr"

// Credential is one profile's registry login.
type Credential struct {
	BaseURL string
	APIKey  string
}

// Store manages named credentials. Profile names are caller-chosen; "default"
// is used when the CLI is not told otherwise.
type Store interface {
	Get(profile string) (Credential, error)
	Set(profile string, cred Credential) error
	Delete(profile string) error
	List() ([]string, error)
}

// ErrProfileNotFound is returned by Get/Delete for an unknown profile name.
var ErrProfileNotFound = opkgerr.ErrConfig
