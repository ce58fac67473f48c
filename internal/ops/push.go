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

package ops

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/transfer"
)

// PushResult reports what Push uploaded.
type PushResult struct {
	Name    pkgname.Name
	Version string
}

// Push uploads name@version (or its most recent local version, if
// unspecified) to the remote registry, optionally scoping it to scopedAs
// (the "@username/name" handshake spec 4.8 describes for first publish of
// an unscoped name). A non-empty paths marks the upload partial; the payload
// is not filtered by paths, so every file of the stored version is uploaded.
func Push(ctx context.Context, c *Context, spec pkgname.InstallSpec, scopedAs string, paths []string) (PushResult, error) {
	if c.Transfer == nil {
		return PushResult{}, fmt.Errorf("%w: no registry profile configured; run configure/login first", opkgerr.ErrConfig)
	}

	version := spec.Version
	if version == "" {
		versions, err := c.Store.List(spec.Name)
		if err != nil {
			return PushResult{}, err
		}
		if len(versions) == 0 {
			return PushResult{}, fmt.Errorf("%w: no local versions of %s to push", opkgerr.ErrPackageNotFound, spec.Name)
		}
		version = versions[0]
	}

	files, err := c.Store.Load(spec.Name, version)
	if err != nil {
		return PushResult{}, err
	}
	var manifestBytes []byte
	for _, f := range files {
		if f.Path == pkgname.ManifestFileName {
			manifestBytes = f.Content
			break
		}
	}
	if manifestBytes != nil {
		m, err := manifest.ParsePackageManifest(manifestBytes)
		if err != nil {
			return PushResult{}, err
		}
		if m.Private {
			return PushResult{}, fmt.Errorf("%w: %s is private and cannot be pushed", opkgerr.ErrAccessDenied, spec.Name)
		}
	}

	var buf bytes.Buffer
	if _, err := c.Store.Export(spec.Name, version, &buf); err != nil {
		return PushResult{}, err
	}

	partial := len(paths) > 0
	if err := c.Transfer.Push(ctx, spec.Name.String(), version, buf.Bytes(), transfer.PushOptions{Partial: partial, ScopedAs: scopedAs}); err != nil {
		return PushResult{}, err
	}

	return PushResult{Name: spec.Name, Version: version}, nil
}
