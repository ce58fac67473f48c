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
	"os"
	"path/filepath"

	"github.com/hashicorp/go-slug"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/store"
	"github.com/openpackage-dev/opkg/internal/transfer"
)

// PullResult reports what Pull fetched.
type PullResult struct {
	Name      pkgname.Name
	Version   string
	Partial   bool
	FileCount int
}

// Pull fetches name[@version][/path,...] from the remote registry, merging
// it into the local store without destroying paths only present locally
// (spec 4.8's partial-pull merge). recursive also pulls every transitive
// download the registry offers for this request.
func Pull(ctx context.Context, c *Context, spec pkgname.InstallSpec, recursive bool) (PullResult, error) {
	if c.Transfer == nil {
		return PullResult{}, fmt.Errorf("%w: no registry profile configured; run configure/login first", opkgerr.ErrConfig)
	}

	version := spec.Version
	if version == "" {
		version = "latest"
	}

	var paths []string
	if spec.RegistryPath != "" {
		paths = []string{spec.RegistryPath}
	}

	resp, err := c.Transfer.Pull(ctx, spec.Name.String(), version, recursive, paths)
	if err != nil {
		return PullResult{}, err
	}

	m, err := manifest.ParsePackageManifest(resp.ManifestYAML)
	if err != nil {
		return PullResult{}, err
	}

	var last PullResult
	for _, d := range resp.Downloads {
		nv, err := pkgname.ParseInstallSpec(d.NameVersion)
		if err != nil {
			return PullResult{}, err
		}

		data, _, err := c.Transfer.FetchTarball(ctx, d, resp.Size, len(d.Include) > 0)
		if err != nil {
			return PullResult{}, err
		}
		incoming, err := unpackTarball(data)
		if err != nil {
			return PullResult{}, err
		}

		depVersion := nv.Version
		if depVersion == "" {
			depVersion = m.Version
		}

		state, err := c.Store.VersionStateOf(nv.Name, depVersion)
		if err != nil {
			return PullResult{}, err
		}
		var local []store.File
		if state.Exists {
			local, err = c.Store.Load(nv.Name, depVersion)
			if err != nil {
				return PullResult{}, err
			}
		}

		merged := transfer.MergePartial(local, incoming)
		partial := transfer.ResultIsPartial(pathsOf(merged), m.Include, state.IsPartial, len(d.Include) > 0)

		if err := c.Store.Delete(nv.Name, depVersion); err != nil {
			return PullResult{}, err
		}
		if err := c.Store.Save(nv.Name, depVersion, merged, store.SaveOptions{Partial: partial}); err != nil {
			return PullResult{}, err
		}

		last = PullResult{Name: nv.Name, Version: depVersion, Partial: partial, FileCount: len(merged)}
	}

	if len(resp.Downloads) == 0 {
		last = PullResult{Name: spec.Name, Version: m.Version}
	}
	return last, nil
}

func pathsOf(files []store.File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

// unpackTarball extracts a gzipped tar payload into an in-memory
// []store.File. hashicorp/go-slug only unpacks to a directory on disk, so a
// short-lived temp directory is used as the intermediate step; nothing here
// is kept once the files are read back into memory.
func unpackTarball(data []byte) ([]store.File, error) {
	dir, err := os.MkdirTemp("", "opkg-pull-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp unpack dir: %v", opkgerr.ErrConfig, err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := slug.Unpack(bytes.NewReader(data), dir); err != nil {
		return nil, fmt.Errorf("%w: unpacking download: %v", opkgerr.ErrIntegrity, err)
	}

	var out []store.File
	err = filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		out = append(out, store.File{Path: filepath.ToSlash(rel), Content: content})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading unpacked download: %v", opkgerr.ErrConfig, err)
	}
	return out, nil
}
