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

// Package ops composes C1-C10 into the user-facing operations the CLI
// exposes: init, add, save, pack, install, uninstall, status, list, show,
// duplicate, delete, prune, push, pull, configure, login, logout. It is the
// only layer besides cmd/ permitted to talk to internal/prompt; everything
// it returns is plain data the CLI layer formats for a terminal.
package ops

import (
	"fmt"
	"path/filepath"

	"github.com/openpackage-dev/opkg/internal/manifest"
	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/platform"
	"github.com/openpackage-dev/opkg/internal/profile"
	"github.com/openpackage-dev/opkg/internal/prompt"
	"github.com/openpackage-dev/opkg/internal/semver"
	"github.com/openpackage-dev/opkg/internal/store"
	"github.com/openpackage-dev/opkg/internal/sync"
	"github.com/openpackage-dev/opkg/internal/transfer"
)

// manifestFileName is the workspace root's package.yml, the same file name
// as pkgname.ManifestFileName.
const manifestFileName = "package.yml"

// Workspace is one opened working directory: its detected platforms, its
// root manifest (loaded or freshly zero-valued), and the sync engine bound
// to it.
type Workspace struct {
	Root         string
	ManifestPath string
	Manifest     manifest.WorkspaceManifest
	Engine       *sync.Engine
}

// OpenWorkspace loads root's workspace manifest (if any) and detects its
// platforms. A missing manifest is not an error: Init creates one.
func OpenWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving working directory: %v", opkgerr.ErrConfig, err)
	}
	manifestPath := filepath.Join(abs, manifestFileName)
	m, _, err := manifest.LoadWorkspaceManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	return &Workspace{
		Root:         abs,
		ManifestPath: manifestPath,
		Manifest:     m,
		Engine:       sync.New(abs, platform.Detected(abs)),
	}, nil
}

// Save persists w.Manifest back to ManifestPath.
func (w *Workspace) Save() error {
	return w.Manifest.Save(w.ManifestPath)
}

// Context bundles the collaborators every operation needs: the opened
// workspace, the local registry store, an optional remote client (nil means
// no profile is configured), the credential store, and the interaction
// collaborator conflict/destructive operations consult.
type Context struct {
	Workspace   *Workspace
	Store       *store.Store
	Counters    semver.CounterSource
	Transfer    *transfer.Client
	Credentials profile.Store
	Interaction prompt.Interaction
}

// NewContext wires a Context from already-constructed collaborators. CLI
// setup code is expected to build Store/Transfer/Credentials once per
// invocation and pass them here.
func NewContext(ws *Workspace, st *store.Store, transferClient *transfer.Client, creds profile.Store, interaction prompt.Interaction) *Context {
	if interaction == nil {
		interaction = prompt.NoOp()
	}
	return &Context{
		Workspace:   ws,
		Store:       st,
		Counters:    st.Counters(),
		Transfer:    transferClient,
		Credentials: creds,
		Interaction: interaction,
	}
}

// ResolveOpts narrows the resolver mode and stable/prerelease preference a
// command-line invocation selected via --local/--remote/--stable.
type ResolveOpts struct {
	LocalOnly     bool
	RemotePrimary bool
	PreferStable  bool
}

func (o ResolveOpts) selectOptions() semver.SelectOptions {
	return semver.SelectOptions{PreferStable: o.PreferStable}
}
