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
	"context"
	"errors"
	"fmt"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/resolver"
)

// registrySources implements resolver.Sources against this Context's local
// store and (if configured) remote transfer client for one package name.
// The remote side lists versions via transfer.Client.ListVersions, the only
// wire-protocol endpoint that answers "what versions exist" rather than
// "give me one version's payload".
type registrySources struct {
	ctx  *Context
	name pkgname.Name
}

func (c *Context) sourcesFor(name pkgname.Name) resolver.Sources {
	return registrySources{ctx: c, name: name}
}

func (s registrySources) Local(_ context.Context) ([]string, error) {
	return s.ctx.Store.List(s.name)
}

func (s registrySources) Remote(ctx context.Context) ([]string, error) {
	if s.ctx.Transfer == nil {
		return nil, &resolver.RemoteError{Reason: resolver.RemoteUnknown, Err: fmt.Errorf("%w: no registry profile configured", opkgerr.ErrConfig)}
	}
	versions, err := s.ctx.Transfer.ListVersions(ctx, s.name.String())
	if err != nil {
		return nil, &resolver.RemoteError{Reason: classifyRemoteErr(err), Err: err}
	}
	return versions, nil
}

// classifyRemoteErr maps a transfer.Client error (wrapped with an
// opkgerr sentinel) onto resolver's RemoteFailureReason taxonomy.
func classifyRemoteErr(err error) resolver.RemoteFailureReason {
	switch {
	case errors.Is(err, opkgerr.ErrRemoteNotFound):
		return resolver.RemoteNotFound
	case errors.Is(err, opkgerr.ErrAccessDenied):
		return resolver.RemoteAccessDenied
	case errors.Is(err, opkgerr.ErrNetwork):
		return resolver.RemoteNetwork
	case errors.Is(err, opkgerr.ErrIntegrity):
		return resolver.RemoteIntegrity
	default:
		return resolver.RemoteUnknown
	}
}

// mode translates the CLI's --local/--remote flags into a resolver.Mode.
func (o ResolveOpts) mode() resolver.Mode {
	switch {
	case o.LocalOnly:
		return resolver.ModeLocalOnly
	case o.RemotePrimary:
		return resolver.ModeRemotePrimary
	default:
		return resolver.ModeDefault
	}
}
