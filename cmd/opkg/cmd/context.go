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
	"errors"
	"strings"

	"github.com/openpackage-dev/opkg/internal/ops"
	"github.com/openpackage-dev/opkg/internal/profile"
	"github.com/openpackage-dev/opkg/internal/store"
	"github.com/openpackage-dev/opkg/internal/sync"
	"github.com/openpackage-dev/opkg/internal/transfer"
)

// credentialStore opens the on-disk credential store every profile command
// shares, honoring no per-invocation override: profiles live independently
// of --working-dir/--store-dir.
func credentialStore() (profile.Store, error) {
	path, err := profile.DefaultPath()
	if err != nil {
		return nil, err
	}
	return profile.NewIniStore(path), nil
}

// buildContext wires an *ops.Context from the current invocation's global
// flags: it opens the workspace at --working-dir, the local store at
// --store-dir (or its default), and, if a profile with a base URL is on
// file, a transfer client authenticated with --api-key or the stored key.
// A missing or unconfigured profile is not an error here: operations that
// need a registry report that themselves (e.g. opkgerr.ErrConfig).
func buildContext() (*ops.Context, error) {
	ws, err := ops.OpenWorkspace(workingDirFlag)
	if err != nil {
		return nil, err
	}

	storeRoot := storeDirFlag
	if storeRoot == "" {
		storeRoot, err = store.DefaultRoot()
		if err != nil {
			return nil, err
		}
	}
	st, err := store.New(storeRoot)
	if err != nil {
		return nil, err
	}

	creds, err := credentialStore()
	if err != nil {
		return nil, err
	}

	var client *transfer.Client
	cred, err := creds.Get(profileFlag)
	if err == nil && cred.BaseURL != "" {
		apiKey := cred.APIKey
		if apiKeyFlag != "" {
			apiKey = apiKeyFlag
		}
		client = transfer.NewClient(cred.BaseURL, apiKey)
	} else if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
		return nil, err
	}

	return ops.NewContext(ws, st, client, creds, nil), nil
}

// parseConflictStrategy maps the --conflicts flag value to a
// sync.ConflictStrategy.
func parseConflictStrategy(raw string) (sync.ConflictStrategy, error) {
	switch strings.ToLower(raw) {
	case "", "ask":
		return sync.StrategyAsk, nil
	case "keep-both":
		return sync.StrategyKeepBoth, nil
	case "overwrite":
		return sync.StrategyOverwrite, nil
	case "skip":
		return sync.StrategySkip, nil
	default:
		return sync.StrategyAsk, errors.New("--conflicts must be one of ask, keep-both, overwrite, skip")
	}
}

// syncOptionsFromFlags builds sync.Options for the given conflict strategy,
// wiring a ConflictResolver that consults the Context's Interaction
// collaborator when the strategy is "ask".
func syncOptionsFromFlags(c *ops.Context, strategy sync.ConflictStrategy) sync.Options {
	opts := sync.Options{DefaultStrategy: strategy}
	if strategy == sync.StrategyAsk {
		opts.Resolve = func(canonical, workspacePath string) (sync.ConflictStrategy, error) {
			idx, err := c.Interaction.Select(
				workspacePath+" differs from the registry payload for "+canonical+". Keep both, overwrite, or skip?",
				[]string{"keep-both", "overwrite", "skip"},
			)
			if err != nil {
				return sync.StrategySkip, err
			}
			switch idx {
			case 0:
				return sync.StrategyKeepBoth, nil
			case 1:
				return sync.StrategyOverwrite, nil
			default:
				return sync.StrategySkip, nil
			}
		}
	}
	return opts
}
