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

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
)

// WipCounters is a semver.CounterSource backed by one JSON file per
// (workspace tag, base version) pair under
// <store>/.wip-counters/<tag>-<base>.json, so a WIP counter survives across
// process invocations against the same workspace and base version.
type WipCounters struct {
	dir string
	mu  sync.Mutex
}

// Counters returns the store's WIP counter source.
func (s *Store) Counters() *WipCounters {
	return &WipCounters{dir: filepath.Join(s.Root, ".wip-counters")}
}

type counterFile struct {
	Next uint64 `json:"next"`
}

// Next returns the next monotone counter value for the (tag, base) pair,
// persisting the advance before returning it. Keying the counter file by
// base as well as tag means a workspace moving to a new base version (the
// WIP cycle policy's "reset the stream" case, spec §4.2) starts counting
// from 1 again instead of continuing the old base's count.
func (c *WipCounters) Next(tag, base string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: creating wip-counters dir: %v", opkgerr.ErrConfig, err)
	}

	key := tag + "-" + base
	path := filepath.Join(c.dir, key+".json")
	var cf counterFile
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		cf = counterFile{Next: 0}
	case err != nil:
		return 0, fmt.Errorf("%w: reading wip counter for %q: %v", opkgerr.ErrConfig, key, err)
	default:
		if err := json.Unmarshal(data, &cf); err != nil {
			return 0, fmt.Errorf("%w: parsing wip counter for %q: %v", opkgerr.ErrConfig, key, err)
		}
	}

	cf.Next++
	out, err := json.Marshal(cf)
	if err != nil {
		return 0, fmt.Errorf("%w: marshalling wip counter for %q: %v", opkgerr.ErrConfig, key, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return 0, fmt.Errorf("%w: writing wip counter for %q: %v", opkgerr.ErrConfig, key, err)
	}
	return cf.Next, nil
}
