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

package harvest

import (
	"fmt"
	"os"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/pkgname"
	"github.com/openpackage-dev/opkg/internal/rewrite"
	"github.com/openpackage-dev/opkg/internal/store"
)

// RenameRegistryDirectory rewrites every version's manifest "name" field
// under the local registry store from oldName to newName, then moves the
// store directory itself, implementing save-time rename step 2. It is a
// no-op (not an error) if oldName has no existing registry directory.
func RenameRegistryDirectory(st *store.Store, oldName, newName pkgname.Name) error {
	versions, err := st.List(oldName)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return nil
	}

	for _, v := range versions {
		files, err := st.Load(oldName, v)
		if err != nil {
			return err
		}

		for i, f := range files {
			if f.Path != pkgname.ManifestFileName {
				continue
			}
			rewritten, err := rewrite.UpdateYAMLField(string(f.Content), []string{"name"}, newName.String())
			if err != nil {
				return fmt.Errorf("%w: rewriting manifest name for %s@%s: %v", opkgerr.ErrInvalidPackage, oldName, v, err)
			}
			files[i].Content = []byte(rewritten)
		}

		if err := st.Delete(newName, v); err != nil {
			return err
		}
		if err := st.Save(newName, v, files, store.SaveOptions{}); err != nil {
			return err
		}
	}

	return st.Delete(oldName, "")
}

// RenamePackageCacheDir moves a package's workspace-side cache directory
// (index + "workspace path" passthrough files) from the old name to the
// new one, implementing save-time rename step 1's workspace-side half.
func RenamePackageCacheDir(oldDir, newDir string) error {
	if _, err := os.Stat(oldDir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(newDir); err != nil {
		return fmt.Errorf("%w: clearing rename target: %v", opkgerr.ErrConfig, err)
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return fmt.Errorf("%w: renaming package cache dir: %v", opkgerr.ErrConfig, err)
	}
	return nil
}
