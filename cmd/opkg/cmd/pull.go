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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openpackage-dev/opkg/internal/ops"
	"github.com/openpackage-dev/opkg/internal/pkgname"
)

var pullRecursive bool

var pullCmd = &cobra.Command{
	Use:   "pull <name[@version][/path]>",
	Short: "Fetch a package (or a subset of its paths) from the remote registry",
	Long: `Pull downloads name[@version] from the remote registry into the local
store, merging it with whatever is already stored so a partial download
never drops a file this machine already holds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildContext()
		if err != nil {
			return err
		}
		spec, err := pkgname.ParseInstallSpec(args[0])
		if err != nil {
			return err
		}
		result, err := ops.Pull(cmd.Context(), c, spec, pullRecursive)
		if err != nil {
			return err
		}
		fmt.Printf("pulled %s@%s (%d files%s)\n", result.Name, result.Version, result.FileCount, partialSuffix(result.Partial))
		return nil
	},
}

func partialSuffix(partial bool) string {
	if partial {
		return ", partial"
	}
	return ""
}

func init() {
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().BoolVar(&pullRecursive, "recursive", false, "also pull every transitive download the registry offers")
}
