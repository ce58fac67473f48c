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

var (
	pushScopeAs string
	pushPaths   string
)

var pushCmd = &cobra.Command{
	Use:   "push <name[@version]>",
	Short: "Upload a locally-stored package version to the remote registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildContext()
		if err != nil {
			return err
		}
		spec, err := pkgname.ParseInstallSpec(args[0])
		if err != nil {
			return err
		}
		result, err := ops.Push(cmd.Context(), c, spec, pushScopeAs, splitCSV(pushPaths))
		if err != nil {
			return err
		}
		fmt.Printf("pushed %s@%s\n", result.Name, result.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().StringVar(&pushScopeAs, "scope-as", "", "claim an unscoped package as @username/name on first publish")
	pushCmd.Flags().StringVar(&pushPaths, "paths", "", "comma-separated registry paths; marks the upload partial (the whole stored version is still uploaded)")
}
