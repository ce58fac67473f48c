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
)

var (
	packName            string
	packForce           bool
	packPreferWorkspace bool
	packConflicts       string
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Harvest the workspace into a stable version of the local package",
	Long: `Pack harvests the workspace and writes it as the package's declared
stable version (package.yml's "version" field), refusing to overwrite an
existing version of the same number unless --force is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildContext()
		if err != nil {
			return err
		}
		strategy, err := parseConflictStrategy(packConflicts)
		if err != nil {
			return err
		}

		result, err := ops.Pack(cmd.Context(), c, packName, packForce, packPreferWorkspace, syncOptionsFromFlags(c, strategy))
		if err != nil {
			return err
		}
		fmt.Printf("packed %s\n", result.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVar(&packName, "name", "", "package to pack (defaults to the workspace's own package)")
	packCmd.Flags().BoolVar(&packForce, "force", false, "overwrite an existing stable version")
	packCmd.Flags().BoolVar(&packPreferWorkspace, "prefer-workspace", false, "let the workspace's copy win a harvest/local conflict")
	packCmd.Flags().StringVar(&packConflicts, "conflicts", "ask", "how to resolve a workspace file that differs from the registry: ask, keep-both, overwrite, skip")
}
