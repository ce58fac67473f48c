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
	saveName            string
	savePreferWorkspace bool
	saveConflicts       string
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Harvest the workspace into a new WIP version of the local package",
	Long: `Save harvests every platform's files for the workspace's own package
(or the package named by --name) and writes them as a new work-in-progress
version in the local store, then re-syncs the workspace against it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildContext()
		if err != nil {
			return err
		}
		strategy, err := parseConflictStrategy(saveConflicts)
		if err != nil {
			return err
		}

		result, err := ops.Save(cmd.Context(), c, saveName, savePreferWorkspace, syncOptionsFromFlags(c, strategy))
		if err != nil {
			return err
		}
		fmt.Printf("saved %s\n", result.Version)
		if result.Notice != "" {
			fmt.Println(result.Notice)
		}
		if len(result.Rotated) > 0 {
			fmt.Printf("rotated out stale WIP versions: %v\n", result.Rotated)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVar(&saveName, "name", "", "package to save (defaults to the workspace's own package)")
	saveCmd.Flags().BoolVar(&savePreferWorkspace, "prefer-workspace", false, "let the workspace's copy win a harvest/local conflict")
	saveCmd.Flags().StringVar(&saveConflicts, "conflicts", "ask", "how to resolve a workspace file that differs from the registry: ask, keep-both, overwrite, skip")
}
