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
	installDev    bool
	installDryRun bool
	installPatch  bool
	installFlags  resolutionFlags
)

var installCmd = &cobra.Command{
	Use:   "install [name[@version]]",
	Short: "Install a package, or every dependency in package.yml",
	Long: `With an argument, install resolves and materialises one package into
the workspace, recording it in package.yml. Without one, it installs every
dependency already declared there, runtime packages before dev ones.

--dry-run produces the full plan without writing anything: which files
would be created, updated, skipped, or overwritten, and a unified diff for
every present-diff file. --patch renders those diffs as git-style patches
instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildContext()
		if err != nil {
			return err
		}
		strategy, err := parseConflictStrategy(installFlags.conflicts)
		if err != nil {
			return err
		}
		sopts := syncOptionsFromFlags(c, strategy)
		paths := splitCSV(installFlags.paths)

		if len(args) == 0 {
			results, err := ops.Install(cmd.Context(), c, installFlags.resolveOpts(), sopts, installDryRun)
			if err != nil {
				return err
			}
			for _, r := range results {
				printInstallResult(r)
			}
			return nil
		}

		spec, err := pkgname.ParseInstallSpec(args[0])
		if err != nil {
			return err
		}
		result, err := ops.InstallOne(cmd.Context(), c, spec, installDev, installFlags.resolveOpts(), paths, sopts, installDryRun)
		if err != nil {
			return err
		}
		printInstallResult(result)
		return nil
	},
}

// printInstallResult reports what InstallOne/Install did (or, for a dry
// run, would do): the per-file plan summary plus a diff for every write
// that would change an existing workspace file, as a plain unified diff or,
// with --patch, a git-style patch.
func printInstallResult(r ops.InstallResult) {
	if !r.Applied {
		fmt.Printf("would install %s@%s (%s)\n", r.Name, r.Version, r.Source)
		for _, w := range r.Plan.Writes {
			fmt.Printf("  %-11s %s\n", w.Action, w.WorkspacePath)
		}

		diffs := r.Diffs
		if installPatch {
			var err error
			diffs, err = r.Plan.Patches()
			if err != nil {
				fmt.Printf("  (could not render patches: %v)\n", err)
				return
			}
		}
		for _, d := range diffs {
			fmt.Printf("--- %s (+%d -%d)\n%s", d.WorkspacePath, d.Additions, d.Deletions, d.Diff)
		}
		return
	}
	fmt.Printf("installed %s@%s (%s)\n", r.Name, r.Version, r.Source)
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVar(&installDev, "dev", false, "record as a dev-only dependency")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "show the install plan and file diffs without writing anything")
	installCmd.Flags().BoolVar(&installPatch, "patch", false, "with --dry-run, render file diffs as git-style patches")
	addResolutionFlags(installCmd.Flags(), &installFlags)
	addConflictFlags(installCmd.Flags(), &installFlags)
}
