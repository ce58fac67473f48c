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
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openpackage-dev/opkg/internal/buildinfo"
)

var (
	quietFlag   bool
	verboseFlag bool
	logLevel    = slog.LevelWarn

	workingDirFlag string
	storeDirFlag   string
	profileFlag    string
	apiKeyFlag     string

	rootCmd = &cobra.Command{
		Use:   "opkg",
		Short: "Package manager for AI coding assistant rules, commands, agents, and skills",
		Long: `opkg installs, saves, and shares the rules, commands, agents, and skills
that AI coding assistants (Claude, Cursor, Windsurf, Cline, OpenCode, Codex,
Copilot, and others) read from a project. A single package.yml dependency
list drives every configured tool's own file layout.`,
		Version: buildinfo.Get(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if quietFlag {
				logLevel = slog.LevelError
			} else if verboseFlag {
				logLevel = slog.LevelDebug
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress informational output (errors only)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&workingDirFlag, "working-dir", ".", "workspace root containing package.yml")
	rootCmd.PersistentFlags().StringVar(&storeDirFlag, "store-dir", "", "local registry store directory (default ~/.openpackage/store)")
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "default", "registry credential profile")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "API key to use for this invocation, overriding the stored profile")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetLogLevel returns the current log level based on flags.
func GetLogLevel() slog.Level {
	return logLevel
}
