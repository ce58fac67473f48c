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

var loginCmd = &cobra.Command{
	Use:   "login <api-key>",
	Short: "Verify an API key against the configured registry and store it",
	Long: `Login verifies api-key against the current profile's registry before
ever writing it to disk: a bad credential is rejected, not silently stored.
Run "opkg configure" first to set the profile's base URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentialStore()
		if err != nil {
			return err
		}
		identity, err := ops.Login(cmd.Context(), creds, profileFlag, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", identity.Login, identity.Scope)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
