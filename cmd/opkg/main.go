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

// opkg is a package manager for the rules, commands, agents, and skills AI
// coding assistants read from a project.
//
// Usage:
//
//	opkg init <name>          Create a package.yml in the workspace
//	opkg add <path>           Append a one-off file to the single-file helper package
//	opkg save / pack          Harvest the workspace into a WIP or stable version
//	opkg install [name]       Install one package, or everything declared
//	opkg uninstall <name>     Remove a declared dependency
//	opkg status / list / show Inspect declared and locally-stored packages
//	opkg duplicate / delete / prune
//	opkg push / pull          Publish to, or fetch from, the remote registry
//	opkg configure / login / logout
package main

import (
	"fmt"
	"os"

	"github.com/openpackage-dev/opkg/cmd/opkg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "opkg: %v\n", err)
		os.Exit(1)
	}
}
