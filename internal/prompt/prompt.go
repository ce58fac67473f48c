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

// Package prompt defines the UserInteraction collaborator contract
// internal/ops consults when a conflict strategy or destructive operation
// needs the user's say, without internal/ops itself knowing how that
// decision gets surfaced.
package prompt

// Interaction is how internal/ops asks the user something. cmd/opkg/cmd
// supplies the only interactive implementation; everything in internal/
// talks to this interface, never to a terminal directly.
type Interaction interface {
	// Confirm asks a yes/no question, returning defaultYes if the
	// implementation can't ask (e.g. NoOp).
	Confirm(message string, defaultYes bool) (bool, error)
	// Select asks the user to choose one of options, returning the chosen
	// index.
	Select(message string, options []string) (int, error)
	// Prompt asks for free-form text input.
	Prompt(message string) (string, error)
}

// noOp is the non-interactive Interaction used for CI runs and --yes:
// every Confirm resolves to its default, and Select/Prompt fail loudly
// rather than silently guessing.
type noOp struct{}

// NoOp returns an Interaction suitable for non-interactive runs: Confirm
// always returns its default, Select and Prompt return an error since there
// is no sensible default for either.
func NoOp() Interaction { return noOp{} }

func (noOp) Confirm(_ string, defaultYes bool) (bool, error) { return defaultYes, nil }

func (noOp) Select(message string, _ []string) (int, error) {
	return 0, &NonInteractiveError{Message: message}
}

func (noOp) Prompt(message string) (string, error) {
	return "", &NonInteractiveError{Message: message}
}

// NonInteractiveError reports that an operation needed interactive input
// but none was available.
type NonInteractiveError struct {
	Message string
}

func (e *NonInteractiveError) Error() string {
	return "non-interactive session cannot answer: " + e.Message
}
