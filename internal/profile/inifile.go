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

package profile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
)

// IniStore is a Store backed by a hand-parsed INI file: one "[profile]"
// section per profile, with "base_url" and "api_key" keys. No INI library
// is used; the format is simple enough to scan line by line the same way
// the teacher reads .tool-versions files.
type IniStore struct {
	path string
}

// DefaultPath returns ~/.openpackage/credentials.ini.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving home directory: %v", opkgerr.ErrConfig, err)
	}
	return filepath.Join(home, ".openpackage", "credentials.ini"), nil
}

// NewIniStore returns an IniStore reading and writing path.
func NewIniStore(path string) *IniStore {
	return &IniStore{path: path}
}

func (s *IniStore) Get(profile string) (Credential, error) {
	sections, err := s.load()
	if err != nil {
		return Credential{}, err
	}
	cred, ok := sections[profile]
	if !ok {
		return Credential{}, fmt.Errorf("%w: profile %q not found", ErrProfileNotFound, profile)
	}
	return cred, nil
}

func (s *IniStore) Set(profile string, cred Credential) error {
	sections, err := s.load()
	if err != nil {
		return err
	}
	sections[profile] = cred
	return s.save(sections)
}

func (s *IniStore) Delete(profile string) error {
	sections, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := sections[profile]; !ok {
		return fmt.Errorf("%w: profile %q not found", ErrProfileNotFound, profile)
	}
	delete(sections, profile)
	return s.save(sections)
}

func (s *IniStore) List() ([]string, error) {
	sections, err := s.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// load parses the INI file at s.path, returning an empty map if the file
// does not exist yet.
func (s *IniStore) load() (map[string]Credential, error) {
	sections := map[string]Credential{}

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return sections, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading credentials file: %v", opkgerr.ErrConfig, err)
	}
	defer func() { _ = f.Close() }()

	var current string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			sections[current] = sections[current]
			continue
		}
		if current == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		cred := sections[current]
		switch key {
		case "base_url":
			cred.BaseURL = value
		case "api_key":
			cred.APIKey = value
		}
		sections[current] = cred
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanning credentials file: %v", opkgerr.ErrConfig, err)
	}
	return sections, nil
}

// save rewrites s.path from scratch in sorted profile-name order, so the
// file is deterministic across runs and diff-friendly.
func (s *IniStore) save(sections map[string]Credential) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%w: creating credentials directory: %v", opkgerr.ErrConfig, err)
	}

	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		cred := sections[name]
		fmt.Fprintf(&b, "[%s]\n", name)
		if cred.BaseURL != "" {
			fmt.Fprintf(&b, "base_url = %s\n", cred.BaseURL)
		}
		if cred.APIKey != "" {
			fmt.Fprintf(&b, "api_key = %s\n", cred.APIKey)
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(s.path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("%w: writing credentials file: %v", opkgerr.ErrConfig, err)
	}
	return nil
}
