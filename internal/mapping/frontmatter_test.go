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

package mapping

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSplitJoinFrontmatter_RoundTrip(t *testing.T) {
	content := []byte("---\ntitle: Auth rule\ntags: [a, b]\n---\nBody text here.\n")

	fm, body, ok := SplitFrontmatter(content)
	if !ok {
		t.Fatal("expected frontmatter to be found")
	}
	if !strings.Contains(string(body), "Body text here.") {
		t.Errorf("body = %q", body)
	}

	out, err := JoinFrontmatter(fm, body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "title: Auth rule") {
		t.Errorf("round-tripped content missing original frontmatter: %s", out)
	}
}

func TestSplitFrontmatter_Absent(t *testing.T) {
	content := []byte("Just a body, no frontmatter.\n")
	_, body, ok := SplitFrontmatter(content)
	if ok {
		t.Error("expected ok = false")
	}
	if string(body) != string(content) {
		t.Errorf("body = %q, want unchanged content", body)
	}
}

func TestOverlay_ShallowMerge(t *testing.T) {
	var base, override yaml.Node
	if err := yaml.Unmarshal([]byte("title: Base\ndescription: keep me\n"), &base); err != nil {
		t.Fatal(err)
	}
	if err := yaml.Unmarshal([]byte("title: Overridden\nextra: new\n"), &override); err != nil {
		t.Fatal(err)
	}

	merged, err := Overlay(&base, &override)
	if err != nil {
		t.Fatal(err)
	}

	out, err := yaml.Marshal(merged)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	if !strings.Contains(s, "title: Overridden") {
		t.Errorf("expected overridden title, got:\n%s", s)
	}
	if !strings.Contains(s, "description: keep me") {
		t.Errorf("expected preserved description, got:\n%s", s)
	}
	if !strings.Contains(s, "extra: new") {
		t.Errorf("expected new key from override, got:\n%s", s)
	}
}

func TestOverlay_NilOverride(t *testing.T) {
	var base yaml.Node
	if err := yaml.Unmarshal([]byte("title: Base\n"), &base); err != nil {
		t.Fatal(err)
	}
	got, err := Overlay(&base, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != &base {
		t.Error("expected Overlay to return base unchanged when override is nil")
	}
}
