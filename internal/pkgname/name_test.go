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

package pkgname

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "unscoped lowercase", raw: "my-rule", want: "my-rule"},
		{name: "unscoped case-folded", raw: "My-Rule", want: "my-rule"},
		{name: "scoped", raw: "@acme/my-rule", want: "@acme/my-rule"},
		{name: "scoped case-folded", raw: "@Acme/My-Rule", want: "@acme/my-rule"},
		{name: "empty", raw: "", wantErr: true},
		{name: "scope with no local part", raw: "@acme", wantErr: true},
		{name: "scope with empty local part", raw: "@acme/", wantErr: true},
		{name: "consecutive separators", raw: "my--rule", wantErr: true},
		{name: "invalid leading char", raw: "-my-rule", wantErr: true},
		{name: "too long", raw: func() string {
			s := make([]byte, 215)
			for i := range s {
				s[i] = 'a'
			}
			return string(s)
		}(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got.String() != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.raw, got.String(), tt.want)
			}
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	n1, err := Parse("@Acme/My-Rule")
	if err != nil {
		t.Fatal(err)
	}
	n2, err := Parse(n1.String())
	if err != nil {
		t.Fatal(err)
	}
	if n1.String() != n2.String() {
		t.Errorf("normalise not idempotent: %q != %q", n1.String(), n2.String())
	}
}

func TestParseInstallSpec(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    InstallSpec
		wantErr bool
	}{
		{
			name: "name only",
			raw:  "my-rule",
			want: InstallSpec{Name: mustName(t, "my-rule")},
		},
		{
			name: "name and version",
			raw:  "my-rule@1.2.3",
			want: InstallSpec{Name: mustName(t, "my-rule"), Version: "1.2.3"},
		},
		{
			name: "name version and path",
			raw:  "my-rule@1.2.3/rules/auth.md",
			want: InstallSpec{Name: mustName(t, "my-rule"), Version: "1.2.3", RegistryPath: "rules/auth.md"},
		},
		{
			name: "scoped name with path",
			raw:  "@acme/my-rule/rules/auth.md",
			want: InstallSpec{Name: mustName(t, "@acme/my-rule"), RegistryPath: "rules/auth.md"},
		},
		{
			name:    "trailing slash with no path",
			raw:     "my-rule/",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstallSpec(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseInstallSpec(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("ParseInstallSpec(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseInstallSpec_RoundTrip(t *testing.T) {
	cases := []string{"my-rule", "my-rule@1.2.3", "my-rule@1.2.3/rules/auth.md", "@acme/my-rule@^2.0.0"}
	for _, c := range cases {
		spec, err := ParseInstallSpec(c)
		if err != nil {
			t.Fatalf("ParseInstallSpec(%q): %v", c, err)
		}
		if Format(spec) != c {
			t.Errorf("Format(ParseInstallSpec(%q)) = %q, want %q", c, Format(spec), c)
		}
	}
}

func mustName(t *testing.T, raw string) Name {
	t.Helper()
	n, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse(%q): %v", raw, err)
	}
	return n
}
