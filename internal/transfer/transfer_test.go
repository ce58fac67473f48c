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

package transfer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Pull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/packages/my-rule/1.0.0/pull" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"size": 42, "downloads": [{"nameVersion": "my-rule@1.0.0", "url": "http://example/x"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	resp, err := c.Pull(context.Background(), "my-rule", "1.0.0", false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Size != 42 || len(resp.Downloads) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestClient_Pull_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Pull(context.Background(), "missing", "1.0.0", false, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_FetchTarball_FullSizeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, _, err := c.FetchTarball(context.Background(), Download{URL: srv.URL}, 999, false)
	if err == nil {
		t.Fatal("expected integrity error for size mismatch")
	}
}

func TestClient_FetchTarball_PartialTolerant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	data, _, err := c.FetchTarball(context.Background(), Download{URL: srv.URL}, 999, true)
	if err != nil {
		t.Fatalf("partial download under declared size should be tolerated: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q", data)
	}
}

func TestClient_Push(t *testing.T) {
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatal(err)
		}
		gotName = r.FormValue("name")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	err := c.Push(context.Background(), "my-rule", "1.0.0", []byte("tarball-bytes"), PushOptions{ScopedAs: "@acme/my-rule"})
	if err != nil {
		t.Fatal(err)
	}
	if gotName != "@acme/my-rule" {
		t.Errorf("gotName = %q, want @acme/my-rule", gotName)
	}
}

func TestClient_ListVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/packages/my-rule/versions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"versions": ["1.0.0", "1.1.0"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	versions, err := c.ListVersions(context.Background(), "my-rule")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 || versions[0] != "1.0.0" || versions[1] != "1.1.0" {
		t.Errorf("versions = %v", versions)
	}
}

func TestClient_ListVersions_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.ListVersions(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_WhoAmI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api-keys/me" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer auth header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login": "alice", "scope": "read-write"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	id, err := c.WhoAmI(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if id.Login != "alice" || id.Scope != "read-write" {
		t.Errorf("id = %+v", id)
	}
}

func TestClient_WhoAmI_AccessDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad-key")
	_, err := c.WhoAmI(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}
