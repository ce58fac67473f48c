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

package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/openpackage-dev/opkg/internal/profile"
)

func TestConfigure_SetsBaseURLWithoutProfileExisting(t *testing.T) {
	store := profile.NewIniStore(filepath.Join(t.TempDir(), "credentials.ini"))

	if err := Configure(store, "default", "https://registry.example"); err != nil {
		t.Fatal(err)
	}

	cred, err := store.Get("default")
	if err != nil {
		t.Fatal(err)
	}
	if cred.BaseURL != "https://registry.example" {
		t.Errorf("BaseURL = %q", cred.BaseURL)
	}
}

func TestConfigure_PreservesExistingAPIKey(t *testing.T) {
	store := profile.NewIniStore(filepath.Join(t.TempDir(), "credentials.ini"))
	if err := store.Set("default", profile.Credential{BaseURL: "https://old.example", APIKey: "secret"}); err != nil {
		t.Fatal(err)
	}

	if err := Configure(store, "default", "https://new.example"); err != nil {
		t.Fatal(err)
	}

	cred, err := store.Get("default")
	if err != nil {
		t.Fatal(err)
	}
	if cred.BaseURL != "https://new.example" || cred.APIKey != "secret" {
		t.Errorf("cred = %+v", cred)
	}
}

func TestLogin_VerifiesAndStoresAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer new-key" {
			t.Errorf("missing bearer auth header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"login": "alice", "scope": "read-write"}`))
	}))
	defer srv.Close()

	store := profile.NewIniStore(filepath.Join(t.TempDir(), "credentials.ini"))
	if err := store.Set("default", profile.Credential{BaseURL: srv.URL}); err != nil {
		t.Fatal(err)
	}

	identity, err := Login(context.Background(), store, "default", "new-key")
	if err != nil {
		t.Fatal(err)
	}
	if identity.Login != "alice" {
		t.Errorf("identity = %+v", identity)
	}

	cred, err := store.Get("default")
	if err != nil {
		t.Fatal(err)
	}
	if cred.APIKey != "new-key" {
		t.Errorf("APIKey = %q, want new-key", cred.APIKey)
	}
}

func TestLogin_MissingBaseURL(t *testing.T) {
	store := profile.NewIniStore(filepath.Join(t.TempDir(), "credentials.ini"))
	_, err := Login(context.Background(), store, "default", "key")
	if err == nil {
		t.Error("expected error logging in without a configured base URL")
	}
}

func TestLogin_RejectsBadCredentialWithoutStoring(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := profile.NewIniStore(filepath.Join(t.TempDir(), "credentials.ini"))
	if err := store.Set("default", profile.Credential{BaseURL: srv.URL}); err != nil {
		t.Fatal(err)
	}

	if _, err := Login(context.Background(), store, "default", "bad-key"); err == nil {
		t.Fatal("expected error for rejected credential")
	}

	cred, err := store.Get("default")
	if err != nil {
		t.Fatal(err)
	}
	if cred.APIKey != "" {
		t.Errorf("APIKey = %q, want unset after a failed login", cred.APIKey)
	}
}

func TestLogout_DeletesProfile(t *testing.T) {
	store := profile.NewIniStore(filepath.Join(t.TempDir(), "credentials.ini"))
	if err := store.Set("default", profile.Credential{BaseURL: "https://registry.example"}); err != nil {
		t.Fatal(err)
	}

	if err := Logout(store, "default"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("default"); err == nil {
		t.Error("expected error getting a logged-out profile")
	}
}
