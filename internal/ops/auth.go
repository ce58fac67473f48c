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
	"errors"
	"fmt"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
	"github.com/openpackage-dev/opkg/internal/profile"
	"github.com/openpackage-dev/opkg/internal/transfer"
)

// Configure writes profileName's registry base URL without touching its API
// key, creating the profile if it doesn't exist yet.
func Configure(store profile.Store, profileName, baseURL string) error {
	cred, err := store.Get(profileName)
	if err != nil && !isProfileNotFound(err) {
		return err
	}
	cred.BaseURL = baseURL
	return store.Set(profileName, cred)
}

// Login verifies apiKey against the profile's configured registry (GET
// /api-keys/me) before persisting it, so a typo never gets silently stored.
func Login(ctx context.Context, store profile.Store, profileName, apiKey string) (transfer.Identity, error) {
	cred, err := store.Get(profileName)
	if err != nil && !isProfileNotFound(err) {
		return transfer.Identity{}, err
	}
	if cred.BaseURL == "" {
		return transfer.Identity{}, fmt.Errorf("%w: profile %s has no registry base URL; run configure first", opkgerr.ErrConfig, profileName)
	}

	client := transfer.NewClient(cred.BaseURL, apiKey)
	identity, err := client.WhoAmI(ctx)
	if err != nil {
		return transfer.Identity{}, err
	}

	cred.APIKey = apiKey
	if err := store.Set(profileName, cred); err != nil {
		return transfer.Identity{}, err
	}
	return identity, nil
}

// Logout deletes profileName's stored credential.
func Logout(store profile.Store, profileName string) error {
	return store.Delete(profileName)
}

func isProfileNotFound(err error) bool {
	return errors.Is(err, profile.ErrProfileNotFound)
}
