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

// Package transfer implements the partial pull/push protocol against the
// remote registry API: downloading (optionally a subset of) a package
// version's files, integrity checking, and uploading a local payload.
package transfer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/openpackage-dev/opkg/internal/opkgerr"
)

// Client talks to one remote registry base URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient returns a Client for baseURL, authenticating with apiKey (may
// be "" for anonymous pulls). Requests time out after 30s, or after the
// number of milliseconds in OPENPACKAGEAPI_TIMEOUT when that is set.
func NewClient(baseURL, apiKey string) *Client {
	timeout := 30 * time.Second
	if ms, err := strconv.Atoi(os.Getenv("OPENPACKAGEAPI_TIMEOUT")); err == nil && ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// Download describes one file the pull endpoint offers: a dependency
// (name@version), a signed URL to fetch its tarball from, and an optional
// include subset.
type Download struct {
	NameVersion string   `json:"nameVersion"`
	URL         string   `json:"url"`
	Include     []string `json:"include,omitempty"`
}

// PullResponse is the pull endpoint's JSON body.
type PullResponse struct {
	ManifestYAML []byte     `json:"manifestYaml"`
	Downloads    []Download `json:"downloads"`
	Size         int64      `json:"size"`
}

// Integrity is the result of checking a downloaded tarball. Digest is
// reserved for a future signing layer; spec C8 calls only for size-based
// checking today, so it is never compared against anything.
type Integrity struct {
	Size   int64
	Digest string
}

// Pull fetches package metadata and a download plan from
// GET /packages/<name>/<version>/pull?recursive=<bool>&includeManifest=true&paths=<csv>.
func (c *Client) Pull(ctx context.Context, name, version string, recursive bool, paths []string) (PullResponse, error) {
	url := fmt.Sprintf("%s/packages/%s/%s/pull?recursive=%t&includeManifest=true",
		c.baseURL, name, version, recursive)
	if len(paths) > 0 {
		url += "&paths=" + strings.Join(paths, ",")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return PullResponse{}, fmt.Errorf("%w: building pull request: %v", opkgerr.ErrNetwork, err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PullResponse{}, fmt.Errorf("%w: %v", opkgerr.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.statusToError(resp); err != nil {
		return PullResponse{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PullResponse{}, fmt.Errorf("%w: reading pull response: %v", opkgerr.ErrNetwork, err)
	}

	var out PullResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return PullResponse{}, fmt.Errorf("%w: parsing pull response: %v", opkgerr.ErrRemoteUnknown, err)
	}
	return out, nil
}

// ListVersions fetches the set of versions the registry holds for name from
// GET /packages/<name>/versions. The wire protocol table names this
// endpoint only implicitly (it is the natural counterpart to the
// per-version metadata endpoint); a registry that has never heard of name
// answers 404, surfaced as opkgerr.ErrRemoteNotFound rather than an empty
// list, so callers can distinguish "no such package" from "no versions".
func (c *Client) ListVersions(ctx context.Context, name string) ([]string, error) {
	url := fmt.Sprintf("%s/packages/%s/versions", c.baseURL, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: building versions request: %v", opkgerr.ErrNetwork, err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", opkgerr.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.statusToError(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading versions response: %v", opkgerr.ErrNetwork, err)
	}

	var out struct {
		Versions []string `json:"versions"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: parsing versions response: %v", opkgerr.ErrRemoteUnknown, err)
	}
	return out.Versions, nil
}

// Identity is the registry's view of the API key presented, from
// GET /api-keys/me.
type Identity struct {
	Login string `json:"login"`
	Scope string `json:"scope"`
}

// WhoAmI verifies the client's API key against GET /api-keys/me, the
// endpoint login uses to confirm a credential before it is stored.
func (c *Client) WhoAmI(ctx context.Context) (Identity, error) {
	url := c.baseURL + "/api-keys/me"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: building identity request: %v", opkgerr.ErrNetwork, err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", opkgerr.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.statusToError(resp); err != nil {
		return Identity{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: reading identity response: %v", opkgerr.ErrNetwork, err)
	}

	var out Identity
	if err := json.Unmarshal(body, &out); err != nil {
		return Identity{}, fmt.Errorf("%w: parsing identity response: %v", opkgerr.ErrRemoteUnknown, err)
	}
	return out, nil
}

// FetchTarball downloads one Download's signed URL and returns its bytes
// plus the integrity result. A full download must equal declaredSize; a
// partial download must be <= declaredSize (tolerant), per spec 4.8.
func (c *Client) FetchTarball(ctx context.Context, d Download, declaredSize int64, partial bool) ([]byte, Integrity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, http.NoBody)
	if err != nil {
		return nil, Integrity{}, fmt.Errorf("%w: building download request: %v", opkgerr.ErrNetwork, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Integrity{}, fmt.Errorf("%w: %v", opkgerr.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.statusToError(resp); err != nil {
		return nil, Integrity{}, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Integrity{}, fmt.Errorf("%w: reading download body: %v", opkgerr.ErrNetwork, err)
	}

	sum := sha256.Sum256(data)
	integrity := Integrity{Size: int64(len(data)), Digest: hex.EncodeToString(sum[:])}

	if partial {
		if integrity.Size > declaredSize {
			return nil, integrity, fmt.Errorf("%w: partial download %d bytes exceeds declared size %d", opkgerr.ErrIntegrity, integrity.Size, declaredSize)
		}
	} else if integrity.Size != declaredSize {
		return nil, integrity, fmt.Errorf("%w: download %d bytes, declared %d", opkgerr.ErrIntegrity, integrity.Size, declaredSize)
	}

	return data, integrity, nil
}

// PushOptions configures Push.
type PushOptions struct {
	Partial   bool
	ScopedAs  string // the "@scope/name" to rewrite the manifest's name to, if non-empty
}

// Push uploads a tarball and its rewritten manifest name as a multipart
// body to POST /packages/<name>/<version>/push.
func (c *Client) Push(ctx context.Context, name, version string, tarball []byte, opts PushOptions) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	uploadName := name
	if opts.ScopedAs != "" {
		uploadName = opts.ScopedAs
	}
	if err := w.WriteField("name", uploadName); err != nil {
		return fmt.Errorf("%w: writing multipart field: %v", opkgerr.ErrRemoteUnknown, err)
	}
	if err := w.WriteField("version", version); err != nil {
		return fmt.Errorf("%w: writing multipart field: %v", opkgerr.ErrRemoteUnknown, err)
	}
	if opts.Partial {
		if err := w.WriteField("partial", "true"); err != nil {
			return fmt.Errorf("%w: writing multipart field: %v", opkgerr.ErrRemoteUnknown, err)
		}
	}

	part, err := w.CreateFormFile("payload", uploadName+"-"+version+".tar.gz")
	if err != nil {
		return fmt.Errorf("%w: creating multipart file part: %v", opkgerr.ErrRemoteUnknown, err)
	}
	if _, err := part.Write(tarball); err != nil {
		return fmt.Errorf("%w: writing tarball into multipart body: %v", opkgerr.ErrRemoteUnknown, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: closing multipart writer: %v", opkgerr.ErrRemoteUnknown, err)
	}

	url := fmt.Sprintf("%s/packages/%s/%s/push", c.baseURL, name, version)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("%w: building push request: %v", opkgerr.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", opkgerr.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	return c.statusToError(resp)
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) statusToError(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %s", opkgerr.ErrRemoteNotFound, resp.Status)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %s", opkgerr.ErrAccessDenied, resp.Status)
	default:
		return fmt.Errorf("%w: unexpected status %s", opkgerr.ErrRemoteUnknown, resp.Status)
	}
}

// SizeHeader parses a declared tarball size from an HTTP response header,
// returning 0 if absent or malformed.
func SizeHeader(resp *http.Response) int64 {
	n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
