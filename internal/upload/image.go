// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/mediaforge/gengateway/internal/gatewayerr"
)

// Image is the polymorphic input the Uploader accepts, expressed as a
// tagged sum rather than an `any` so normalization is an exhaustive match.
// Exactly one field is meaningful per value; construct one of the helpers
// below rather than the struct literal.
type Image struct {
	kind  imageKind
	url   string
	path  string
	b64   string
	bytes []byte
}

type imageKind int

const (
	kindURL imageKind = iota
	kindPath
	kindBase64
	kindBytes
)

func FromURL(url string) Image    { return Image{kind: kindURL, url: url} }
func FromPath(path string) Image  { return Image{kind: kindPath, path: path} }
func FromBase64(b64 string) Image { return Image{kind: kindBase64, b64: b64} }
func FromBytes(b []byte) Image    { return Image{kind: kindBytes, bytes: b} }

// Fetcher retrieves the bytes at a remote URL. In production this is a
// thin wrapper over *http.Client; tests substitute a stub.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher fetches a URL exactly once via the given client.
type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindTransport, "cannot build fetch request", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindTransport, "cannot fetch image url", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, gatewayerr.New(gatewayerr.KindTransport, fmt.Sprintf("fetch %s: status %d", url, resp.StatusCode))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindTransport, "cannot read fetched image body", err)
	}
	return b, nil
}

// Normalize resolves img to its exact bytes. Local path forms (file://,
// ~, absolute, relative) are canonicalized before reading; base64 strings
// are decoded; URLs are fetched once; raw buffers pass through unchanged.
func Normalize(ctx context.Context, img Image, fetch Fetcher) ([]byte, error) {
	switch img.kind {
	case kindBytes:
		return img.bytes, nil

	case kindBase64:
		data := img.b64
		if idx := strings.Index(data, ","); strings.HasPrefix(data, "data:") && idx >= 0 {
			data = data[idx+1:]
		}
		b, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			if b, err = base64.URLEncoding.DecodeString(data); err != nil {
				return nil, gatewayerr.Wrap(gatewayerr.KindValidation, "invalid base64 image", err)
			}
		}
		return b, nil

	case kindURL:
		if fetch == nil {
			return nil, gatewayerr.New(gatewayerr.KindValidation, "no fetcher configured for url image")
		}
		return fetch.Fetch(ctx, img.url)

	case kindPath:
		p, err := canonicalPath(img.path)
		if err != nil {
			return nil, gatewayerr.Wrap(gatewayerr.KindValidation, "cannot resolve image path", err)
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, gatewayerr.Wrap(gatewayerr.KindValidation, "cannot read image path", err)
		}
		return b, nil

	default:
		return nil, gatewayerr.New(gatewayerr.KindValidation, "unrecognized image input")
	}
}

func canonicalPath(p string) (string, error) {
	switch {
	case strings.HasPrefix(p, "file://"):
		p = strings.TrimPrefix(p, "file://")
	case strings.HasPrefix(p, "~"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return abs, nil
}
