// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package upload

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body []byte
	err  error
}

func (s stubFetcher) Fetch(context.Context, string) ([]byte, error) { return s.body, s.err }

func TestNormalize_Bytes(t *testing.T) {
	b := []byte{1, 2, 3}
	got, err := Normalize(t.Context(), FromBytes(b), nil)
	require.NoError(t, err)
	require.Equal(t, b, got)
}

func TestNormalize_Base64(t *testing.T) {
	raw := []byte("hello world")
	enc := base64.StdEncoding.EncodeToString(raw)

	got, err := Normalize(t.Context(), FromBase64(enc), nil)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestNormalize_DataURI(t *testing.T) {
	raw := []byte("png-bytes")
	enc := base64.StdEncoding.EncodeToString(raw)
	dataURI := "data:image/png;base64," + enc

	got, err := Normalize(t.Context(), FromBase64(dataURI), nil)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestNormalize_URL(t *testing.T) {
	want := []byte("fetched-bytes")
	got, err := Normalize(t.Context(), FromURL("https://example.com/a.png"), stubFetcher{body: want})
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNormalize_Path(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "img.bin")
	want := []byte{9, 9, 9}
	require.NoError(t, os.WriteFile(p, want, 0o600))

	got, err := Normalize(t.Context(), FromPath(p), nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNormalize_FileURIPath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "img.bin")
	want := []byte{5, 5}
	require.NoError(t, os.WriteFile(p, want, 0o600))

	got, err := Normalize(t.Context(), FromPath("file://"+p), nil)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestNormalize_InvalidBase64(t *testing.T) {
	_, err := Normalize(t.Context(), FromBase64("not base64!!!"), nil)
	require.Error(t, err)
}
