// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package message

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_PlainString(t *testing.T) {
	p := Parse("draw a fox")
	require.Equal(t, "draw a fox", p.Text)
	require.False(t, p.HasImages)
}

func TestParse_UnsupportedShapeReturnsEmpty(t *testing.T) {
	p := Parse(42)
	require.Equal(t, Parsed{}, p)
}

func TestParse_TextAndImageURLParts(t *testing.T) {
	input := []any{
		map[string]any{"type": "text", "text": "a fox in the snow"},
		map[string]any{"type": "image_url", "image_url": map[string]any{"url": "https://example.com/a.png"}},
	}
	p := Parse(input)
	require.Equal(t, "a fox in the snow", p.Text)
	require.True(t, p.HasImages)
	require.Len(t, p.Images, 1)
	require.Equal(t, "https://example.com/a.png", p.Images[0].URL)
}

func TestParse_DataURITakesPrecedenceOverURLLikePrefix(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("not really an image but long enough"))
	input := []any{
		map[string]any{"type": "image", "url": "data:image/png;base64," + encoded},
	}
	p := Parse(input)
	require.Len(t, p.Images, 1)
	require.Equal(t, encoded, p.Images[0].Base64)
	require.Empty(t, p.Images[0].URL)
}

func TestParse_PrecedenceImageURLBeatsBase64Fields(t *testing.T) {
	input := []any{
		map[string]any{
			"type":          "image_url",
			"image_url":     map[string]any{"url": "https://example.com/a.png"},
			"b64_json":      "ZZZZZZZZZZZZZZZZ",
			"image_base64":  "YYYYYYYYYYYYYYYY",
		},
	}
	p := Parse(input)
	require.Len(t, p.Images, 1)
	require.Equal(t, "https://example.com/a.png", p.Images[0].URL)
}

func TestParse_BareBase64String(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("some raw image bytes of reasonable length"))
	input := []any{
		map[string]any{"type": "image", "base64": encoded},
	}
	p := Parse(input)
	require.Len(t, p.Images, 1)
	require.Equal(t, encoded, p.Images[0].Base64)
}

func TestParse_ImagesWithoutRecognizedTypeStillDetected(t *testing.T) {
	input := []any{
		map[string]any{"url": "https://example.com/no-type-field.png"},
	}
	p := Parse(input)
	require.True(t, p.HasImages)
	require.Equal(t, "https://example.com/no-type-field.png", p.Images[0].URL)
}

func TestParse_SingleObjectShape(t *testing.T) {
	p := Parse(map[string]any{"type": "text", "text": "hello"})
	require.Equal(t, "hello", p.Text)
}
