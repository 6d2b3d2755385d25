// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package message normalizes the heterogeneous client payload shapes the
// public chat/multimodal endpoints accept (string, array of parts, object,
// base64 variants) into a single {text, images} record the orchestrator can
// hand to the Uploader and Draft Builder.
package message

import (
	"encoding/base64"
	"strings"
)

// ImageRef is one image reference extracted from a client payload, either a
// URL or a base64 string (exactly one field is set). The Uploader (package
// upload) is responsible for turning this into bytes.
type ImageRef struct {
	URL    string // set when the value looked like a URL
	Base64 string // set when the value looked like base64 (data-URI header stripped)
}

// Parsed is the normalized client message.
type Parsed struct {
	Text      string
	Images    []ImageRef
	HasImages bool
}

// part mirrors one element of an OpenAI-style content array.
type part struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	URL      string `json:"url"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
	B64JSON     string `json:"b64_json"`
	Base64      string `json:"base64"`
	ImageBase64 string `json:"image_base64"`
	ImageBytes  string `json:"image_bytes"`
}

var textTypes = map[string]bool{"text": true, "input_text": true}
var imageTypes = map[string]bool{"image_url": true, "input_image": true, "image": true}

// Parse normalizes one of the supported client shapes. Supported inputs:
//   - string: treated as plain text.
//   - []any: a content-part array; each element is either a map[string]any
//     matching `part` or a bare string (treated as text).
//   - map[string]any: a single part.
func Parse(input any) Parsed {
	switch v := input.(type) {
	case string:
		return Parsed{Text: v}
	case []any:
		return parseParts(v)
	case map[string]any:
		return parseParts([]any{v})
	default:
		return Parsed{}
	}
}

func parseParts(items []any) Parsed {
	var out Parsed
	var textBuilder strings.Builder
	for _, item := range items {
		switch v := item.(type) {
		case string:
			textBuilder.WriteString(v)
		case map[string]any:
			p := decodePart(v)
			switch {
			case textTypes[p.Type] || (p.Type == "" && p.Text != ""):
				textBuilder.WriteString(p.Text)
			case imageTypes[p.Type] || hasImageValue(p):
				if ref, ok := classify(imageValue(p)); ok {
					out.Images = append(out.Images, ref)
					out.HasImages = true
				}
			}
		}
	}
	out.Text = textBuilder.String()
	return out
}

func decodePart(m map[string]any) part {
	var p part
	if t, ok := m["type"].(string); ok {
		p.Type = t
	}
	if t, ok := m["text"].(string); ok {
		p.Text = t
	}
	if u, ok := m["url"].(string); ok {
		p.URL = u
	}
	if iu, ok := m["image_url"].(string); ok {
		p.ImageURL.URL = iu
	} else if iu, ok := m["image_url"].(map[string]any); ok {
		if u, ok := iu["url"].(string); ok {
			p.ImageURL.URL = u
		}
	}
	if b, ok := m["b64_json"].(string); ok {
		p.B64JSON = b
	}
	if b, ok := m["base64"].(string); ok {
		p.Base64 = b
	}
	if b, ok := m["image_base64"].(string); ok {
		p.ImageBase64 = b
	}
	if b, ok := m["image_bytes"].(string); ok {
		p.ImageBytes = b
	}
	return p
}

func hasImageValue(p part) bool {
	return imageValue(p) != ""
}

// imageValue picks the first non-empty candidate field in the documented
// precedence order.
func imageValue(p part) string {
	switch {
	case p.ImageURL.URL != "":
		return p.ImageURL.URL
	case p.URL != "":
		return p.URL
	case p.B64JSON != "":
		return p.B64JSON
	case p.ImageBase64 != "":
		return p.ImageBase64
	case p.Base64 != "":
		return p.Base64
	case p.ImageBytes != "":
		return p.ImageBytes
	default:
		return ""
	}
}

// classify decides whether value is a URL or base64 payload. Data-URIs are
// always routed to base64 (header stripped) even though they start with a
// scheme-like prefix, because the data-URI check runs before the URL check.
func classify(value string) (ImageRef, bool) {
	if value == "" {
		return ImageRef{}, false
	}
	if b64, ok := stripDataURI(value); ok {
		return ImageRef{Base64: b64}, true
	}
	if isURL(value) {
		return ImageRef{URL: value}, true
	}
	if isLikelyBase64(value) {
		return ImageRef{Base64: value}, true
	}
	return ImageRef{}, false
}

func isURL(value string) bool {
	return strings.HasPrefix(value, "http://") ||
		strings.HasPrefix(value, "https://") ||
		strings.HasPrefix(value, "//")
}

func stripDataURI(value string) (string, bool) {
	if !strings.HasPrefix(value, "data:") {
		return "", false
	}
	idx := strings.Index(value, ",")
	if idx < 0 {
		return "", false
	}
	return value[idx+1:], true
}

// isLikelyBase64 is a heuristic: standard or URL-safe base64 alphabet,
// correct padding, and long enough to not collide with a short plain word.
func isLikelyBase64(value string) bool {
	if len(value) < 16 || len(value)%4 != 0 {
		return false
	}
	if _, err := base64.StdEncoding.DecodeString(value); err == nil {
		return true
	}
	_, err := base64.URLEncoding.DecodeString(value)
	return err == nil
}
