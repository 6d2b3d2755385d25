// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gatewayapi holds the hand-rolled request/response structs for
// this gateway's own public, OpenAI-shaped HTTP surface. We are the
// server side of that wire contract, not a caller of it, so (mirroring
// the teacher's own internal/apischema/openai package) these are local
// types rather than a dependency on an OpenAI client SDK.
package gatewayapi

// ImageGenerationRequest is the body of POST /v1/images/generations.
type ImageGenerationRequest struct {
	// Client-facing model name, resolved against the domestic or
	// international model map depending on the caller's token region.
	Model string `json:"model"`
	// Prompt text. Required.
	Prompt string `json:"prompt"`
	// Aspect ratio, e.g. "1:1", "16:9". Defaults to "1:1".
	Ratio string `json:"ratio,omitempty"`
	// Target resolution, one of "1k", "2k", "4k". Defaults to "1k".
	Resolution string `json:"resolution,omitempty"`
	// Negative prompt, passed through to the draft's core parameters.
	NegativePrompt string `json:"negative_prompt,omitempty"`
	// Sample strength in [0,1]. Defaults upstream if omitted.
	SampleStrength *float64 `json:"sample_strength,omitempty"`
	// "url" or "b64_json". Only "url" is produced by this gateway today.
	ResponseFormat string `json:"response_format,omitempty"`
}

// ImageGenerationResponse is the response body for image generation and
// image composition requests alike.
type ImageGenerationResponse struct {
	// Unix timestamp (seconds) of when the response was assembled.
	Created int64 `json:"created"`
	// One entry per artifact URL returned by the pipeline.
	Data []ImageGenerationResponseData `json:"data"`
}

// ImageGenerationResponseData is a single generated image.
type ImageGenerationResponseData struct {
	URL     string `json:"url,omitempty"`
	B64JSON string `json:"b64_json,omitempty"`
}

// ImageCompositionRequest is the body of POST /v1/images/compositions.
// Multipart submissions are decoded into the same shape by the (external)
// HTTP layer before reaching the orchestrator.
type ImageCompositionRequest struct {
	Model string `json:"model"`
	// Prompt text, prefixed with "##" internally before draft submission.
	Prompt string `json:"prompt"`
	// 1..10 input images, in submission order; each one of a remote URL,
	// a data URI, bare base64, or a local path the HTTP layer resolved.
	Images         []string `json:"images"`
	Ratio          string   `json:"ratio,omitempty"`
	Resolution     string   `json:"resolution,omitempty"`
	SampleStrength *float64 `json:"sample_strength,omitempty"`
	ResponseFormat string   `json:"response_format,omitempty"`
}

// VideoGenerationRequest is the body of POST /v1/videos/generations.
// Multipart submissions arrive with Duration as a string; the HTTP layer
// parses it before handing the request to the orchestrator.
type VideoGenerationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	// Integer seconds in [4,15].
	Duration int `json:"duration"`
	// First/last frame reference images, at most two entries.
	FilePaths  []string `json:"file_paths,omitempty"`
	Ratio      string   `json:"ratio,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
}

// VideoGenerationResponse is the response body for video generation.
type VideoGenerationResponse struct {
	Created int64  `json:"created"`
	URL     string `json:"url"`
}

// ModelListResponse is the response body for GET /v1/models.
type ModelListResponse struct {
	Object string           `json:"object"`
	Data   []ModelListEntry `json:"data"`
}

// ModelListEntry is one entry in the model catalog listing.
type ModelListEntry struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

// SessionGenerateResponse is the response body for POST /v1/session/generate.
type SessionGenerateResponse struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
