// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package draft builds the nested draft document submitted to
// aigc_draft/generate. The schema is assembled with sjson, table-driven per
// generation mode, keeping mode-specific divergence isolated to one
// function per mode rather than one giant conditional tree.
package draft

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/tidwall/sjson"

	"github.com/mediaforge/gengateway/internal/config"
	"github.com/mediaforge/gengateway/internal/gatewayerr"
)

// Mode selects which ability schema the draft carries.
type Mode int

const (
	ModeTextToImage Mode = iota
	ModeImageToImage
	ModeTextToVideo
	ModeImageToVideo
)

// seedLow/seedHigh bound the random core-parameter seed.
const (
	seedLow  = 2_500_000_000
	seedHigh = 2_600_000_000
)

// ImageInput is one uploaded reference image, already committed by the
// Uploader, in submission order.
type ImageInput struct {
	Uri string
}

// Params is everything the builder needs to assemble one draft document.
type Params struct {
	Mode            Mode
	Model           string // upstream model id, already resolved via config.ModelMap
	Prompt          string
	NegativePrompt  string
	SampleStrength  float64
	Resolution      config.ResolutionParams
	Images          []ImageInput // blend inputs (image-to-image), or first/last frame (video)
	Duration        int          // video only, seconds
	IntelligentRatio bool        // always forced false; reserved field
	RandSource      *rand.Rand  // nil uses the package-level source
}

// Document is the built draft plus the sibling fields the orchestrator
// attaches to the draft/generate request body.
type Document struct {
	DraftContent string
	SubmitID     string
	MetricsExtra string
	RootModel    string
	AID          int
}

const (
	draftMinVersion = "3.0.2"
	draftVersion    = "3.0.2"
	httpCommonAID   = 513695
)

// Build assembles the draft document for the given mode. The prompt for
// image-to-image is prefixed with "##".
func Build(p Params) (Document, error) {
	if p.Mode == ModeImageToImage && len(p.Images) == 0 {
		return Document{}, gatewayerr.New(gatewayerr.KindValidation, "image-to-image requires at least one uploaded image")
	}
	if (p.Mode == ModeTextToVideo || p.Mode == ModeImageToVideo) && (p.Duration < 4 || p.Duration > 15) {
		return Document{}, gatewayerr.New(gatewayerr.KindValidation, "duration must be in [4,15] seconds")
	}

	componentID := uuid.NewString()
	draftID := uuid.NewString()

	doc := `{"type":"draft"}`
	doc, _ = sjson.Set(doc, "id", draftID)
	doc, _ = sjson.Set(doc, "min_version", draftMinVersion)
	doc, _ = sjson.Set(doc, "version", draftVersion)
	doc, _ = sjson.Set(doc, "main_component_id", componentID)

	var component string
	var err error
	switch p.Mode {
	case ModeTextToImage:
		component, err = buildTextToImage(componentID, p)
	case ModeImageToImage:
		component, err = buildImageToImage(componentID, p)
	case ModeTextToVideo, ModeImageToVideo:
		component, err = buildVideo(componentID, p)
	default:
		return Document{}, gatewayerr.New(gatewayerr.KindValidation, "unknown generation mode")
	}
	if err != nil {
		return Document{}, err
	}

	doc, err = sjson.SetRaw(doc, "component_list.-1", component)
	if err != nil {
		return Document{}, gatewayerr.Wrap(gatewayerr.KindValidation, "cannot assemble draft component list", err)
	}

	return Document{
		DraftContent: doc,
		SubmitID:     uuid.NewString(),
		MetricsExtra: `{"promptSource":"custom"}`,
		RootModel:    p.Model,
		AID:          httpCommonAID,
	}, nil
}

func seed(p Params) int64 {
	if p.RandSource != nil {
		return seedLow + p.RandSource.Int63n(seedHigh-seedLow)
	}
	return seedLow + rand.Int63n(seedHigh-seedLow)
}

func buildTextToImage(componentID string, p Params) (string, error) {
	c := newComponent(componentID, "generate")
	c, _ = sjson.Set(c, "abilities.generate.core_param.model", p.Model)
	c, _ = sjson.Set(c, "abilities.generate.core_param.prompt", p.Prompt)
	c, _ = sjson.Set(c, "abilities.generate.core_param.negative_prompt", p.NegativePrompt)
	c, _ = sjson.Set(c, "abilities.generate.core_param.seed", seed(p))
	c, _ = sjson.Set(c, "abilities.generate.core_param.sample_strength", p.SampleStrength)
	c, _ = sjson.Set(c, "abilities.generate.core_param.image_ratio", p.Resolution.ImageRatioCode)
	c, _ = sjson.Set(c, "abilities.generate.core_param.intelligent_ratio", false)
	c = setLargeImageInfo(c, "abilities.generate.core_param.large_image_info", p.Resolution)
	return c, nil
}

func buildImageToImage(componentID string, p Params) (string, error) {
	c := newComponent(componentID, "blend")
	c, _ = sjson.Set(c, "abilities.blend.core_param.image_ratio", p.Resolution.ImageRatioCode)
	c = setLargeImageInfo(c, "abilities.blend.core_param.large_image_info", p.Resolution)

	prompt := "##" + p.Prompt
	c, _ = sjson.Set(c, "abilities.blend.prompt", prompt)

	for i, img := range p.Images {
		ability := map[string]any{
			"name":           "byte_edit",
			"image_uri_list": []string{img.Uri},
			"image_list": []map[string]any{{
				"source_from":   "upload",
				"platform_type": 1,
				"image_uri":     img.Uri,
				"uri":           img.Uri,
			}},
			"strength": p.SampleStrength,
		}
		var err error
		c, err = sjson.Set(c, "abilities.blend.ability_list.-1", ability)
		if err != nil {
			return "", gatewayerr.Wrap(gatewayerr.KindValidation, "cannot append ability", err)
		}
		placeholder := map[string]any{"ability_index": i}
		c, err = sjson.Set(c, "prompt_placeholder_info_list.-1", placeholder)
		if err != nil {
			return "", gatewayerr.Wrap(gatewayerr.KindValidation, "cannot append prompt placeholder", err)
		}
	}
	return c, nil
}

func buildVideo(componentID string, p Params) (string, error) {
	abilityKey := "generate"
	if p.Mode == ModeImageToVideo {
		abilityKey = "blend"
	}
	c := newComponent(componentID, abilityKey)
	base := "abilities." + abilityKey + ".core_param."
	c, _ = sjson.Set(c, base+"model", p.Model)
	c, _ = sjson.Set(c, base+"prompt", p.Prompt)
	c, _ = sjson.Set(c, base+"duration", p.Duration)
	c, _ = sjson.Set(c, base+"image_ratio", p.Resolution.ImageRatioCode)
	c = setLargeImageInfo(c, base+"large_image_info", p.Resolution)

	// First/last-frame images, when present, are positioned the same way as
	// image-to-image inputs: first frame precedes last frame.
	for i, img := range p.Images {
		key := "first_frame_image"
		if i == 1 {
			key = "last_frame_image"
		}
		var err error
		c, err = sjson.Set(c, "abilities."+abilityKey+"."+key+".image_uri", img.Uri)
		if err != nil {
			return "", gatewayerr.Wrap(gatewayerr.KindValidation, "cannot set frame image", err)
		}
	}
	return c, nil
}

func newComponent(componentID, generateType string) string {
	c := `{}`
	c, _ = sjson.Set(c, "id", componentID)
	c, _ = sjson.Set(c, "type", "image_base_component")
	c, _ = sjson.Set(c, "generate_type", generateType)
	return c
}

func setLargeImageInfo(doc, path string, res config.ResolutionParams) string {
	doc, _ = sjson.Set(doc, path+".width", res.Width)
	doc, _ = sjson.Set(doc, path+".height", res.Height)
	doc, _ = sjson.Set(doc, path+".resolution_type", res.ResolutionType)
	return doc
}
