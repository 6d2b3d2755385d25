// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package draft

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mediaforge/gengateway/internal/config"
)

func mustParams(t *testing.T) config.ResolutionParams {
	t.Helper()
	p, err := config.ResolveParams(config.Resolution2K, config.Ratio16x9)
	require.NoError(t, err)
	return p
}

func TestBuild_TextToImage(t *testing.T) {
	doc, err := Build(Params{
		Mode:       ModeTextToImage,
		Model:      "high_aes_general_v30l_art_fangzhou",
		Prompt:     "a red fox",
		Resolution: mustParams(t),
	})
	require.NoError(t, err)

	root := gjson.Parse(doc.DraftContent)
	require.Equal(t, "draft", root.Get("type").String())
	mainID := root.Get("main_component_id").String()
	require.NotEmpty(t, mainID)
	require.Equal(t, mainID, root.Get("component_list.0.id").String())
	require.Equal(t, "a red fox", root.Get("component_list.0.abilities.generate.core_param.prompt").String())
	require.False(t, root.Get("component_list.0.abilities.generate.core_param.intelligent_ratio").Bool())

	seed := root.Get("component_list.0.abilities.generate.core_param.seed").Int()
	require.GreaterOrEqual(t, seed, int64(seedLow))
	require.Less(t, seed, int64(seedHigh))
}

func TestBuild_ImageToImage_OrderAndCount(t *testing.T) {
	doc, err := Build(Params{
		Mode:       ModeImageToImage,
		Model:      "m",
		Prompt:     "make it blue",
		Resolution: mustParams(t),
		Images:     []ImageInput{{Uri: "uri-1"}, {Uri: "uri-2"}},
	})
	require.NoError(t, err)

	root := gjson.Parse(doc.DraftContent)
	abilities := root.Get("component_list.0.abilities.blend.ability_list").Array()
	require.Len(t, abilities, 2)
	require.Equal(t, "uri-1", abilities[0].Get("image_uri_list.0").String())
	require.Equal(t, "uri-2", abilities[1].Get("image_uri_list.0").String())

	placeholders := root.Get("component_list.0.prompt_placeholder_info_list").Array()
	require.Len(t, placeholders, 2)
	require.EqualValues(t, 0, placeholders[0].Get("ability_index").Int())
	require.EqualValues(t, 1, placeholders[1].Get("ability_index").Int())

	require.True(t, len(root.Get("component_list.0.abilities.blend.prompt").String()) > 0)
	require.Equal(t, "##make it blue", root.Get("component_list.0.abilities.blend.prompt").String())
}

func TestBuild_ImageToImage_RequiresAtLeastOneImage(t *testing.T) {
	_, err := Build(Params{Mode: ModeImageToImage, Prompt: "x", Resolution: mustParams(t)})
	require.Error(t, err)
}

func TestBuild_Video_DurationBounds(t *testing.T) {
	_, err := Build(Params{Mode: ModeTextToVideo, Prompt: "x", Resolution: mustParams(t), Duration: 3})
	require.Error(t, err)

	_, err = Build(Params{Mode: ModeTextToVideo, Prompt: "x", Resolution: mustParams(t), Duration: 16})
	require.Error(t, err)

	doc, err := Build(Params{Mode: ModeTextToVideo, Prompt: "x", Resolution: mustParams(t), Duration: 4})
	require.NoError(t, err)
	require.NotEmpty(t, doc.DraftContent)

	doc, err = Build(Params{Mode: ModeTextToVideo, Prompt: "x", Resolution: mustParams(t), Duration: 15})
	require.NoError(t, err)
	require.NotEmpty(t, doc.DraftContent)
}

func TestBuild_Video_FirstLastFrameOrder(t *testing.T) {
	doc, err := Build(Params{
		Mode:       ModeImageToVideo,
		Prompt:     "x",
		Resolution: mustParams(t),
		Duration:   5,
		Images:     []ImageInput{{Uri: "first-uri"}, {Uri: "last-uri"}},
	})
	require.NoError(t, err)

	root := gjson.Parse(doc.DraftContent)
	require.Equal(t, "first-uri", root.Get("component_list.0.abilities.blend.first_frame_image.image_uri").String())
	require.Equal(t, "last-uri", root.Get("component_list.0.abilities.blend.last_frame_image.image_uri").String())
}

func TestDetectMultiImage(t *testing.T) {
	count, ok := DetectMultiImage("生成6张关于小猫冒险的连续画面")
	require.True(t, ok)
	require.Equal(t, 6, count)

	count, ok = DetectMultiImage("画一个绘本故事")
	require.True(t, ok)
	require.Equal(t, defaultMultiImageCount, count)

	_, ok = DetectMultiImage("a single red fox")
	require.False(t, ok)
}
