// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package config holds the pipeline's table-driven lookups: resolution and
// ratio descriptors, model-name mappings, and the poller's terminal
// status/fail-code table. These are plain data so the terminal-status table
// in particular (Open Question (i)) can be refreshed from YAML without a
// code change.
package config

import "fmt"

// Resolution is one of the three supported target resolutions.
type Resolution string

const (
	Resolution1K Resolution = "1k"
	Resolution2K Resolution = "2k"
	Resolution4K Resolution = "4k"
)

// Ratio is one of the nine supported aspect ratios.
type Ratio string

const (
	Ratio1x1   Ratio = "1:1"
	Ratio4x3   Ratio = "4:3"
	Ratio3x4   Ratio = "3:4"
	Ratio16x9  Ratio = "16:9"
	Ratio9x16  Ratio = "9:16"
	Ratio21x9  Ratio = "21:9"
	Ratio9x21  Ratio = "9:21"
	Ratio3x2   Ratio = "3:2"
	Ratio2x3   Ratio = "2:3"
)

// ResolutionParams is what a (resolution, ratio) pair resolves to.
type ResolutionParams struct {
	Width           int
	Height          int
	ImageRatioCode  int
	ResolutionType  string
}

type resolutionKey struct {
	Resolution Resolution
	Ratio      Ratio
}

// resolutionTable is exhaustive over the nine ratios for each of the three
// resolutions: every supported pair must be present.
var resolutionTable = map[resolutionKey]ResolutionParams{
	{Resolution1K, Ratio1x1}:  {1024, 1024, 1, "1k"},
	{Resolution1K, Ratio4x3}:  {1152, 864, 2, "1k"},
	{Resolution1K, Ratio3x4}:  {864, 1152, 3, "1k"},
	{Resolution1K, Ratio16x9}: {1280, 720, 4, "1k"},
	{Resolution1K, Ratio9x16}: {720, 1280, 5, "1k"},
	{Resolution1K, Ratio21x9}: {1344, 576, 6, "1k"},
	{Resolution1K, Ratio9x21}: {576, 1344, 7, "1k"},
	{Resolution1K, Ratio3x2}:  {1224, 816, 8, "1k"},
	{Resolution1K, Ratio2x3}:  {816, 1224, 9, "1k"},

	{Resolution2K, Ratio1x1}:  {1536, 1536, 1, "2k"},
	{Resolution2K, Ratio4x3}:  {1728, 1296, 2, "2k"},
	{Resolution2K, Ratio3x4}:  {1296, 1728, 3, "2k"},
	{Resolution2K, Ratio16x9}: {1920, 1080, 4, "2k"},
	{Resolution2K, Ratio9x16}: {1080, 1920, 5, "2k"},
	{Resolution2K, Ratio21x9}: {2016, 864, 6, "2k"},
	{Resolution2K, Ratio9x21}: {864, 2016, 7, "2k"},
	{Resolution2K, Ratio3x2}:  {1836, 1224, 8, "2k"},
	{Resolution2K, Ratio2x3}:  {1224, 1836, 9, "2k"},

	{Resolution4K, Ratio1x1}:  {2048, 2048, 1, "4k"},
	{Resolution4K, Ratio4x3}:  {2304, 1728, 2, "4k"},
	{Resolution4K, Ratio3x4}:  {1728, 2304, 3, "4k"},
	{Resolution4K, Ratio16x9}: {2560, 1440, 4, "4k"},
	{Resolution4K, Ratio9x16}: {1440, 2560, 5, "4k"},
	{Resolution4K, Ratio21x9}: {2688, 1152, 6, "4k"},
	{Resolution4K, Ratio9x21}: {1152, 2688, 7, "4k"},
	{Resolution4K, Ratio3x2}:  {2448, 1632, 8, "4k"},
	{Resolution4K, Ratio2x3}:  {1632, 2448, 9, "4k"},
}

// ResolveParams looks up the descriptor for (resolution, ratio).
func ResolveParams(resolution Resolution, ratio Ratio) (ResolutionParams, error) {
	p, ok := resolutionTable[resolutionKey{resolution, ratio}]
	if !ok {
		return ResolutionParams{}, fmt.Errorf("unsupported resolution/ratio pair: %s/%s", resolution, ratio)
	}
	return p, nil
}

// NanobananaOverride is the special model override: regardless of client
// input, nanobanana always resolves to this descriptor.
var NanobananaOverride = ResolutionParams{Width: 1024, Height: 1024, ImageRatioCode: 1, ResolutionType: "2k"}
