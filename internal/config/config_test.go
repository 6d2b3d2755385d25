// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveParams_AllSupportedPairsPresent(t *testing.T) {
	resolutions := []Resolution{Resolution1K, Resolution2K, Resolution4K}
	ratios := []Ratio{Ratio1x1, Ratio4x3, Ratio3x4, Ratio16x9, Ratio9x16, Ratio21x9, Ratio9x21, Ratio3x2, Ratio2x3}

	for _, r := range resolutions {
		for _, a := range ratios {
			p, err := ResolveParams(r, a)
			require.NoError(t, err, "%s/%s", r, a)
			require.Greater(t, p.Width*p.Height, 0)
			require.NotEmpty(t, p.ResolutionType)
		}
	}
}

func TestResolveParams_UnsupportedPair(t *testing.T) {
	_, err := ResolveParams("8k", Ratio1x1)
	require.Error(t, err)
}

func TestModelMap_DomesticFallsBack(t *testing.T) {
	got, err := DomesticModels.Resolve("does-not-exist")
	require.NoError(t, err)
	require.Equal(t, DomesticModels.entries[DomesticModels.defaultModel], got)
}

func TestModelMap_InternationalRejectsUnknown(t *testing.T) {
	_, err := InternationalModels.Resolve("does-not-exist")
	require.Error(t, err)
}

func TestTerminalStatusTable_Defaults(t *testing.T) {
	require.True(t, DefaultTerminalStatusTable.IsSuccess(50))
	require.True(t, DefaultTerminalStatusTable.IsFailure(30))
	require.False(t, DefaultTerminalStatusTable.IsSuccess(1))
	require.True(t, DefaultTerminalStatusTable.IsTransientFailCode(""))
}
