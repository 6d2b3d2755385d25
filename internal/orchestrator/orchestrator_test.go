// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package orchestrator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediaforge/gengateway/internal/config"
	"github.com/mediaforge/gengateway/internal/gatewayerr"
	"github.com/mediaforge/gengateway/internal/poller"
	"github.com/mediaforge/gengateway/internal/region"
	"github.com/mediaforge/gengateway/internal/upload"
)

type stubUpstream struct {
	submitCalled bool
	pollResponses []poller.Status
	pollIdx       int
	credit        Credit
	commitErr     error
}

func (s *stubUpstream) SubmitDraft(ctx context.Context, info region.Info, authHeader, draftContent, submitID, metricsExtra, rootModel string, aid int) (string, error) {
	s.submitCalled = true
	return "h1", nil
}

func (s *stubUpstream) PollTick(ctx context.Context, info region.Info, authHeader, historyID string, mediaType poller.MediaType) (poller.Status, any, error) {
	st := s.pollResponses[s.pollIdx]
	if s.pollIdx < len(s.pollResponses)-1 {
		s.pollIdx++
	}
	raw, _ := json.Marshal(map[string]any{
		historyID: map[string]any{
			"item_list": itemList(st.ItemCount),
		},
	})
	return st, raw, nil
}

func itemList(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"image": map[string]any{"large_images": []map[string]any{{"image_url": "https://cdn/img.png"}}}}
	}
	return out
}

func (s *stubUpstream) CreditBalance(ctx context.Context, info region.Info, authHeader string) (Credit, error) {
	return s.credit, nil
}

func (s *stubUpstream) ReceiveCredit(ctx context.Context, info region.Info, authHeader string) error {
	return nil
}

func testOrchestrator(up Upstream) *Orchestrator {
	return &Orchestrator{
		Upstream: up,
		Uploader: func(info region.Info) *upload.Uploader { return upload.New(nil, info, nil) },
		Models: ModelCatalog{
			Domestic:      config.DomesticModels,
			International: config.InternationalModels,
		},
	}
}

func TestGenerateImages_HappyPath(t *testing.T) {
	up := &stubUpstream{
		pollResponses: []poller.Status{
			{Status: 50, ItemCount: 4, FinishTime: 100},
		},
		credit: Credit{TotalCredit: 10},
	}
	o := testOrchestrator(up)

	urls, err := o.GenerateImages(t.Context(), "jimeng-3.0", "a red fox", ImageOptions{Ratio: config.Ratio16x9, Resolution: config.Resolution2K}, "sometoken")
	require.NoError(t, err)
	require.Len(t, urls, 4)
	require.True(t, up.submitCalled)
}

func TestGenerateImages_NoTokenNoPool(t *testing.T) {
	o := testOrchestrator(&stubUpstream{})
	_, err := o.GenerateImages(t.Context(), "jimeng-3.0", "x", ImageOptions{Ratio: config.Ratio1x1, Resolution: config.Resolution1K}, "")
	require.Error(t, err)
	require.True(t, gatewayerr.Is(err, gatewayerr.KindPoolExhausted))
}

func TestGenerateImageComposition_ValidatesImageCount(t *testing.T) {
	o := testOrchestrator(&stubUpstream{})
	_, err := o.GenerateImageComposition(t.Context(), "jimeng-3.0", "x", nil, ImageOptions{}, "tok")
	require.Error(t, err)
	require.True(t, gatewayerr.Is(err, gatewayerr.KindValidation))

	tooMany := make([]upload.Image, 11)
	for i := range tooMany {
		tooMany[i] = upload.FromBytes([]byte{1})
	}
	_, err = o.GenerateImageComposition(t.Context(), "jimeng-3.0", "x", tooMany, ImageOptions{}, "tok")
	require.Error(t, err)
	require.True(t, gatewayerr.Is(err, gatewayerr.KindValidation))
}

func TestGenerateVideo_DurationBounds(t *testing.T) {
	o := testOrchestrator(&stubUpstream{})
	_, err := o.GenerateVideo(t.Context(), "jimeng-3.0", "x", nil, VideoOptions{Duration: 3, Ratio: config.Ratio1x1, Resolution: config.Resolution1K}, "tok")
	require.Error(t, err)
	require.True(t, gatewayerr.Is(err, gatewayerr.KindValidation))

	_, err = o.GenerateVideo(t.Context(), "jimeng-3.0", "x", nil, VideoOptions{Duration: 16, Ratio: config.Ratio1x1, Resolution: config.Resolution1K}, "tok")
	require.Error(t, err)
}

func TestGenerateVideo_TooManyFilePaths(t *testing.T) {
	o := testOrchestrator(&stubUpstream{})
	three := []upload.Image{upload.FromBytes([]byte{1}), upload.FromBytes([]byte{2}), upload.FromBytes([]byte{3})}
	_, err := o.GenerateVideo(t.Context(), "jimeng-3.0", "x", three, VideoOptions{Duration: 10, Ratio: config.Ratio1x1, Resolution: config.Resolution1K}, "tok")
	require.Error(t, err)
	require.True(t, gatewayerr.Is(err, gatewayerr.KindValidation))
}

func TestGenerateImages_NanobananaOverride(t *testing.T) {
	up := &stubUpstream{pollResponses: []poller.Status{{Status: 50, ItemCount: 1, FinishTime: 1}}, credit: Credit{TotalCredit: 1}}
	o := testOrchestrator(up)
	_, err := o.GenerateImages(t.Context(), "nanobanana", "x", ImageOptions{Ratio: config.Ratio21x9, Resolution: config.Resolution4K}, "tok")
	require.NoError(t, err)
}

func TestGenerateImages_InternationalUnknownModelRejected(t *testing.T) {
	o := testOrchestrator(&stubUpstream{})
	_, err := o.GenerateImages(t.Context(), "unknown-model", "x", ImageOptions{Ratio: config.Ratio1x1, Resolution: config.Resolution1K}, "us-tok")
	require.Error(t, err)
	require.True(t, gatewayerr.Is(err, gatewayerr.KindValidation))
}
