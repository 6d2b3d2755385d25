// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package orchestrator exposes the public generation operations
// (text→image, image→image, text→video, image→video, jimeng-4.0
// multi-image) by composing the region resolver, uploader, draft builder,
// and smart poller.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/mediaforge/gengateway/internal/config"
	"github.com/mediaforge/gengateway/internal/draft"
	"github.com/mediaforge/gengateway/internal/gatewayerr"
	"github.com/mediaforge/gengateway/internal/poller"
	"github.com/mediaforge/gengateway/internal/region"
	"github.com/mediaforge/gengateway/internal/session"
	"github.com/mediaforge/gengateway/internal/tokenpool"
	"github.com/mediaforge/gengateway/internal/upload"
)

const (
	defaultMaxPollCount      = 60
	maxImageCompositionInput = 10
	maxVideoFilePaths        = 2
)

// Orchestrator composes the generation pipeline's components behind the
// public operations: image generation, image composition, video
// generation, streaming chat, and session rotation.
type Orchestrator struct {
	Upstream        Upstream
	Uploader        func(info region.Info) *upload.Uploader
	Fetcher         upload.Fetcher
	SessionProvider session.Provider
	ChatTransport   ChatTransport
	TokenPool       tokenpool.Pool
	Models          ModelCatalog
	Log             *slog.Logger
}

// ModelCatalog holds the domestic/international model maps the Draft
// Builder resolves against.
type ModelCatalog struct {
	Domestic      config.ModelMap
	International config.ModelMap
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

// resolveToken validates a caller-supplied token, or draws one from the
// pool when empty.
func (o *Orchestrator) resolveToken(token string) (string, error) {
	if token != "" {
		if err := session.ValidateToken(token); err != nil {
			return "", err
		}
		return token, nil
	}
	if o.TokenPool == nil {
		return "", gatewayerr.New(gatewayerr.KindPoolExhausted, "no token supplied and no pool configured")
	}
	return o.TokenPool.Pick()
}

// resolveModel picks the model map for the token's region and resolves
// the client-facing name to the upstream identifier. The boolean reports
// whether the nanobanana resolution override applies; resolveResolution
// applies it.
func (o *Orchestrator) resolveModel(info region.Info, model string) (string, bool, error) {
	catalog := o.Models.Domestic
	if info.IsInternational {
		catalog = o.Models.International
	}
	resolved, err := catalog.Resolve(model)
	if err != nil {
		return "", false, gatewayerr.Wrap(gatewayerr.KindValidation, "", err)
	}
	isNanobanana := model == config.NanobananaModel
	return resolved, isNanobanana, nil
}

// resolveResolution applies the resolution lookup, forcing the
// nanobanana override regardless of client input.
func resolveResolution(isNanobanana bool, resolution config.Resolution, ratio config.Ratio, log *slog.Logger) (config.ResolutionParams, error) {
	if isNanobanana {
		log.Info("nanobanana resolution override applied", "width", config.NanobananaOverride.Width, "height", config.NanobananaOverride.Height)
		return config.NanobananaOverride, nil
	}
	return config.ResolveParams(resolution, ratio)
}

// ImageOptions carries the client-tunable fields for text→image and
// image→image requests.
type ImageOptions struct {
	Ratio          config.Ratio
	Resolution     config.Resolution
	NegativePrompt string
	SampleStrength float64
}

// GenerateImages implements text-to-image. Unknown size/width/height
// fields must be rejected by the caller before this is invoked, since
// request-shape validation is a concern of the external HTTP layer.
func (o *Orchestrator) GenerateImages(ctx context.Context, model, prompt string, opts ImageOptions, token string) ([]string, error) {
	rawToken, err := o.resolveToken(token)
	if err != nil {
		return nil, err
	}
	info, secret := region.Resolve(rawToken)
	authHeader := region.FormatAuth(info, secret)

	upstreamModel, isNanobanana, err := o.resolveModel(info, model)
	if err != nil {
		return nil, err
	}
	res, err := resolveResolution(isNanobanana, opts.Resolution, opts.Ratio, o.logger())
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindValidation, "", err)
	}

	o.checkCreditBestEffort(ctx, info, authHeader)

	expectedItems := 1
	mode := draft.ModeTextToImage
	if model == "jimeng-4.0" {
		if n, ok := draft.DetectMultiImage(prompt); ok {
			expectedItems = n
		}
	}

	doc, err := draft.Build(draft.Params{
		Mode:           mode,
		Model:          upstreamModel,
		Prompt:         prompt,
		NegativePrompt: opts.NegativePrompt,
		SampleStrength: opts.SampleStrength,
		Resolution:     res,
	})
	if err != nil {
		return nil, err
	}

	return o.submitAndCollect(ctx, info, authHeader, doc, poller.MediaImage, expectedItems)
}

// GenerateImageComposition implements image-to-image: 1..10 input images,
// uploaded sequentially, one byte_edit ability per image in submission
// order.
func (o *Orchestrator) GenerateImageComposition(ctx context.Context, model, prompt string, images []upload.Image, opts ImageOptions, token string) ([]string, error) {
	if len(images) == 0 || len(images) > maxImageCompositionInput {
		return nil, gatewayerr.New(gatewayerr.KindValidation, "images must contain between 1 and 10 entries")
	}

	rawToken, err := o.resolveToken(token)
	if err != nil {
		return nil, err
	}
	info, secret := region.Resolve(rawToken)
	authHeader := region.FormatAuth(info, secret)

	upstreamModel, isNanobanana, err := o.resolveModel(info, model)
	if err != nil {
		return nil, err
	}
	res, err := resolveResolution(isNanobanana, opts.Resolution, opts.Ratio, o.logger())
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindValidation, "", err)
	}

	o.checkCreditBestEffort(ctx, info, authHeader)

	uris, err := o.uploadSequentially(ctx, info, authHeader, images)
	if err != nil {
		return nil, err
	}

	inputs := make([]draft.ImageInput, len(uris))
	for i, u := range uris {
		inputs[i] = draft.ImageInput{Uri: u}
	}

	doc, err := draft.Build(draft.Params{
		Mode:           draft.ModeImageToImage,
		Model:          upstreamModel,
		Prompt:         prompt,
		SampleStrength: opts.SampleStrength,
		Resolution:     res,
		Images:         inputs,
	})
	if err != nil {
		return nil, err
	}

	return o.submitAndCollect(ctx, info, authHeader, doc, poller.MediaImage, 1)
}

// VideoOptions carries the client-tunable fields for video generation.
type VideoOptions struct {
	Ratio      config.Ratio
	Resolution config.Resolution
	Duration   int
}

// GenerateVideo implements text-to-video / image-to-video. file_paths
// (first/last frame) is limited to at most two entries.
func (o *Orchestrator) GenerateVideo(ctx context.Context, model, prompt string, filePaths []upload.Image, opts VideoOptions, token string) (string, error) {
	if opts.Duration < 4 || opts.Duration > 15 {
		return "", gatewayerr.New(gatewayerr.KindValidation, "duration must be an integer in [4,15] seconds")
	}
	if len(filePaths) > maxVideoFilePaths {
		return "", gatewayerr.New(gatewayerr.KindValidation, "file_paths accepts at most two entries")
	}

	rawToken, err := o.resolveToken(token)
	if err != nil {
		return "", err
	}
	info, secret := region.Resolve(rawToken)
	authHeader := region.FormatAuth(info, secret)

	upstreamModel, isNanobanana, err := o.resolveModel(info, model)
	if err != nil {
		return "", err
	}
	res, err := resolveResolution(isNanobanana, opts.Resolution, opts.Ratio, o.logger())
	if err != nil {
		return "", gatewayerr.Wrap(gatewayerr.KindValidation, "", err)
	}

	o.checkCreditBestEffort(ctx, info, authHeader)

	mode := draft.ModeTextToVideo
	var inputs []draft.ImageInput
	if len(filePaths) > 0 {
		mode = draft.ModeImageToVideo
		uris, err := o.uploadSequentially(ctx, info, authHeader, filePaths)
		if err != nil {
			return "", err
		}
		for _, u := range uris {
			inputs = append(inputs, draft.ImageInput{Uri: u})
		}
	}

	doc, err := draft.Build(draft.Params{
		Mode:       mode,
		Model:      upstreamModel,
		Prompt:     prompt,
		Resolution: res,
		Images:     inputs,
		Duration:   opts.Duration,
	})
	if err != nil {
		return "", err
	}

	urls, err := o.submitAndCollect(ctx, info, authHeader, doc, poller.MediaVideo, 1)
	if err != nil {
		return "", err
	}
	if len(urls) == 0 {
		return "", gatewayerr.New(gatewayerr.KindPollRemoteFail, "no video artifact produced")
	}
	return urls[0], nil
}

// GenerateSession delegates to the out-of-scope Session Provider,
// surfacing its failures as gatewayerr.KindProvisioning when the
// provider didn't already classify them.
func (o *Orchestrator) GenerateSession(ctx context.Context) (string, error) {
	if o.SessionProvider == nil {
		return "", gatewayerr.New(gatewayerr.KindProvisioning, "no session provider configured")
	}
	token, err := o.SessionProvider.NewSession(ctx)
	if err != nil {
		if _, ok := gatewayerr.KindOf(err); ok {
			return "", err
		}
		return "", gatewayerr.Wrap(gatewayerr.KindProvisioning, "", err)
	}
	if err := session.ValidateToken(token); err != nil {
		return "", gatewayerr.Wrap(gatewayerr.KindProvisioning, "session provider returned an invalid token", err)
	}
	return token, nil
}

func (o *Orchestrator) uploadSequentially(ctx context.Context, info region.Info, authHeader string, images []upload.Image) ([]string, error) {
	uploader := o.Uploader(info)
	uris := make([]string, len(images))
	for i, img := range images {
		data, err := upload.Normalize(ctx, img, o.Fetcher)
		if err != nil {
			return nil, err
		}
		result, err := uploader.Upload(ctx, info, authHeader, data)
		if err != nil {
			return nil, err
		}
		uris[i] = result.Uri
	}
	return uris, nil
}

func (o *Orchestrator) submitAndCollect(ctx context.Context, info region.Info, authHeader string, doc draft.Document, mediaType poller.MediaType, expectedItems int) ([]string, error) {
	historyID, err := o.Upstream.SubmitDraft(ctx, info, authHeader, doc.DraftContent, doc.SubmitID, doc.MetricsExtra, doc.RootModel, doc.AID)
	if err != nil {
		return nil, err
	}

	cfg := poller.DefaultConfig(mediaType, defaultMaxPollCount, expectedItems)
	result, err := poller.Poll(ctx, cfg, historyID, func(ctx context.Context, historyID string) (poller.Status, any, error) {
		return o.Upstream.PollTick(ctx, info, authHeader, historyID, mediaType)
	}, o.logger())
	if err != nil {
		return nil, err
	}

	return ItemURLs(historyID, result.Data), nil
}

// checkCreditBestEffort performs a best-effort credit check: a zero
// balance triggers a receive-credit attempt; any failure here is logged,
// never fatal to the generation call.
func (o *Orchestrator) checkCreditBestEffort(ctx context.Context, info region.Info, authHeader string) {
	credit, err := o.Upstream.CreditBalance(ctx, info, authHeader)
	if err != nil {
		o.logger().Warn("credit balance check failed", "error", err)
		return
	}
	if credit.TotalCredit > 0 {
		return
	}
	if err := o.Upstream.ReceiveCredit(ctx, info, authHeader); err != nil {
		o.logger().Warn("receive-credit attempt failed", "error", err)
	}
}

// ModelCatalogNames lists the client-facing model names across both
// tables, for GET /v1/models (pure, no I/O).
func (c ModelCatalog) ModelCatalogNames() []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range c.Domestic.Names() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, n := range c.International.Names() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// Ping answers the trivial liveness probe exposed at GET /ping.
func Ping() string { return "pong" }
