// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/mediaforge/gengateway/internal/gatewayerr"
	"github.com/mediaforge/gengateway/internal/poller"
	"github.com/mediaforge/gengateway/internal/region"
)

// Upstream is the narrow surface the orchestrator needs against the
// "draft → poll → collect" protocol and the credit endpoints. A real
// implementation talks to the upstream over HTTP; tests substitute a stub.
type Upstream interface {
	SubmitDraft(ctx context.Context, info region.Info, authHeader string, draftContent, submitID, metricsExtra, rootModel string, aid int) (historyID string, err error)
	PollTick(ctx context.Context, info region.Info, authHeader string, historyID string, mediaType poller.MediaType) (poller.Status, any, error)
	CreditBalance(ctx context.Context, info region.Info, authHeader string) (Credit, error)
	ReceiveCredit(ctx context.Context, info region.Info, authHeader string) error
}

// Credit mirrors the fields consumed from POST /token/points.
type Credit struct {
	GiftCredit     int64
	PurchaseCredit int64
	VipCredit      int64
	TotalCredit    int64
}

// HTTPUpstream is the production Upstream, talking JSON over net/http.
type HTTPUpstream struct {
	Client HTTPClient
}

// HTTPClient is the minimal surface HTTPUpstream needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func (u HTTPUpstream) do(ctx context.Context, info region.Info, authHeader, path string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindValidation, "cannot encode request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, info.Origin+path, bytes.NewReader(b))
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindTransport, "cannot build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Referer", info.Referer)

	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindTransport, fmt.Sprintf("%s transport error", path), err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, gatewayerr.Wrap(gatewayerr.KindTransport, "cannot read response body", err)
	}
	if resp.StatusCode >= 500 {
		return nil, gatewayerr.New(gatewayerr.KindServer, fmt.Sprintf("%s: upstream status %d", path, resp.StatusCode))
	}
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return nil, gatewayerr.New(gatewayerr.KindAuth, fmt.Sprintf("%s: upstream status %d", path, resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, gatewayerr.New(gatewayerr.KindServer, fmt.Sprintf("%s: unexpected status %d", path, resp.StatusCode))
	}
	return respBody, nil
}

func (u HTTPUpstream) SubmitDraft(ctx context.Context, info region.Info, authHeader string, draftContent, submitID, metricsExtra, rootModel string, aid int) (string, error) {
	body := map[string]any{
		"draft_content": draftContent,
		"submit_id":     submitID,
		"metrics_extra": metricsExtra,
		"extend":        map[string]any{"root_model": rootModel},
		"http_common_info": map[string]any{"aid": aid},
	}
	resp, err := u.do(ctx, info, authHeader, "/mweb/v1/aigc_draft/generate", body)
	if err != nil {
		return "", err
	}
	historyID := gjson.GetBytes(resp, "aigc_data.history_record_id").String()
	if historyID == "" {
		return "", gatewayerr.New(gatewayerr.KindDraftSubmit, "draft/generate response missing history_record_id")
	}
	return historyID, nil
}

func (u HTTPUpstream) PollTick(ctx context.Context, info region.Info, authHeader, historyID string, mediaType poller.MediaType) (poller.Status, any, error) {
	body := map[string]any{
		"history_ids": []string{historyID},
		"image_info":  map[string]any{"image_scene_list": []string{string(mediaType)}},
	}
	resp, err := u.do(ctx, info, authHeader, "/mweb/v1/get_history_by_ids", body)
	if err != nil {
		return poller.Status{}, nil, err
	}
	record := gjson.GetBytes(resp, "data."+historyID)
	if !record.Exists() {
		record = gjson.GetBytes(resp, historyID)
	}
	status := poller.Status{
		HistoryID:  historyID,
		Status:     int(record.Get("status").Int()),
		FailCode:   record.Get("fail_code").String(),
		ItemCount:  int(record.Get("item_list").Get("#").Int()),
		FinishTime: record.Get("task.finish_time").Int(),
	}
	return status, resp, nil
}

func (u HTTPUpstream) CreditBalance(ctx context.Context, info region.Info, authHeader string) (Credit, error) {
	resp, err := u.do(ctx, info, authHeader, "/token/points", map[string]any{})
	if err != nil {
		return Credit{}, err
	}
	points := gjson.GetBytes(resp, "0.points")
	return Credit{
		GiftCredit:     points.Get("giftCredit").Int(),
		PurchaseCredit: points.Get("purchaseCredit").Int(),
		VipCredit:      points.Get("vipCredit").Int(),
		TotalCredit:    points.Get("totalCredit").Int(),
	}, nil
}

func (u HTTPUpstream) ReceiveCredit(ctx context.Context, info region.Info, authHeader string) error {
	_, err := u.do(ctx, info, authHeader, "/mweb/v1/receive_credit", map[string]any{})
	return err
}

// ItemURLs extracts artifact URLs from the raw get_history_by_ids payload
// captured alongside the terminal poller.Result.
func ItemURLs(historyID string, raw any) []string {
	b, ok := raw.([]byte)
	if !ok {
		return nil
	}
	record := gjson.GetBytes(b, "data."+historyID)
	if !record.Exists() {
		record = gjson.GetBytes(b, historyID)
	}
	var urls []string
	for _, item := range record.Get("item_list").Array() {
		if u := item.Get("image.large_images.0.image_url").String(); u != "" {
			urls = append(urls, u)
			continue
		}
		if u := item.Get("video.transcoded_video.origin.video_url").String(); u != "" {
			urls = append(urls, u)
			continue
		}
		if u := item.Get("url").String(); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
