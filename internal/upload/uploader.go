// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package upload implements the three-phase authenticated upload of an
// in-memory image blob: request token → apply → PUT → commit. Exactly one
// upload is in flight at a time within a single generation call, enforced
// by a weighted semaphore rather than relying on caller discipline.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/mediaforge/gengateway/internal/gatewayerr"
	"github.com/mediaforge/gengateway/internal/region"
	"github.com/mediaforge/gengateway/internal/signer"
)

// TokenResponse is the body of POST /mweb/v1/get_upload_token.
type TokenResponse struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	SessionToken    string `json:"session_token"`
	ServiceID       string `json:"service_id"`
	SpaceName       string `json:"space_name"`
}

// StoreInfo is one entry of ApplyImageUpload's UploadAddress.StoreInfos.
type StoreInfo struct {
	StoreURI string `json:"StoreUri"`
	Auth     string `json:"Auth"`
}

// UploadAddress is returned by ApplyImageUpload.
type UploadAddress struct {
	StoreInfos  []StoreInfo `json:"StoreInfos"`
	UploadHosts []string    `json:"UploadHosts"`
	SessionKey  string      `json:"SessionKey"`
}

type applyResponse struct {
	ResponseMetadata struct {
		Error *apiError `json:"Error"`
	} `json:"ResponseMetadata"`
	Result UploadAddress `json:"Result"`
}

type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type commitResponse struct {
	ResponseMetadata struct {
		Error *apiError `json:"Error"`
	} `json:"ResponseMetadata"`
	Result struct {
		Results []struct {
			Uri       string `json:"Uri"`
			UriStatus int    `json:"UriStatus"`
		} `json:"Results"`
	} `json:"Result"`
}

// requiredCommitStatus is the UriStatus value required for a successful
// commit; any other value is a upload-commit failure.
const requiredCommitStatus = 2000

// HTTPClient is the narrow surface the Uploader needs, letting tests
// substitute a stub transport without standing up a real server.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Uploader drives the GET-TOKEN → APPLY → PUT → COMMIT state machine for
// one image at a time.
type Uploader struct {
	client HTTPClient
	signer *signer.Signer
	log    *slog.Logger
	sem    *semaphore.Weighted
	now    func() time.Time
}

// New builds an Uploader against the given region. The signer is keyed to
// region.AWSRegion.
func New(client HTTPClient, info region.Info, log *slog.Logger) *Uploader {
	if log == nil {
		log = slog.Default()
	}
	return &Uploader{
		client: client,
		signer: signer.New(info.AWSRegion),
		log:    log.With("component", "uploader"),
		sem:    semaphore.NewWeighted(1),
		now:    time.Now,
	}
}

// Result is the opaque Uploaded Image Reference handed to the Draft
// Builder: the committed Uri. The service id is derived again from the
// upload token on every Upload call.
type Result struct {
	Uri string
}

// Upload runs the full state machine for one image's bytes against one
// region. Only one Upload may run at a time per Uploader instance; a
// second concurrent call blocks until the first completes, preserving
// submission order.
func (u *Uploader) Upload(ctx context.Context, info region.Info, authHeader string, data []byte) (Result, error) {
	if err := u.sem.Acquire(ctx, 1); err != nil {
		return Result{}, gatewayerr.Wrap(gatewayerr.KindTransport, "cannot acquire upload slot", err)
	}
	defer u.sem.Release(1)

	tok, err := u.getUploadToken(ctx, info, authHeader)
	if err != nil {
		return Result{}, err
	}

	serviceID := tok.ServiceID
	if info.IsInternational && tok.SpaceName != "" {
		serviceID = tok.SpaceName
	}

	creds := signer.Credentials{
		AccessKeyID:     tok.AccessKeyID,
		SecretAccessKey: tok.SecretAccessKey,
		SessionToken:    tok.SessionToken,
	}

	addr, err := u.apply(ctx, info, creds, serviceID, len(data))
	if err != nil {
		return Result{}, err
	}
	if len(addr.StoreInfos) == 0 || len(addr.UploadHosts) == 0 {
		return Result{}, gatewayerr.New(gatewayerr.KindUploadApply, "apply response missing store info")
	}

	if err := u.put(ctx, addr, data); err != nil {
		return Result{}, err
	}

	uri, err := u.commit(ctx, info, creds, serviceID, addr.SessionKey)
	if err != nil {
		return Result{}, err
	}

	return Result{Uri: uri}, nil
}

func (u *Uploader) getUploadToken(ctx context.Context, info region.Info, authHeader string) (TokenResponse, error) {
	body, _ := json.Marshal(map[string]int{"scene": 2})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, info.Origin+"/mweb/v1/get_upload_token", bytes.NewReader(body))
	if err != nil {
		return TokenResponse{}, gatewayerr.Wrap(gatewayerr.KindUploadToken, "cannot build token request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("Referer", info.Referer)

	resp, err := u.do(req)
	if err != nil {
		return TokenResponse{}, gatewayerr.Wrap(gatewayerr.KindUploadToken, "get_upload_token transport error", err)
	}
	defer resp.Body.Close()

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return TokenResponse{}, gatewayerr.Wrap(gatewayerr.KindUploadToken, "cannot decode upload token response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || tok.AccessKeyID == "" {
		return TokenResponse{}, gatewayerr.New(gatewayerr.KindUploadToken, fmt.Sprintf("get_upload_token failed: status %d", resp.StatusCode))
	}
	return tok, nil
}

func (u *Uploader) apply(ctx context.Context, info region.Info, creds signer.Credentials, serviceID string, fileSize int) (UploadAddress, error) {
	rawURL := fmt.Sprintf("https://%s/?Action=ApplyImageUpload&Version=2018-08-01&ServiceId=%s&FileSize=%d&s=%d",
		info.ImagexHost, serviceID, fileSize, u.now().UnixNano())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return UploadAddress{}, gatewayerr.Wrap(gatewayerr.KindUploadApply, "cannot build apply request", err)
	}
	if err := u.sign(ctx, req, nil, creds); err != nil {
		return UploadAddress{}, gatewayerr.Wrap(gatewayerr.KindUploadApply, "cannot sign apply request", err)
	}

	resp, err := u.do(req)
	if err != nil {
		return UploadAddress{}, gatewayerr.Wrap(gatewayerr.KindUploadApply, "apply transport error", err)
	}
	defer resp.Body.Close()

	var parsed applyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return UploadAddress{}, gatewayerr.Wrap(gatewayerr.KindUploadApply, "cannot decode apply response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return UploadAddress{}, gatewayerr.New(gatewayerr.KindUploadApply, fmt.Sprintf("apply failed: status %d", resp.StatusCode))
	}
	if parsed.ResponseMetadata.Error != nil {
		return UploadAddress{}, gatewayerr.New(gatewayerr.KindUploadApply, parsed.ResponseMetadata.Error.Message)
	}
	return parsed.Result, nil
}

// put places the exact bytes of data in the request body along with a
// Content-CRC32 header computed over those same bytes (invariant i).
func (u *Uploader) put(ctx context.Context, addr UploadAddress, data []byte) error {
	store := addr.StoreInfos[0]
	host := addr.UploadHosts[0]
	rawURL := fmt.Sprintf("https://%s/upload/v1/%s", host, store.StoreURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return gatewayerr.Wrap(gatewayerr.KindUploadPut, "cannot build put request", err)
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-CRC32", fmt.Sprintf("%08x", crc32.ChecksumIEEE(data)))
	req.Header.Set("Authorization", store.Auth)

	resp, err := u.do(req)
	if err != nil {
		return gatewayerr.Wrap(gatewayerr.KindUploadPut, "put transport error", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gatewayerr.New(gatewayerr.KindUploadPut, fmt.Sprintf("put failed: status %d", resp.StatusCode))
	}
	return nil
}

func (u *Uploader) commit(ctx context.Context, info region.Info, creds signer.Credentials, serviceID, sessionKey string) (string, error) {
	body, _ := json.Marshal(map[string]string{"SessionKey": sessionKey})
	rawURL := fmt.Sprintf("https://%s/?Action=CommitImageUpload&Version=2018-08-01&ServiceId=%s", info.ImagexHost, serviceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return "", gatewayerr.Wrap(gatewayerr.KindUploadCommit, "cannot build commit request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := u.sign(ctx, req, body, creds); err != nil {
		return "", gatewayerr.Wrap(gatewayerr.KindUploadCommit, "cannot sign commit request", err)
	}

	resp, err := u.do(req)
	if err != nil {
		return "", gatewayerr.Wrap(gatewayerr.KindUploadCommit, "commit transport error", err)
	}
	defer resp.Body.Close()

	var parsed commitResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", gatewayerr.Wrap(gatewayerr.KindUploadCommit, "cannot decode commit response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", gatewayerr.New(gatewayerr.KindUploadCommit, fmt.Sprintf("commit failed: status %d", resp.StatusCode))
	}
	if parsed.ResponseMetadata.Error != nil {
		return "", gatewayerr.New(gatewayerr.KindUploadCommit, parsed.ResponseMetadata.Error.Message)
	}
	if len(parsed.Result.Results) == 0 || parsed.Result.Results[0].UriStatus != requiredCommitStatus {
		status := 0
		if len(parsed.Result.Results) > 0 {
			status = parsed.Result.Results[0].UriStatus
		}
		return "", gatewayerr.New(gatewayerr.KindUploadCommit, fmt.Sprintf("unexpected UriStatus %d", status))
	}
	return parsed.Result.Results[0].Uri, nil
}

func (u *Uploader) sign(ctx context.Context, req *http.Request, body []byte, creds signer.Credentials) error {
	return u.signer.SignRequest(ctx, req, body, creds, u.now())
}

func (u *Uploader) do(req *http.Request) (*http.Response, error) {
	if u.client != nil {
		return u.client.Do(req)
	}
	return http.DefaultClient.Do(req)
}

