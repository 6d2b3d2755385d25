// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/mediaforge/gengateway/internal/apischema/gatewayapi"
	"github.com/mediaforge/gengateway/internal/gatewayerr"
	"github.com/mediaforge/gengateway/internal/region"
)

var (
	sseDataPrefix  = []byte("data: ")
	sseDoneMessage = []byte("[DONE]")
)

// ChatTransport opens the upstream chat/completions call and hands back
// its raw SSE response body. Actually placing the request on the wire is
// an external collaborator, the same way the session provider and token
// pool are: ChatStream only owns decoding what comes back.
type ChatTransport interface {
	Stream(ctx context.Context, info region.Info, authHeader string, messages []gatewayapi.ChatCompletionMessage) (io.ReadCloser, error)
}

// ChatTransportFunc adapts a plain function to ChatTransport, the same way
// session.ProviderFunc adapts one to session.Provider.
type ChatTransportFunc func(ctx context.Context, info region.Info, authHeader string, messages []gatewayapi.ChatCompletionMessage) (io.ReadCloser, error)

func (f ChatTransportFunc) Stream(ctx context.Context, info region.Info, authHeader string, messages []gatewayapi.ChatCompletionMessage) (io.ReadCloser, error) {
	return f(ctx, info, authHeader, messages)
}

// ChatStream drives streaming chat completions. It resolves a token the
// same way the other public operations do, opens the upstream stream via
// ChatTransport, and decodes the SSE body chunk by chunk, invoking
// onChunk for every decoded delta until the "[DONE]" sentinel or the
// stream closes. Transport and decode failures go to onError rather than
// a return value, since a partial stream may already have reached the
// caller by the time a fault occurs.
func (o *Orchestrator) ChatStream(ctx context.Context, messages []gatewayapi.ChatCompletionMessage, token string, onChunk func(gatewayapi.ChatCompletionChunk), onError func(error)) {
	if o.ChatTransport == nil {
		onError(gatewayerr.New(gatewayerr.KindProvisioning, "no chat transport configured"))
		return
	}

	rawToken, err := o.resolveToken(token)
	if err != nil {
		onError(err)
		return
	}
	info, secret := region.Resolve(rawToken)
	authHeader := region.FormatAuth(info, secret)

	body, err := o.ChatTransport.Stream(ctx, info, authHeader, messages)
	if err != nil {
		onError(gatewayerr.Wrap(gatewayerr.KindTransport, "chat stream request failed", err))
		return
	}
	defer body.Close()

	decodeChatStream(body, onChunk, onError)
}

// decodeChatStream reads body incrementally, splitting on blank-line
// event boundaries, and hands each "data:" payload to onChunk. Malformed
// chunks are reported via onError and skipped rather than aborting the
// whole stream, since one bad chunk shouldn't sink an otherwise-good
// response.
func decodeChatStream(body io.Reader, onChunk func(gatewayapi.ChatCompletionChunk), onError func(error)) {
	var buf bytes.Buffer
	read := make([]byte, 4096)
	for {
		n, err := body.Read(read)
		if n > 0 {
			buf.Write(read[:n])
			for {
				block, remaining, found := bytes.Cut(buf.Bytes(), []byte("\n\n"))
				if !found {
					break
				}
				rest := append([]byte(nil), remaining...)
				buf.Reset()
				buf.Write(rest)
				if processChatStreamBlock(block, onChunk, onError) {
					return
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				if buf.Len() > 0 {
					processChatStreamBlock(buf.Bytes(), onChunk, onError)
				}
				return
			}
			onError(gatewayerr.Wrap(gatewayerr.KindTransport, "chat stream read failed", err))
			return
		}
	}
}

// processChatStreamBlock decodes one "\n\n"-delimited SSE event. It
// returns true once the "[DONE]" sentinel is observed, signalling the
// caller to stop reading.
func processChatStreamBlock(block []byte, onChunk func(gatewayapi.ChatCompletionChunk), onError func(error)) bool {
	var data []byte
	for _, line := range bytes.Split(block, []byte("\n")) {
		if after, ok := bytes.CutPrefix(line, sseDataPrefix); ok {
			data = bytes.TrimSpace(after)
		}
	}
	if len(data) == 0 {
		return false
	}
	if bytes.Equal(data, sseDoneMessage) {
		return true
	}

	var chunk gatewayapi.ChatCompletionChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		onError(gatewayerr.Wrap(gatewayerr.KindServer, "malformed chat stream chunk", err))
		return false
	}
	onChunk(chunk)
	return false
}
