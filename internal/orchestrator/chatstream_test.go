// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package orchestrator

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediaforge/gengateway/internal/apischema/gatewayapi"
	"github.com/mediaforge/gengateway/internal/gatewayerr"
	"github.com/mediaforge/gengateway/internal/region"
)

type stubChatTransport struct {
	body string
	err  error
}

func (s stubChatTransport) Stream(ctx context.Context, info region.Info, authHeader string, messages []gatewayapi.ChatCompletionMessage) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.body)), nil
}

func testChatOrchestrator(transport ChatTransport) *Orchestrator {
	o := testOrchestrator(&stubUpstream{})
	o.ChatTransport = transport
	return o
}

func TestChatStream_DecodesDeltasUntilDone(t *testing.T) {
	body := "data: {\"id\":\"1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"a fox\"}}]}\n\n" +
		"data: {\"id\":\"1\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\" in snow\"}}]}\n\n" +
		"data: [DONE]\n\n"
	o := testChatOrchestrator(stubChatTransport{body: body})

	var deltas []string
	var errs []error
	o.ChatStream(t.Context(), []gatewayapi.ChatCompletionMessage{{Role: "user", Content: "draw a fox"}}, "tok",
		func(c gatewayapi.ChatCompletionChunk) { deltas = append(deltas, c.Choices[0].Delta.Content) },
		func(err error) { errs = append(errs, err) },
	)

	require.Empty(t, errs)
	require.Equal(t, []string{"a fox", " in snow"}, deltas)
}

func TestChatStream_StopsAtDoneEvenWithTrailingData(t *testing.T) {
	body := "data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"x\"}}]}\n\n" +
		"data: [DONE]\n\n" +
		"data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"should not appear\"}}]}\n\n"
	o := testChatOrchestrator(stubChatTransport{body: body})

	var deltas []string
	o.ChatStream(t.Context(), nil, "tok",
		func(c gatewayapi.ChatCompletionChunk) { deltas = append(deltas, c.Choices[0].Delta.Content) },
		func(error) {},
	)

	require.Equal(t, []string{"x"}, deltas)
}

func TestChatStream_MalformedChunkReportsErrorAndContinues(t *testing.T) {
	body := "data: {not json}\n\n" +
		"data: {\"choices\":[{\"index\":0,\"delta\":{\"content\":\"ok\"}}]}\n\n" +
		"data: [DONE]\n\n"
	o := testChatOrchestrator(stubChatTransport{body: body})

	var deltas []string
	var errs []error
	o.ChatStream(t.Context(), nil, "tok",
		func(c gatewayapi.ChatCompletionChunk) { deltas = append(deltas, c.Choices[0].Delta.Content) },
		func(err error) { errs = append(errs, err) },
	)

	require.Len(t, errs, 1)
	require.Equal(t, []string{"ok"}, deltas)
}

func TestChatStream_NoTransportConfiguredReportsProvisioningError(t *testing.T) {
	o := testOrchestrator(&stubUpstream{})

	var errs []error
	o.ChatStream(t.Context(), nil, "tok", func(gatewayapi.ChatCompletionChunk) {}, func(err error) { errs = append(errs, err) })

	require.Len(t, errs, 1)
	require.True(t, gatewayerr.Is(errs[0], gatewayerr.KindProvisioning))
}

func TestChatStream_TransportErrorIsWrapped(t *testing.T) {
	o := testChatOrchestrator(stubChatTransport{err: context.DeadlineExceeded})

	var errs []error
	o.ChatStream(t.Context(), nil, "tok", func(gatewayapi.ChatCompletionChunk) {}, func(err error) { errs = append(errs, err) })

	require.Len(t, errs, 1)
	require.True(t, gatewayerr.Is(errs[0], gatewayerr.KindTransport))
}

func TestChatStream_EmptyTokenNoPoolReportsPoolExhausted(t *testing.T) {
	o := testChatOrchestrator(stubChatTransport{body: ""})

	var errs []error
	o.ChatStream(t.Context(), nil, "", func(gatewayapi.ChatCompletionChunk) {}, func(err error) { errs = append(errs, err) })

	require.Len(t, errs, 1)
	require.True(t, gatewayerr.Is(errs[0], gatewayerr.KindPoolExhausted))
}
