// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Command gatewaydemo illustrates how the out-of-scope HTTP server, token
// pool, and session provider collaborators would be assembled around the
// generation pipeline core. It is not itself part of the core's scope.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/mediaforge/gengateway/internal/apischema/gatewayapi"
	"github.com/mediaforge/gengateway/internal/config"
	"github.com/mediaforge/gengateway/internal/gatewayerr"
	"github.com/mediaforge/gengateway/internal/orchestrator"
	"github.com/mediaforge/gengateway/internal/region"
	"github.com/mediaforge/gengateway/internal/session"
	"github.com/mediaforge/gengateway/internal/tokenpool"
	"github.com/mediaforge/gengateway/internal/upload"
)

type cmd struct {
	Version struct{}  `cmd:"" help:"Show version."`
	Image   cmdImage  `cmd:"" help:"Generate an image from a prompt."`
	Models  cmdModels `cmd:"" help:"List the client-facing model catalog."`
	Chat    cmdChat   `cmd:"" help:"Stream a chat-completions-shaped generation request."`
}

type cmdImage struct {
	Model      string `help:"Client-facing model name." default:"jimeng-3.0"`
	Prompt     string `arg:"" help:"Prompt text."`
	Ratio      string `help:"Aspect ratio." default:"1:1"`
	Resolution string `help:"Target resolution." default:"1k"`
	Token      string `help:"Session token; drawn from GATEWAY_TOKENS if empty." env:"GATEWAY_TOKEN"`
}

type cmdModels struct{}

type cmdChat struct {
	Prompt string `arg:"" help:"Prompt text."`
	Token  string `help:"Session token; drawn from GATEWAY_TOKENS if empty." env:"GATEWAY_TOKEN"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	doMain(ctx, os.Stdout, os.Stderr, os.Args[1:], os.Exit)
}

func doMain(ctx context.Context, stdout, stderr io.Writer, args []string, exitFn func(int)) {
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("gatewaydemo"),
		kong.Description("jimeng-gateway demo CLI"),
		kong.Writers(stdout, stderr),
		kong.Exit(exitFn),
	)
	if err != nil {
		log.Fatalf("error creating parser: %v", err)
	}
	parsed, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	o := newOrchestrator()

	switch parsed.Command() {
	case "version":
		fmt.Fprintln(stdout, "gatewaydemo: dev")
	case "image <prompt>":
		urls, err := o.GenerateImages(ctx, c.Image.Model, c.Image.Prompt, orchestrator.ImageOptions{
			Ratio:      config.Ratio(c.Image.Ratio),
			Resolution: config.Resolution(c.Image.Resolution),
		}, c.Image.Token)
		if err != nil {
			log.Fatalf("generation failed: %v", err)
		}
		for _, u := range urls {
			fmt.Fprintln(stdout, u)
		}
	case "models":
		for _, n := range o.Models.ModelCatalogNames() {
			fmt.Fprintln(stdout, n)
		}
	case "chat <prompt>":
		messages := []gatewayapi.ChatCompletionMessage{{Role: "user", Content: c.Chat.Prompt}}
		o.ChatStream(ctx, messages, c.Chat.Token,
			func(chunk gatewayapi.ChatCompletionChunk) {
				if len(chunk.Choices) > 0 {
					fmt.Fprint(stdout, chunk.Choices[0].Delta.Content)
				}
			},
			func(err error) {
				fmt.Fprintln(stderr, err)
			},
		)
		fmt.Fprintln(stdout)
	default:
		panic("unreachable")
	}
}

// newOrchestrator wires the demo's collaborators: a static token pool read
// from GATEWAY_TOKENS (colon-separated), a session provider and a chat
// transport that both always fail (minting fresh tokens and opening the
// upstream chat stream are both out of core scope), and the real
// upload.New-backed uploader factory.
func newOrchestrator() *orchestrator.Orchestrator {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	pool := tokenpool.NewStatic(os.Getenv("GATEWAY_TOKENS"), ":")

	return &orchestrator.Orchestrator{
		Upstream: orchestrator.HTTPUpstream{},
		Uploader: func(info region.Info) *upload.Uploader { return upload.New(nil, info, log) },
		SessionProvider: session.ProviderFunc(func(ctx context.Context) (string, error) {
			return "", gatewayerr.New(gatewayerr.KindProvisioning, "session provisioning is an external collaborator, not implemented by this demo")
		}),
		ChatTransport: orchestrator.ChatTransportFunc(func(ctx context.Context, info region.Info, authHeader string, messages []gatewayapi.ChatCompletionMessage) (io.ReadCloser, error) {
			return nil, fmt.Errorf("chat stream transport is an external collaborator, not implemented by this demo")
		}),
		TokenPool: pool,
		Models: orchestrator.ModelCatalog{
			Domestic:      config.DomesticModels,
			International: config.InternationalModels,
		},
		Log: log,
	}
}
