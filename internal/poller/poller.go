// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package poller implements the adaptive polling loop against the history
// endpoint: stall detection, early completion, and terminal failure
// classification, expressed as a small state machine (Polling, Stalled,
// Failed, Succeeded) with a synchronous tick closure so the loop alone
// owns time.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/mediaforge/gengateway/internal/config"
	"github.com/mediaforge/gengateway/internal/gatewayerr"
)

// MediaType distinguishes image vs video polls; the two only differ in
// which defaults a caller picks for Config, not in loop behavior.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Status is the per-tick snapshot handed back by the caller's tick
// closure.
type Status struct {
	Status     int
	FailCode   string
	ItemCount  int
	FinishTime int64
	HistoryID  string
}

// Tick performs one HTTP round-trip against the history endpoint. It
// returns gatewayerr-classified errors; a transport-class error is
// retried by the loop up to Config.MaxTransportRetries times, anything
// else fails the poll immediately.
type Tick func(ctx context.Context, historyID string) (Status, any, error)

// Config is the poller's fixed, per-call configuration.
type Config struct {
	MaxPollCount        int
	ExpectedItemCount   int
	Type                MediaType
	StallThreshold      int // consecutive no-progress ticks before failing stall
	BaseInterval        time.Duration
	MaxInterval         time.Duration
	IntervalStep        time.Duration
	MaxTransportRetries int
	Statuses            config.TerminalStatusTable
}

// DefaultConfig fills in the interval schedule: start at ~2s, widen by a
// small additive step up to ~10s.
func DefaultConfig(mediaType MediaType, maxPollCount, expectedItemCount int) Config {
	return Config{
		MaxPollCount:        maxPollCount,
		ExpectedItemCount:   expectedItemCount,
		Type:                mediaType,
		StallThreshold:      6,
		BaseInterval:        2 * time.Second,
		MaxInterval:         10 * time.Second,
		IntervalStep:        time.Second,
		MaxTransportRetries: 3,
		Statuses:            config.DefaultTerminalStatusTable,
	}
}

// Result is the public outcome of a Poll call.
type Result struct {
	Status      Status
	Elapsed     time.Duration
	Ticks       int
	Data        any
}

// Poll drives the adaptive loop until the history record reaches a
// terminal state, the iteration budget is exhausted, or progress stalls.
func Poll(ctx context.Context, cfg Config, historyID string, tick Tick, log *slog.Logger) (Result, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "poller", "history_id", historyID)

	start := time.Now()
	interval := cfg.BaseInterval
	lastItemCount := -1
	noProgressTicks := 0
	transportErrors := 0

	var last Status
	var lastData any

	for i := 1; i <= cfg.MaxPollCount; i++ {
		status, data, err := tick(ctx, historyID)
		if err != nil {
			if gatewayerr.Is(err, gatewayerr.KindTransport) {
				transportErrors++
				if transportErrors > cfg.MaxTransportRetries {
					return Result{Status: last, Elapsed: time.Since(start), Ticks: i, Data: lastData},
						gatewayerr.Wrap(gatewayerr.KindTransport, "exceeded transport retry budget", err)
				}
				if waitErr := sleep(ctx, interval); waitErr != nil {
					return Result{Status: last, Elapsed: time.Since(start), Ticks: i}, waitErr
				}
				continue
			}
			return Result{Status: last, Elapsed: time.Since(start), Ticks: i}, err
		}
		transportErrors = 0
		last, lastData = status, data

		if cfg.Statuses.IsSuccess(status.Status) && (status.ItemCount >= cfg.ExpectedItemCount || status.FinishTime > 0) {
			log.Info("poll succeeded", "ticks", i, "item_count", status.ItemCount)
			return Result{Status: status, Elapsed: time.Since(start), Ticks: i, Data: data}, nil
		}

		if cfg.Statuses.IsFailure(status.Status) || !cfg.Statuses.IsTransientFailCode(status.FailCode) {
			return Result{Status: status, Elapsed: time.Since(start), Ticks: i, Data: data},
				gatewayerr.New(gatewayerr.KindPollRemoteFail, remoteFailMessage(status))
		}

		if status.ItemCount < lastItemCount {
			return Result{Status: status, Elapsed: time.Since(start), Ticks: i, Data: data},
				gatewayerr.New(gatewayerr.KindPollRemoteFail, "item count decreased between ticks")
		}

		if status.ItemCount > lastItemCount {
			lastItemCount = status.ItemCount
			noProgressTicks = 0
			interval = cfg.BaseInterval
		} else {
			noProgressTicks++
			if noProgressTicks > cfg.StallThreshold && status.FinishTime == 0 {
				return Result{Status: status, Elapsed: time.Since(start), Ticks: i, Data: data},
					gatewayerr.New(gatewayerr.KindPollStall, "no item count progress beyond stall threshold")
			}
			interval += cfg.IntervalStep
			if interval > cfg.MaxInterval {
				interval = cfg.MaxInterval
			}
		}

		if i < cfg.MaxPollCount {
			if waitErr := sleep(ctx, interval); waitErr != nil {
				return Result{Status: status, Elapsed: time.Since(start), Ticks: i, Data: data}, waitErr
			}
		}
	}

	return Result{Status: last, Elapsed: time.Since(start), Ticks: cfg.MaxPollCount, Data: lastData},
		gatewayerr.New(gatewayerr.KindPollTimeout, "exceeded max poll count")
}

func remoteFailMessage(s Status) string {
	if s.FailCode != "" {
		return "remote reported fail_code " + s.FailCode
	}
	return "remote reported terminal failure status"
}

// sleep waits for d or returns a transport error immediately if ctx is
// cancelled first, letting a cancelled request stop the poller at the
// next tick.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return gatewayerr.Wrap(gatewayerr.KindTransport, "poll cancelled", ctx.Err())
	case <-timer.C:
		return nil
	}
}
