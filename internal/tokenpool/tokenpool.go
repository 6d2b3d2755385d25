// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package tokenpool is the narrow, swappable contract the orchestrator
// uses to obtain a session token per call. The full pool (loading,
// rotation policy, persistence) is an external collaborator; this package
// only provides the read-mostly, random-selection reference shape so the
// orchestrator has something to compose against.
package tokenpool

import (
	"math/rand"
	"strings"

	"github.com/mediaforge/gengateway/internal/gatewayerr"
)

// Pool picks one session token per call.
type Pool interface {
	Pick() (string, error)
}

// Static is an immutable, read-only slice of tokens. Selection is random
// per call; no state is mutated, so one Static is safe to share across
// concurrently-handled requests.
type Static struct {
	tokens []string
}

// NewStatic builds a Static pool from a separator-delimited string: split
// on the separator, trim whitespace, drop empty entries, keep the rest as
// an immutable slice.
func NewStatic(raw, sep string) Static {
	var tokens []string
	for _, t := range strings.Split(raw, sep) {
		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return Static{tokens: tokens}
}

// Pick returns a uniformly random token. An empty pool is a distinct
// error class (pool-exhausted), not a validation error, so callers can
// tell "misconfigured" apart from "nothing left to try".
func (s Static) Pick() (string, error) {
	if len(s.tokens) == 0 {
		return "", gatewayerr.New(gatewayerr.KindPoolExhausted, "token pool is empty")
	}
	return s.tokens[rand.Intn(len(s.tokens))], nil
}
