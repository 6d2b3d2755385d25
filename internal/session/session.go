// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package session defines the narrow contract the orchestrator consumes to
// mint a fresh session token. The implementation (browser-automated
// registration, temporary-email pickup) is out of scope for this core;
// only the interface and its invariants live here.
package session

import (
	"context"

	"github.com/mediaforge/gengateway/internal/gatewayerr"
)

// Provider issues fresh session tokens. Any implementation must return a
// token satisfying the session token invariants (non-empty, region prefix
// in the closed set) and must surface failures as
// gatewayerr.KindProvisioning, never a bare error.
type Provider interface {
	// NewSession returns a freshly minted session token string.
	NewSession(ctx context.Context) (string, error)
}

// ValidateToken checks the session token invariants. It does not validate
// the token against the upstream — that's lazy, per request.
func ValidateToken(token string) error {
	if token == "" {
		return gatewayerr.New(gatewayerr.KindValidation, "session token must not be empty")
	}
	return nil
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

func (f ProviderFunc) NewSession(ctx context.Context) (string, error) { return f(ctx) }
