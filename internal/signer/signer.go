// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package signer computes the Authorization header the ImageX object-store
// API expects. The upstream's scheme is AWS SigV4-shaped, so this wraps
// aws-sdk-go-v2's own v4 signer the same way the teacher signs its AWS
// Bedrock backend calls (internal/extproc/backendauth), swapping the
// service name from "bedrock" to "imagex".
package signer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

const serviceName = "imagex"

// EmptyPayloadHash is the sha256 hex digest of an empty body, used for GET
// requests that carry no payload.
var EmptyPayloadHash = hashHex(nil)

// Credentials is the three-tuple minted by the token-issuance phase (the
// upload context). SessionToken may be empty for requests signed
// before a token has been issued.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func (c Credentials) awsCredentials() aws.Credentials {
	return aws.Credentials{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.SessionToken,
	}
}

// Signer signs ImageX API requests in a given AWS region.
type Signer struct {
	region string
	inner  *v4.Signer
}

// New builds a Signer targeting awsRegion (from the Region Resolver).
func New(awsRegion string) *Signer {
	return &Signer{region: awsRegion, inner: v4.NewSigner()}
}

// SignRequest signs req in place, setting Authorization, X-Amz-Date, and
// (when creds.SessionToken is non-empty) X-Amz-Security-Token. payload is
// the exact body bytes that will be sent; pass nil for requests with no
// body (GET). now is injected for testability.
func (s *Signer) SignRequest(ctx context.Context, req *http.Request, payload []byte, creds Credentials, now time.Time) error {
	payloadHash := hashHex(payload)
	return s.inner.SignHTTP(ctx, creds.awsCredentials(), req, payloadHash, serviceName, s.region, now)
}

// Authorization computes the Authorization header value for a request
// described by its method, full URL, and exact body, without mutating a
// caller-owned *http.Request. It signs a throwaway request built from
// method, rawURL and the payload hash, so headers a caller adds to its own
// request are not covered; the Uploader itself signs its requests through
// SignRequest.
func Authorization(ctx context.Context, s *Signer, method, rawURL string, payload []byte, creds Credentials, now time.Time) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return "", err
	}
	if err := s.SignRequest(ctx, req, payload, creds, now); err != nil {
		return "", err
	}
	return req.Header.Get("Authorization"), nil
}

func hashHex(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
