// Copyright Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package gatewayerr defines the stable error taxonomy shared across the
// generation pipeline (region resolution, signing, upload, drafting,
// polling, orchestration). Every phase wraps its failure in an *Error so
// callers can classify without string matching.
package gatewayerr

import (
	"errors"
	"fmt"
)

// Kind is one of the stable error classes from the public contract. New
// kinds are added here, never inferred from message text.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindAuth            Kind = "auth"
	KindProvisioning    Kind = "provisioning"
	KindUploadToken     Kind = "upload-token"
	KindUploadApply     Kind = "upload-apply"
	KindUploadPut       Kind = "upload-put"
	KindUploadCommit    Kind = "upload-commit"
	KindDraftSubmit     Kind = "draft-submit"
	KindPollTimeout     Kind = "poll-timeout"
	KindPollStall       Kind = "poll-stall"
	KindPollRemoteFail  Kind = "poll-remote-failed"
	KindTransport       Kind = "transport"
	KindServer          Kind = "server"
	KindPoolExhausted   Kind = "pool-exhausted"
)

// Error is the shape every public-facing error takes: a stable kind, a
// human message (preferring the upstream's own message when available),
// and the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error around a lower-level cause, preferring msg when
// non-empty and falling back to cause's own message otherwise.
func Wrap(kind Kind, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, returning ("", false) when err is not
// (or does not wrap) a *Error.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return "", false
}
