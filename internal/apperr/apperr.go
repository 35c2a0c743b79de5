// Package apperr defines the typed error kinds that cross the issuer,
// holder, verifier, and internal/api boundaries (spec.md §7): every
// internal error is classified so the HTTP layer can map it to a status
// code without string-matching error text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// Internal covers bugs and invariant violations: SRS domain overflow,
	// a record with a missing segment, an unreachable branch.
	Internal Kind = iota
	// Malformed covers caller input that fails validation before any
	// cryptography runs: wrong segment count, non-hex proof bytes, an
	// array field with duplicate schema keys.
	Malformed
	// NotFound covers references to a credential, certificate, or student
	// id this node has no record of.
	NotFound
	// Crypto covers a cryptographic operation that could not be carried
	// out: the pairing library returning an error, groth16 proving
	// failing, or a SNARK rejected inside an internal step. A KZG pairing
	// equation that evaluates to false is not a Crypto error; it is
	// reported to the caller as verified: false (spec.md §7).
	Crypto
)

func (k Kind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case NotFound:
		return "not_found"
	case Crypto:
		return "crypto"
	default:
		return "internal"
	}
}

// Error wraps an underlying cause with a Kind so callers can branch on
// classification without inspecting error text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func Malformedf(op, format string, args ...any) *Error { return newf(Malformed, op, format, args...) }
func NotFoundf(op, format string, args ...any) *Error   { return newf(NotFound, op, format, args...) }
func Cryptof(op, format string, args ...any) *Error     { return newf(Crypto, op, format, args...) }
func Internalf(op, format string, args ...any) *Error   { return newf(Internal, op, format, args...) }

// KindOf reports the Kind of err, defaulting to Internal when err does not
// wrap an *Error — a deliberate fail-closed default (spec.md §7: unclassified
// failures surface as 500s, never as a 2xx).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
