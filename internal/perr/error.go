// Package perr implements the core's flat tagged error enum (spec §7, §9).
//
// Every error that crosses a component boundary — and every error that
// crosses the cluster wire — is a *perr.Error with a stable, string-tagged
// Kind. Kinds are metrics-safe (no interpolated values) and survive
// marshal/unmarshal losslessly, which the cluster transport relies on to
// reconstruct a caller-visible error from an RPC response.
package perr

import (
	"errors"
	"fmt"
)

// Kind tags an Error for metrics and cross-process serialization.
type Kind string

const (
	KindSchema              Kind = "schema"
	KindBackend             Kind = "backend"
	KindCollectionNotFound  Kind = "collection_not_found"
	KindInvalidQuery        Kind = "invalid_query"
	KindStorageNotFound     Kind = "storage_not_found"
	KindStoragePermission   Kind = "storage_permission_denied"
	KindStorageExists       Kind = "storage_already_exists"
	KindStorageInvalidPath  Kind = "storage_invalid_path"
	KindStorageBackend      Kind = "storage_backend"
	KindStorageConfig       Kind = "storage_config"
	KindStorageNotSupported Kind = "storage_not_supported"
	KindSerialization       Kind = "serialization"
	KindTransport           Kind = "transport"
	KindTLS                 Kind = "tls"
	KindTimeout             Kind = "timeout"
	KindNodeUnavailable     Kind = "node_unavailable"
	KindConfig              Kind = "config"
	KindNotImplemented      Kind = "not_implemented"
	KindDiscovery           Kind = "discovery"
)

// Error is the core's single error type: a tagged kind, a human reason, and
// an optional wrapped cause. Its only methods are Error, Unwrap and Is (a
// Kind-only comparison), so it round-trips through JSON without
// special-casing.
type Error struct {
	Kind   Kind   `json:"kind"`
	Reason string `json:"reason"`
	Cause  error  `json:"-"`
}

func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, perr.New(kind, "")) by comparing Kind only,
// which is what callers actually want to test for.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// KindOf extracts the Kind of err, or "" if err is not (or does not wrap) a
// *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound is the §7/§4.1 "not-found must be distinguishable" predicate.
func IsNotFound(err error) bool {
	return KindOf(err) == KindStorageNotFound
}

// IsCollectionNotFound reports whether err is a collection-not-found error.
func IsCollectionNotFound(err error) bool {
	return KindOf(err) == KindCollectionNotFound
}
