// Package errors defines the error taxonomy shared by every external
// collaborator client (detectors, chunkers, generation backends).
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the error type returned by every client in pkg/clients.
// It always identifies the failing collaborator's transport shape so the
// orchestrator-facing error taxonomy (pkg/orcherrors) can wrap it without
// losing context.
type Error struct {
	// Kind distinguishes the transport family that produced the error.
	Kind Kind

	// Code is the HTTP status (native for Http, translated for Grpc).
	Code int

	// Message is the collaborator-supplied or synthesized error message.
	Message string
}

// Kind enumerates the client error families named in the spec.
type Kind int

const (
	// KindHTTP is an error surfaced by a plain HTTP call.
	KindHTTP Kind = iota
	// KindGRPC is an error surfaced by a gRPC-shaped call, translated to
	// an HTTP status via GRPCToHTTPCode.
	KindGRPC
	// KindModelNotFound indicates the requested model ID is unknown to
	// the collaborator (or to the registry of service routes for it).
	KindModelNotFound
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindModelNotFound:
		return fmt.Sprintf("model not found: %s", e.Message)
	default:
		return e.Message
	}
}

// StatusCode returns the HTTP status code this error should be reported as.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindModelNotFound:
		return http.StatusNotFound
	default:
		return e.Code
	}
}

// Http constructs a client error from a raw HTTP response.
func Http(code int, message string) *Error {
	return &Error{Kind: KindHTTP, Code: code, Message: message}
}

// Grpc constructs a client error from a gRPC status code (already
// translated to its HTTP equivalent by the caller via GRPCToHTTPCode).
func Grpc(code int, message string) *Error {
	return &Error{Kind: KindGRPC, Code: code, Message: message}
}

// ModelNotFound constructs a model-not-found client error.
func ModelNotFound(modelID string) *Error {
	return &Error{Kind: KindModelNotFound, Code: http.StatusNotFound, Message: modelID}
}

// Is allows errors.Is(err, ModelNotFound(""))-style matching on kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// GRPCCode mirrors the small subset of gRPC status codes the orchestrator
// needs to translate, without pulling in a full gRPC code generation
// dependency (see SPEC_FULL.md's Domain Stack for why).
type GRPCCode int

const (
	GRPCOk GRPCCode = iota
	GRPCInvalidArgument
	GRPCNotFound
	GRPCDeadlineExceeded
	GRPCUnauthenticated
	GRPCPermissionDenied
	GRPCUnavailable
	GRPCUnimplemented
	GRPCInternal
)

// GRPCToHTTPCode implements the fixed table in spec.md §7.
func GRPCToHTTPCode(code GRPCCode) int {
	switch code {
	case GRPCInvalidArgument:
		return http.StatusBadRequest
	case GRPCNotFound:
		return http.StatusNotFound
	case GRPCDeadlineExceeded:
		return http.StatusRequestTimeout
	case GRPCUnauthenticated:
		return http.StatusUnauthorized
	case GRPCPermissionDenied:
		return http.StatusForbidden
	case GRPCUnavailable:
		return http.StatusServiceUnavailable
	case GRPCUnimplemented:
		return http.StatusNotImplemented
	case GRPCOk:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
