// Package orcherrors is the orchestrator-facing error taxonomy. Every
// collaborator error (detector, chunker, generation, client transport)
// is wrapped into one of the variants here before it leaves a handler.
package orcherrors

import (
	"errors"
	"fmt"
	"net/http"

	clienterrors "github.com/guardrails/orchestrator/pkg/clients/errors"
)

// Error is the orchestrator's single error type. Kind discriminates the
// variant; the other fields are populated depending on Kind.
type Error struct {
	Kind Kind

	// ID identifies the failing collaborator (detector/chunker id) for
	// the *NotFound and *RequestFailed variants.
	ID string

	// Cause is the underlying client error, present on *RequestFailed
	// and Client variants.
	Cause error

	// Message carries the text for Validation, JsonError, and Other.
	Message string
}

// Kind enumerates the tagged variants from spec.md §7.
type Kind int

const (
	KindClient Kind = iota
	KindDetectorNotFound
	KindChunkerNotFound
	KindDetectorRequestFailed
	KindChunkerRequestFailed
	KindGenerateRequestFailed
	KindChatCompletionRequestFailed
	KindTokenizeRequestFailed
	KindValidation
	KindJSONError
	KindCancelled
	KindOther
	KindNotImplemented
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindClient:
		return e.Cause.Error()
	case KindDetectorNotFound:
		return fmt.Sprintf("detector `%s` not found", e.ID)
	case KindChunkerNotFound:
		return fmt.Sprintf("chunker `%s` not found", e.ID)
	case KindDetectorRequestFailed:
		return fmt.Sprintf("detector request failed for `%s`: %v", e.ID, e.Cause)
	case KindChunkerRequestFailed:
		return fmt.Sprintf("chunker request failed for `%s`: %v", e.ID, e.Cause)
	case KindGenerateRequestFailed:
		return fmt.Sprintf("generate request failed for `%s`: %v", e.ID, e.Cause)
	case KindChatCompletionRequestFailed:
		return fmt.Sprintf("chat completion request failed for `%s`: %v", e.ID, e.Cause)
	case KindTokenizeRequestFailed:
		return fmt.Sprintf("tokenize request failed for `%s`: %v", e.ID, e.Cause)
	case KindValidation:
		return fmt.Sprintf("validation error: %s", e.Message)
	case KindJSONError:
		return fmt.Sprintf("json deserialization error: %s", e.Message)
	case KindCancelled:
		return "cancelled"
	case KindNotImplemented:
		return e.Message
	default:
		return e.Message
	}
}

// Unwrap exposes the underlying client error for errors.As/errors.Is chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Constructors. Each mirrors a spec.md §7 variant by name.

func Client(cause error) *Error { return &Error{Kind: KindClient, Cause: cause} }

func DetectorNotFound(id string) *Error { return &Error{Kind: KindDetectorNotFound, ID: id} }

func ChunkerNotFound(id string) *Error { return &Error{Kind: KindChunkerNotFound, ID: id} }

func DetectorRequestFailed(id string, cause error) *Error {
	return &Error{Kind: KindDetectorRequestFailed, ID: id, Cause: cause}
}

func ChunkerRequestFailed(id string, cause error) *Error {
	return &Error{Kind: KindChunkerRequestFailed, ID: id, Cause: cause}
}

func GenerateRequestFailed(id string, cause error) *Error {
	return &Error{Kind: KindGenerateRequestFailed, ID: id, Cause: cause}
}

func ChatCompletionRequestFailed(id string, cause error) *Error {
	return &Error{Kind: KindChatCompletionRequestFailed, ID: id, Cause: cause}
}

func TokenizeRequestFailed(id string, cause error) *Error {
	return &Error{Kind: KindTokenizeRequestFailed, ID: id, Cause: cause}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func JSONError(message string) *Error { return &Error{Kind: KindJSONError, Message: message} }

func Cancelled() *Error { return &Error{Kind: KindCancelled} }

func Other(format string, args ...interface{}) *Error {
	return &Error{Kind: KindOther, Message: fmt.Sprintf(format, args...)}
}

func NotImplemented(message string) *Error {
	return &Error{Kind: KindNotImplemented, Message: message}
}

// FromPanic converts a recovered panic value into the Other variant, in
// the shape spec.md §4.7 requires ("task panicked: ...").
func FromPanic(recovered interface{}) *Error {
	return Other("task panicked: %v", recovered)
}

// Is enables errors.Is(err, orcherrors.Cancelled()) style matching by kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// StatusCode maps the taxonomy to an HTTP status per spec.md §7.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindDetectorNotFound, KindChunkerNotFound:
		return http.StatusNotFound
	case KindClient:
		return statusFromClientError(e.Cause)
	case KindDetectorRequestFailed, KindChunkerRequestFailed, KindGenerateRequestFailed,
		KindChatCompletionRequestFailed, KindTokenizeRequestFailed:
		if code := statusFromClientError(e.Cause); code != 0 {
			return code
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func statusFromClientError(cause error) int {
	var ce *clienterrors.Error
	if errors.As(cause, &ce) {
		return ce.StatusCode()
	}
	return 0
}

// Details is the body the HTTP adapter writes for a 500, per spec.md §7.
const Details = "unexpected error occurred while processing request"
