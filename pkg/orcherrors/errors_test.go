package orcherrors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	clienterrors "github.com/guardrails/orchestrator/pkg/clients/errors"
)

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("`detectors` is required"), http.StatusUnprocessableEntity},
		{"detector not found", DetectorNotFound("unknown"), http.StatusNotFound},
		{"chunker not found", ChunkerNotFound("unknown"), http.StatusNotFound},
		{"detector request failed wraps client status", DetectorRequestFailed("id", clienterrors.Http(500, "overloaded")), http.StatusInternalServerError},
		{"client error wraps grpc-translated status", Client(clienterrors.Grpc(clienterrors.GRPCToHTTPCode(clienterrors.GRPCUnavailable), "down")), http.StatusServiceUnavailable},
		{"cancelled maps to 500", Cancelled(), http.StatusInternalServerError},
		{"other maps to 500", Other("task panicked: %s", "boom"), http.StatusInternalServerError},
		{"plain error maps to 500", assertPlainError{}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "detector `foo` not found", DetectorNotFound("foo").Error())
	assert.Equal(t, "validation error: `detectors` is required", Validation("`detectors` is required").Error())
	assert.Equal(t, "cancelled", Cancelled().Error())
}

func TestFromPanic(t *testing.T) {
	err := FromPanic("index out of range")
	assert.Equal(t, "task panicked: index out of range", err.Error())
}

func TestErrorIsMatchesByKind(t *testing.T) {
	a := DetectorNotFound("foo")
	b := DetectorNotFound("bar")
	assert.ErrorIs(t, a, b)

	c := ChunkerNotFound("foo")
	assert.NotErrorIs(t, a, c)
}

type assertPlainError struct{}

func (assertPlainError) Error() string { return "plain" }
