package types

// DetectionWarningReason enumerates why a response was short-circuited.
type DetectionWarningReason string

const (
	UnsuitableInput  DetectionWarningReason = "UNSUITABLE_INPUT"
	UnsuitableOutput DetectionWarningReason = "UNSUITABLE_OUTPUT"
)

const (
	unsuitableInputMessage = "Unsuitable input detected. Please check the detected entities on " +
		"your input and try again with the unsuitable input removed."
	unsuitableOutputMessage = "Unsuitable output detected."
)

// DetectionWarning always accompanies a short-circuited response.
type DetectionWarning struct {
	ID      DetectionWarningReason `json:"id,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// NewUnsuitableInputWarning builds the warning attached when input
// detection surfaces.
func NewUnsuitableInputWarning() DetectionWarning {
	return DetectionWarning{ID: UnsuitableInput, Message: unsuitableInputMessage}
}

// NewUnsuitableOutputWarning builds the warning attached when output
// detection surfaces.
func NewUnsuitableOutputWarning() DetectionWarning {
	return DetectionWarning{ID: UnsuitableOutput, Message: unsuitableOutputMessage}
}
