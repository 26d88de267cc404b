package types

// GenerationParams controls a generation backend call. Validation of
// individual fields is left to the downstream generation server.
type GenerationParams struct {
	MaxNewTokens                   *int                            `json:"max_new_tokens,omitempty"`
	MinNewTokens                   *int                             `json:"min_new_tokens,omitempty"`
	TruncateInputTokens            *int                             `json:"truncate_input_tokens,omitempty"`
	DecodingMethod                 *string                          `json:"decoding_method,omitempty"`
	TopK                           *int                             `json:"top_k,omitempty"`
	TopP                           *float64                         `json:"top_p,omitempty"`
	TypicalP                       *float64                         `json:"typical_p,omitempty"`
	Temperature                    *float64                         `json:"temperature,omitempty"`
	RepetitionPenalty              *float64                         `json:"repetition_penalty,omitempty"`
	MaxTime                        *float64                         `json:"max_time,omitempty"`
	ExponentialDecayLengthPenalty  *ExponentialDecayLengthPenalty   `json:"exponential_decay_length_penalty,omitempty"`
	StopSequences                  []string                         `json:"stop_sequences,omitempty"`
	Seed                           *int                             `json:"seed,omitempty"`
	PreserveInputText               *bool                           `json:"preserve_input_text,omitempty"`
	InputTokens                    *bool                            `json:"input_tokens,omitempty"`
	GeneratedTokens                *bool                            `json:"generated_tokens,omitempty"`
	TokenLogprobs                  *bool                            `json:"token_logprobs,omitempty"`
	TokenRanks                     *bool                            `json:"token_ranks,omitempty"`
	IncludeStopSequence            *bool                            `json:"include_stop_sequence,omitempty"`
}

// ExponentialDecayLengthPenalty exponentially increases the likelihood
// of generation terminating once StartIndex tokens have been produced.
type ExponentialDecayLengthPenalty struct {
	StartIndex  *int     `json:"start_index,omitempty"`
	DecayFactor *float64 `json:"decay_factor,omitempty"`
}
