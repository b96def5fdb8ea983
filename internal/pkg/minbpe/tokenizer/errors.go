package tokenizer

import "errors"

// Error taxonomy for the tokenizer core. Every error returned by this
// package wraps one of these sentinels, so callers can branch with
// errors.Is.
var (
	// ErrInvalidConfig covers configuration rejected before any work is
	// done: vocab sizes below 256, unrecognized special-token policies,
	// colliding special-token ids, and mutating operations on a fixed
	// tokenizer.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSpecialTokenInText is returned by Encode under the none_raise
	// policy when a registered special token appears literally in the
	// input text.
	ErrSpecialTokenInText = errors.New("special token present in text")

	// ErrUnknownTokenID is returned by Decode for an id that is neither in
	// the vocabulary nor registered as a special token. The whole decode is
	// aborted; no placeholder is substituted.
	ErrUnknownTokenID = errors.New("unknown token id")

	// ErrInvalidFormat is returned when loading a model file whose version
	// line or structure does not match the minbpe v1 layout.
	ErrInvalidFormat = errors.New("invalid model format")
)
