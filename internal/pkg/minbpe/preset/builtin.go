package preset

import "minbpe/internal/pkg/minbpe/tokenizer"

// Built-in presets:
//
//	basic — byte-only, no pre-splitting; merges may cross any boundary.
//	gpt2  — GPT-2 pre-tokenization pattern.
//	gpt4  — cl100k_base pre-tokenization pattern.
func init() {
	Register("basic", func() (*tokenizer.Tokenizer, error) {
		return tokenizer.New(), nil
	})
	Register("gpt2", func() (*tokenizer.Tokenizer, error) {
		return tokenizer.NewWithPattern(tokenizer.GPT2SplitPattern)
	})
	Register("gpt4", func() (*tokenizer.Tokenizer, error) {
		return tokenizer.NewWithPattern(tokenizer.GPT4SplitPattern)
	})
}
