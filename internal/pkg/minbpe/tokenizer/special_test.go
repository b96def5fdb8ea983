package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterSpecialTokens(t *testing.T) {
	tok := New()
	require.NoError(t, tok.RegisterSpecialTokens([]SpecialToken{
		{Literal: "<|endoftext|>", ID: 1000},
		{Literal: "<|pad|>", ID: 1001},
	}))

	got := tok.SpecialTokens()
	require.Len(t, got, 2)
	assert.Equal(t, "<|endoftext|>", got[0].Literal)
	assert.Equal(t, 1001, got[1].ID)
}

func TestRegisterSpecialTokensValidation(t *testing.T) {
	cases := []struct {
		name   string
		tokens []SpecialToken
	}{
		{"empty literal", []SpecialToken{{Literal: "", ID: 1000}}},
		{"space in literal", []SpecialToken{{Literal: "<|end of text|>", ID: 1000}}},
		{"newline in literal", []SpecialToken{{Literal: "<|end\n|>", ID: 1000}}},
		{"tab in literal", []SpecialToken{{Literal: "<|a\tb|>", ID: 1000}}},
		{"carriage return in literal", []SpecialToken{{Literal: "<|a\rb|>", ID: 1000}}},
		{"nbsp in literal", []SpecialToken{{Literal: "<|a\u00a0b|>", ID: 1000}}},
		{"duplicate literal", []SpecialToken{{Literal: "<|a|>", ID: 1000}, {Literal: "<|a|>", ID: 1001}}},
		{"duplicate id", []SpecialToken{{Literal: "<|a|>", ID: 1000}, {Literal: "<|b|>", ID: 1000}}},
		{"byte id", []SpecialToken{{Literal: "<|a|>", ID: 97}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := New().RegisterSpecialTokens(tc.tokens)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRegisterSpecialTokenMergeIDCollision(t *testing.T) {
	tok := New()
	require.NoError(t, tok.Train("aaabdaaabac", 259, nil))

	// Merge ids 256-258 are taken.
	err := tok.RegisterSpecialTokens([]SpecialToken{{Literal: "<|x|>", ID: 257}})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.NoError(t, tok.RegisterSpecialTokens([]SpecialToken{{Literal: "<|x|>", ID: 259}}))
}

func TestSpecialTokensReturnsCopy(t *testing.T) {
	tok := New()
	require.NoError(t, tok.RegisterSpecialTokens([]SpecialToken{{Literal: "<|a|>", ID: 1000}}))
	got := tok.SpecialTokens()
	got[0].Literal = "mutated"
	assert.Equal(t, "<|a|>", tok.SpecialTokens()[0].Literal)
}
