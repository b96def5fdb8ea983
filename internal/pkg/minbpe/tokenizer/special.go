package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// SpecialToken is a literal string bound to a reserved token id. Special
// tokens are atomic: they are matched against raw text before segmentation
// and never take part in ordinary merging.
type SpecialToken struct {
	Literal string
	ID      int
}

// specialRegistry keeps registration order, which is the order entries are
// written to the model file.
type specialRegistry struct {
	byLiteral map[string]int
	byID      map[int]string
	ordered   []SpecialToken
}

func newSpecialRegistry() *specialRegistry {
	return &specialRegistry{
		byLiteral: make(map[string]int),
		byID:      make(map[int]string),
	}
}

func (r *specialRegistry) literalOf(id int) (string, bool) {
	lit, ok := r.byID[id]
	return lit, ok
}

// RegisterSpecialTokens adds entries to the special-token registry in the
// given order. Registration fails with ErrInvalidConfig for an empty or
// duplicate literal, a duplicate id, or an id that collides with a byte id
// (0-255) or an already-assigned merge id.
func (t *Tokenizer) RegisterSpecialTokens(tokens []SpecialToken) error {
	for _, sp := range tokens {
		if sp.Literal == "" {
			return fmt.Errorf("%w: empty special token literal", ErrInvalidConfig)
		}
		// The model format stores literals on whitespace-delimited lines,
		// so any whitespace rune would break the save/load round-trip.
		if strings.ContainsFunc(sp.Literal, unicode.IsSpace) {
			return fmt.Errorf("%w: special token %q contains whitespace reserved by the model format", ErrInvalidConfig, sp.Literal)
		}
		if _, dup := t.specials.byLiteral[sp.Literal]; dup {
			return fmt.Errorf("%w: special token %q registered twice", ErrInvalidConfig, sp.Literal)
		}
		if _, dup := t.specials.byID[sp.ID]; dup {
			return fmt.Errorf("%w: special token id %d registered twice", ErrInvalidConfig, sp.ID)
		}
		if sp.ID < 256+len(t.mergeOrder) {
			return fmt.Errorf("%w: special token id %d collides with a byte or merge id", ErrInvalidConfig, sp.ID)
		}
		t.specials.byLiteral[sp.Literal] = sp.ID
		t.specials.byID[sp.ID] = sp.Literal
		t.specials.ordered = append(t.specials.ordered, sp)
	}
	return nil
}

// SpecialTokens returns the registered special tokens in registration order.
func (t *Tokenizer) SpecialTokens() []SpecialToken {
	out := make([]SpecialToken, len(t.specials.ordered))
	copy(out, t.specials.ordered)
	return out
}

type policyMode int

const (
	policyAll policyMode = iota
	policyNone
	policyNoneRaise
	policyAllowSet
)

// SpecialsPolicy controls how Encode treats registered special tokens:
// recognize all of them, none of them, none with an error if one appears in
// the text, or only an explicit allow-set.
type SpecialsPolicy struct {
	mode    policyMode
	allowed map[string]struct{}
}

// SpecialsAll recognizes every registered special token.
func SpecialsAll() SpecialsPolicy { return SpecialsPolicy{mode: policyAll} }

// SpecialsNone treats special-token literals as ordinary text.
func SpecialsNone() SpecialsPolicy { return SpecialsPolicy{mode: policyNone} }

// SpecialsNoneRaise treats special-token literals as ordinary text but makes
// Encode fail with ErrSpecialTokenInText if any registered literal appears
// in the input. This guards against accidental special-token injection.
func SpecialsNoneRaise() SpecialsPolicy { return SpecialsPolicy{mode: policyNoneRaise} }

// SpecialsAllowed recognizes only the listed literals; other registered
// special tokens are treated as ordinary text.
func SpecialsAllowed(literals ...string) SpecialsPolicy {
	allowed := make(map[string]struct{}, len(literals))
	for _, lit := range literals {
		allowed[lit] = struct{}{}
	}
	return SpecialsPolicy{mode: policyAllowSet, allowed: allowed}
}

// ParseSpecialsPolicy parses the textual policy values accepted on the
// command line: "all", "none", "none_raise", or "set:<comma-separated
// literals>". Anything else fails with ErrInvalidConfig.
func ParseSpecialsPolicy(s string) (SpecialsPolicy, error) {
	switch {
	case s == "all":
		return SpecialsAll(), nil
	case s == "none":
		return SpecialsNone(), nil
	case s == "none_raise":
		return SpecialsNoneRaise(), nil
	case strings.HasPrefix(s, "set:"):
		return SpecialsAllowed(strings.Split(strings.TrimPrefix(s, "set:"), ",")...), nil
	}
	return SpecialsPolicy{}, fmt.Errorf("%w: unrecognized special-token policy %q", ErrInvalidConfig, s)
}

// activeSpecials resolves the policy against the registry, in registration
// order. Under none_raise it scans text for every registered literal.
func (t *Tokenizer) activeSpecials(policy SpecialsPolicy, text string) ([]SpecialToken, error) {
	switch policy.mode {
	case policyAll:
		return t.specials.ordered, nil
	case policyNone:
		return nil, nil
	case policyNoneRaise:
		for _, sp := range t.specials.ordered {
			if strings.Contains(text, sp.Literal) {
				return nil, fmt.Errorf("%w: %q", ErrSpecialTokenInText, sp.Literal)
			}
		}
		return nil, nil
	case policyAllowSet:
		var active []SpecialToken
		for _, sp := range t.specials.ordered {
			if _, ok := policy.allowed[sp.Literal]; ok {
				active = append(active, sp)
			}
		}
		return active, nil
	}
	return nil, fmt.Errorf("%w: unrecognized special-token policy", ErrInvalidConfig)
}
