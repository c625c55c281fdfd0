package content

import (
	"fmt"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

const CensorRune = '*'

// Moderator masks configured words in plain text. Matching ignores case,
// punctuation and spacing, so "D.a.R.n" matches "darn"; the masked span covers
// the original characters including the noise between them.
type Moderator struct {
	matcher *goahocorasick.Machine
}

func NewModerator(words []string) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		normalized, _ := normalize(strings.TrimSpace(word))
		if len(normalized) > 0 {
			patterns = append(patterns, normalized)
		}
	}
	if len(patterns) == 0 {
		return &Moderator{}, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("building censor automaton: %w", err)
	}
	return &Moderator{matcher: m}, nil
}

func (m *Moderator) Enabled() bool {
	return m != nil && m.matcher != nil
}

func (m *Moderator) Censor(text string) string {
	if !m.Enabled() {
		return text
	}

	normalized, origIdx := normalize(text)
	if len(normalized) == 0 {
		return text
	}
	terms := m.matcher.MultiPatternSearch(normalized, false)
	if len(terms) == 0 {
		return text
	}

	runes := []rune(text)
	for _, term := range terms {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[term.Pos]; i <= origIdx[end-1]; i++ {
			runes[i] = CensorRune
		}
	}
	return string(runes)
}

// normalize lowercases and drops noise runes, returning for each kept rune its
// index in the original text.
func normalize(text string) ([]rune, []int) {
	runes := []rune(text)
	out := make([]rune, 0, len(runes))
	idx := make([]int, 0, len(runes))
	for i, r := range runes {
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
		idx = append(idx, i)
	}
	return out, idx
}
