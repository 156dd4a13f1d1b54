// Package moderation redacts forbidden words from message text before it is
// persisted or delivered. Matching is accent/leet tolerant: the input is
// normalized for the automaton while original rune positions are kept so
// only the offending characters get replaced.
package moderation

import (
	"bufio"
	"bytes"
	_ "embed"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

//go:embed censored/words.txt
var embeddedWords []byte

type Filter struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// DefaultWords returns the embedded censored word list, one word per line,
// '#' starting a comment.
func DefaultWords() []string {
	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(embeddedWords))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words
}

// NewFilter builds the Aho-Corasick automaton over the normalized word list.
func NewFilter(words []string, replacement rune) (*Filter, error) {
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = normalize([]rune(word), nil)
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{matcher: machine, replacement: replacement}, nil
}

// Redact replaces the characters of every forbidden match with the
// replacement rune, preserving spacing and untouched text.
func (f *Filter) Redact(original string) string {
	origRunes := []rune(original)
	var origIdx []int
	normalized := normalize(origRunes, &origIdx)
	if len(normalized) == 0 {
		return original
	}

	spans := f.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return original
	}

	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = f.replacement
		}
	}
	return string(origRunes)
}

// normalize lowercases, folds common leet substitutions, and strips
// punctuation/whitespace. When idx is non-nil it records, for every kept
// rune, its position in the input.
func normalize(input []rune, idx *[]int) []rune {
	out := make([]rune, 0, len(input))
	for i, r := range input {
		clean := foldLeet(r)
		if unicode.IsPunct(clean) || unicode.IsSpace(clean) || unicode.IsSymbol(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
		if idx != nil {
			*idx = append(*idx, i)
		}
	}
	return out
}

func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
