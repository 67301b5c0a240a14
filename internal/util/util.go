// Package util provides small string helpers shared by the CLI and handlers.
package util

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote is returned by SplitArgs for an unclosed quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArgs trims surrounding quotes and unescapes doubled quotes in place.
func CleanArgs(args []string) []string {
	for i, v := range args {
		args[i] = FixEscapeQuotes(TrimQuotes(v))
	}
	return args
}

// SplitArgs splits a command line into words.
//
// Words are separated by whitespace. Single or double quotes group a word
// that contains spaces; inside double quotes "" stands for one quote. A #
// at the start of a word comments out the rest of the line.
func SplitArgs(line string) ([]string, error) {
	var (
		words  []string
		cur    strings.Builder
		inWord bool
		quote  rune
		runes  = []rune(line)
	)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case quote != 0:
			if r != quote {
				cur.WriteRune(r)
				continue
			}
			if quote == '"' && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
				continue
			}
			quote = 0

		case r == '"' || r == '\'':
			quote = r
			inWord = true

		case unicode.IsSpace(r):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}

		case r == '#' && !inWord:
			return words, nil

		default:
			cur.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
