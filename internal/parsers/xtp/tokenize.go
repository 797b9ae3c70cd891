package xtp

import (
	"strings"
	"unicode"
)

// tokenize splits a captured line on whitespace, ';', '|' and stray commas.
// A comma between two digits is kept as part of a number: it is a thousands
// separator when the number also has a decimal point, otherwise it is a
// decimal comma and is rewritten to '.'. fixed reports whether any decimal
// comma was rewritten.
func tokenize(line string) (tokens []string, fixed bool) {
	runes := []rune(line)
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsSpace(r), r == ';', r == '|':
			flush()
		case r == ',':
			if i > 0 && i+1 < len(runes) && isDigit(runes[i-1]) && isDigit(runes[i+1]) {
				if hasPointAhead(runes[i+1:]) {
					continue
				}
				b.WriteRune('.')
				fixed = true
				continue
			}
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return tokens, fixed
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// hasPointAhead reports whether the number starting at rs continues to a '.'.
func hasPointAhead(rs []rune) bool {
	for _, r := range rs {
		switch {
		case r == '.':
			return true
		case isDigit(r), r == ',':
		default:
			return false
		}
	}
	return false
}
