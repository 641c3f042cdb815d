package utils

import (
	"strings"
	"unicode"
)

// NormalizeApplicantName trims the name, collapses internal whitespace runs
// to a single space, and title-cases each space-delimited token. Tokens are
// split on spaces only, so a hyphenated token is title-cased as one word:
// "maria-santos" becomes "Maria-santos". Empty input is returned unchanged.
func NormalizeApplicantName(name string) string {
	if name == "" {
		return name
	}

	words := strings.Fields(name)
	for i, word := range words {
		words[i] = titleCaseWord(word)
	}

	return strings.Join(words, " ")
}

func titleCaseWord(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}

	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}

// NormalizeEmail trims and lowercases the address. Empty input maps to nil.
func NormalizeEmail(email string) *string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil
	}
	return &normalized
}

// NormalizePhone strips everything except digits and a leading "+", then
// applies heuristic country-code insertion for bare-digit numbers:
// 10 digits are assumed North American (+1), 11 digits starting with 1 get a
// "+", 12 digits starting with 91 are assumed Indian (+91). Anything else is
// left digits-only and will fail E.164 validation downstream. The heuristic
// cannot distinguish other countries' numbers of the same length; that is a
// documented limitation. Empty input maps to nil.
func NormalizePhone(phone string) *string {
	if phone == "" {
		return nil
	}

	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	if normalized == "" {
		return nil
	}

	if normalized[0] != '+' {
		switch {
		case len(normalized) == 10:
			normalized = "+1" + normalized
		case len(normalized) == 11 && strings.HasPrefix(normalized, "1"):
			normalized = "+" + normalized
		case len(normalized) == 12 && strings.HasPrefix(normalized, "91"):
			normalized = "+" + normalized
		}
	}

	return &normalized
}
