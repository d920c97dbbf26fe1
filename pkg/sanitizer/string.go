package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if unicode.IsPrint(r) {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return Pipeline{strings.TrimSpace, strings.ToLower}.Apply(email)
}

func NormalizeReferenceCode(code string) string {
	return Pipeline{strings.TrimSpace, strings.ToUpper}.Apply(code)
}

// NormalizeIdentifier trims opaque identifiers such as hotel and staff ids.
func NormalizeIdentifier(id string) string {
	return strings.TrimSpace(id)
}
