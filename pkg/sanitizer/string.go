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

// Text trims s and collapses inner whitespace runs to one space.
func Text(s string) string {
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
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

func Email(s string) string {
	return Pipeline{strings.TrimSpace, strings.ToLower}.Apply(s)
}

// Label is Text lowercased, used for service tags and equipment capabilities.
func Label(s string) string {
	return Pipeline{Text, strings.ToLower}.Apply(s)
}

// FileName strips any directory part and path separators from an uploaded name.
func FileName(s string) string {
	s = Text(s)
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimLeft(s, ".")
	return strings.TrimSpace(s)
}

func Clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
