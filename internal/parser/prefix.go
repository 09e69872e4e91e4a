package parser

import "strings"

// canonicalize resolves a raw token against candidates by prefix-unique
// completion with a minimum match length (spec.md §4.2 rule 6, §4.10):
// an exact match always wins; otherwise the raw text must be a prefix of
// exactly one candidate, and at least minLen characters long.
func canonicalize(raw string, candidates []string, minLen int) (string, bool) {
	for _, c := range candidates {
		if c == raw {
			return c, true
		}
	}
	if len(raw) < minLen {
		return "", false
	}
	var match string
	count := 0
	for _, c := range candidates {
		if strings.HasPrefix(c, raw) {
			match = c
			count++
		}
	}
	if count == 1 {
		return match, true
	}
	return "", false
}
