package util

import (
	"sort"
	"strings"
)

// UnCamelCase converts camelCase or PascalCase to snake_case, the convention
// of the Python and PHP editions. Acronyms stay together
// ("fetchOHLCV" -> "fetch_ohlcv") and dots become underscores
// ("test.Cache" -> "test_cache").
func UnCamelCase(s string) string {
	return strings.ReplaceAll(splitWords(s, '_'), ".", "_")
}

// Kebab converts camelCase to kebab-case ("testWatchTrades" -> "test-watch-trades").
// Dots become hyphens.
func Kebab(s string) string {
	return strings.ReplaceAll(splitWords(s, '-'), ".", "-")
}

// splitWords lowercases s, inserting sep before each word boundary
func splitWords(s string, sep rune) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if i > 0 && r >= 'A' && r <= 'Z' {
			// Don't split inside an acronym unless the next char starts a word
			prevUpper := runes[i-1] >= 'A' && runes[i-1] <= 'Z'
			prevSep := runes[i-1] == '.' || runes[i-1] == sep
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'

			if !prevSep && (!prevUpper || nextLower) {
				result.WriteRune(sep)
			}
		}

		result.WriteRune(r)
	}

	return strings.ToLower(result.String())
}

// Unique returns values without duplicates, keeping first occurrences in order
func Unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// SortedUnique deduplicates then sorts lexicographically
func SortedUnique(values []string) []string {
	out := Unique(values)
	sort.Strings(out)
	return out
}
