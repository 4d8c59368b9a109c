// Package imports synthesizes import statements for helper symbols that a
// generated class body uses.
//
// Detection is a textual scan of the generated body, not semantic analysis:
// a symbol referenced only through indirection (a variable holding the
// class, a dynamic lookup) is missed.
package imports

import (
	"regexp"
	"sort"
	"strings"

	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/util"
)

// Detector binds a symbol family to the pattern that detects it
type Detector struct {
	Family  transpile.Family
	Pattern *regexp.Regexp
	// Symbol extracts the symbol name from one match (full match first,
	// then submatches)
	Symbol func(match []string) string
}

// Detectors are the recognized families, in scan order
var Detectors = []Detector{
	{
		Family:  transpile.FamilyCache,
		Pattern: regexp.MustCompile(`\bArrayCache(?:[A-Z][A-Za-z]+)?\b`),
		Symbol:  func(m []string) string { return m[0] },
	},
	{
		// Call-shaped so that prose or attribute names such as "asks" or
		// "self.bids" do not count
		Family:  transpile.FamilyOrderBookSide,
		Pattern: regexp.MustCompile(`\s(Asks|Bids)\(.*\)`),
		Symbol:  func(m []string) string { return m[1] },
	},
}

// Symbols returns, per family, the sorted and deduplicated symbols that
// occur in body. Families without matches are absent.
func Symbols(body string) map[transpile.Family][]string {
	found := make(map[transpile.Family][]string)
	for _, det := range Detectors {
		matches := det.Pattern.FindAllStringSubmatch(body, -1)
		if len(matches) == 0 {
			continue
		}
		names := make([]string, 0, len(matches))
		for _, m := range matches {
			names = append(names, det.Symbol(m))
		}
		found[det.Family] = util.SortedUnique(names)
	}
	return found
}

// Synthesize returns one import statement per referenced family, rendered by
// the dialect and sorted, so that unchanged bodies regenerate byte for byte.
func Synthesize(body string, d transpile.Dialect) []string {
	found := Symbols(body)

	statements := make([]string, 0, len(found))
	for _, det := range Detectors {
		symbols, ok := found[det.Family]
		if !ok {
			continue
		}
		if stmt := d.ImportStatement(det.Family, symbols); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	sort.Strings(statements)
	return statements
}

// Merge concatenates import groups, dropping blanks and repeats while
// keeping the first occurrence order
func Merge(groups ...[]string) []string {
	var all []string
	for _, g := range groups {
		for _, line := range g {
			if strings.TrimSpace(line) != "" {
				all = append(all, line)
			}
		}
	}
	return util.Unique(all)
}
