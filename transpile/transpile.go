// Package transpile regenerates the Python, PHP and JavaScript editions of a
// family of streaming classes from their canonical TypeScript sources.
//
// The root package holds the data model shared by every stage: targets,
// units, engine results, generated files and the per-language Dialect
// contract. Stages live in subpackages (hierarchy, imports, header,
// typesurface, testgen) and are sequenced by the orchestrator.
package transpile

import (
	"sort"
	"strings"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/transpile/hierarchy"
)

// Target is a target language tag
type Target string

const (
	Python Target = "python"
	PHP    Target = "php"
	JS     Target = "js"
)

// AllTargets lists the target languages in generation order
var AllTargets = []Target{Python, PHP, JS}

// ParseTarget validates a target tag, accepting common short forms
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "python", "py":
		return Python, nil
	case "php":
		return PHP, nil
	case "js", "javascript":
		return JS, nil
	default:
		return "", errors.NewInvalidRequestError("unknown target %q (supported: python, php, js)", s)
	}
}

// Family names a group of helper symbols whose imports are synthesized
type Family string

const (
	// FamilyCache covers the ArrayCache* containers used to buffer streamed records
	FamilyCache Family = "cache"
	// FamilyOrderBookSide covers Asks/Bids, one side of a live order book
	FamilyOrderBookSide Family = "order_book_side"
)

// Unit is a single class to generate in every target language
type Unit struct {
	// ID is the canonical identifier; it is also the class name and the
	// base name of every source and output file
	ID string
	// Source is the canonical TypeScript file
	Source string
	// Outputs maps each target to its output path
	Outputs map[Target]string
}

// Transformed is what the transform engine returns for one source file and
// one target: the declared class and its member text, without any header.
type Transformed struct {
	ClassName string
	Parent    string
	Body      string
}

// Dialect captures everything that differs between target languages.
// Decisions (which base, which symbols) are made once by the stages; a
// Dialect only renders them.
type Dialect interface {
	Target() Target
	// Extension is the file extension without the dot
	Extension() string
	// CommentPrefix starts a line comment
	CommentPrefix() string
	// Pragma lines open the file (encoding declaration, <?php); may be nil
	Pragma() []string
	// Namespace lines follow the notice; may be nil
	Namespace() []string
	// FixedImports are emitted before any resolved or synthesized import
	FixedImports() []string

	// ClassImports resolves the parent reference of a class
	ClassImports(base hierarchy.Base) []string
	// ClassDeclaration opens the class body
	ClassDeclaration(className string, base hierarchy.Base) string
	// ClassFooter closes the class body; may be empty
	ClassFooter() string
	// ImportStatement renders one import for a family; symbols arrive sorted
	ImportStatement(family Family, symbols []string) string

	// TestFileName maps a canonical test name (e.g. "testWatchTrades",
	// "test.Cache") to this target's file name
	TestFileName(canonical string) string
	// TestPreamble returns the lines injected after the header of a base
	// test (e.g. "Cache"); nil when the target needs none
	TestPreamble(baseTest string) []string
}

// Dialects maps targets to their dialect
type Dialects map[Target]Dialect

// NewDialects indexes dialects by target
func NewDialects(ds ...Dialect) Dialects {
	out := make(Dialects, len(ds))
	for _, d := range ds {
		out[d.Target()] = d
	}
	return out
}

// Get returns the dialect for target or an error naming it
func (d Dialects) Get(target Target) (Dialect, error) {
	dialect, ok := d[target]
	if !ok {
		return nil, errors.NewNotFoundError("no dialect registered for target %s", target)
	}
	return dialect, nil
}

// Targets returns the registered targets in AllTargets order
func (d Dialects) Targets() []Target {
	targets := make([]Target, 0, len(d))
	for _, t := range AllTargets {
		if _, ok := d[t]; ok {
			targets = append(targets, t)
		}
	}
	// Targets outside AllTargets (tests register fakes) go last, sorted
	var extra []string
	for t := range d {
		if !isKnown(t) {
			extra = append(extra, string(t))
		}
	}
	sort.Strings(extra)
	for _, t := range extra {
		targets = append(targets, Target(t))
	}
	return targets
}

func isKnown(t Target) bool {
	for _, k := range AllTargets {
		if k == t {
			return true
		}
	}
	return false
}
