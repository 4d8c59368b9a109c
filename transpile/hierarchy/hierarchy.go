// Package hierarchy decides which concrete base a streaming class inherits
// from. The decision is made once per class and carried as a tagged Base
// value; dialects only render it.
package hierarchy

import (
	"regexp"
	"strings"

	"github.com/teranos/wsgen/errors"
)

// Kind tags how a class reaches its base
type Kind int

const (
	// Direct inherits from the named streaming base as declared
	Direct Kind = iota
	// RestDerived inherits from the asynchronous edition of a REST class
	RestDerived
)

func (k Kind) String() string {
	switch k {
	case RestDerived:
		return "rest-derived"
	default:
		return "direct"
	}
}

// Base is a resolved parent reference
type Base struct {
	Kind Kind
	// Name is the parent to reference in generated code. For RestDerived it
	// is the REST class name with the marker stripped.
	Name string
	// Declared is the parent name as written in the canonical source
	Declared string
}

// DefaultRestMarker identifies parents that are REST classes
const DefaultRestMarker = "Rest"

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Resolver maps declared parent names to bases
type Resolver struct {
	marker string
	strict bool
}

// NewResolver returns a resolver for marker. With strict set, parent names
// that are not plain identifiers are rejected with ErrMalformedParent;
// otherwise they resolve as Direct bases.
func NewResolver(marker string, strict bool) *Resolver {
	if marker == "" {
		marker = DefaultRestMarker
	}
	return &Resolver{marker: marker, strict: strict}
}

// Resolve classifies parent. A parent containing the marker resolves to
// RestDerived with the first occurrence of the marker removed; anything
// else resolves to Direct.
func (r *Resolver) Resolve(parent string) (Base, error) {
	if r.strict && !identifier.MatchString(parent) {
		return Base{}, errors.Wrapf(errors.ErrMalformedParent, "%q", parent)
	}

	if strings.Contains(parent, r.marker) {
		stripped := strings.Replace(parent, r.marker, "", 1)
		if stripped != "" {
			return Base{Kind: RestDerived, Name: stripped, Declared: parent}, nil
		}
		// A parent named exactly after the marker has nothing left to
		// reference once stripped
		if r.strict {
			return Base{}, errors.Wrapf(errors.ErrMalformedParent, "%q has no name besides the marker", parent)
		}
	}

	return Base{Kind: Direct, Name: parent, Declared: parent}, nil
}
