// Package filter describes tag pre-filters for collection searches.
package filter

import (
	"errors"
	"fmt"
	"slices"
)

// MaxTerms caps the terms of one expression.
const MaxTerms = 16

// Term matches one tag field exactly. A negated term excludes the hashes it matches.
type Term struct {
	Field   string
	Value   string
	Negated bool
}

// Expression is a conjunction of terms. The zero value matches every document.
type Expression struct {
	terms []Term
}

// Tag returns an expression requiring field == value.
func Tag(field, value string) Expression {
	return Expression{}.And(field, value)
}

// And adds a required match.
func (e Expression) And(field, value string) Expression {
	return e.with(Term{Field: field, Value: value})
}

// Not adds an excluded match.
func (e Expression) Not(field, value string) Expression {
	return e.with(Term{Field: field, Value: value, Negated: true})
}

// with copies so expressions derived from a shared base never alias.
func (e Expression) with(t Term) Expression {
	terms := make([]Term, len(e.terms), len(e.terms)+1)
	copy(terms, e.terms)
	return Expression{terms: append(terms, t)}
}

// Terms returns a copy of the terms in insertion order.
func (e Expression) Terms() []Term { return slices.Clone(e.terms) }

// Value returns the value required for field, if a positive term names it.
func (e Expression) Value(field string) (string, bool) {
	for _, t := range e.terms {
		if t.Field == field && !t.Negated {
			return t.Value, true
		}
	}
	return "", false
}

// IsEmpty reports whether the expression has no terms.
func (e Expression) IsEmpty() bool { return len(e.terms) == 0 }

// Validate reports every malformed term at once.
func (e Expression) Validate() error {
	var errs []error
	if len(e.terms) > MaxTerms {
		errs = append(errs, fmt.Errorf("filter has %d terms (max %d)", len(e.terms), MaxTerms))
	}
	for i, t := range e.terms {
		switch {
		case t.Field == "":
			errs = append(errs, fmt.Errorf("filter term %d: field is required", i))
		case t.Value == "":
			errs = append(errs, fmt.Errorf("filter term %d: value is required for %q", i, t.Field))
		}
	}
	return errors.Join(errs...)
}
