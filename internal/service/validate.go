// Package service contains the lookup flow: handle validation, the
// per-page controller, its error banner and the session registry.
//
// THE FLOW:
//
//	Input(raw)  → validate → submit control becomes disabled or ready
//	Submit(ctx) → validate → cache hit?  → render (or "not found" banner)
//	                       → cache miss? → loading → fetch → cache → render
//
// Nothing in this package knows about HTTP. Handlers drive a Controller and
// read the page back from its render.Surface.
package service

import (
	"regexp"
	"strings"
)

// MaxHandleLength is the longest handle GitHub allows.
const MaxHandleLength = 39

// handlePattern accepts alphanumerics with single internal hyphens: no
// leading, trailing or doubled hyphen. Length is checked separately.
var handlePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Handle is the result of validating raw input.
type Handle struct {
	Normalized string
	Valid      bool
}

// Validate lowercases raw and checks it against the handle grammar.
// Empty input is invalid and normalizes to "".
func Validate(raw string) Handle {
	value := strings.ToLower(raw)
	if value == "" {
		return Handle{}
	}

	valid := len(value) <= MaxHandleLength && handlePattern.MatchString(value)
	return Handle{Normalized: value, Valid: valid}
}
