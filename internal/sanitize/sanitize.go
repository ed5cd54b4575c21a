// Package sanitize strips a fixed set of dangerous characters from
// free-text request fields before they reach application logic.
//
// This is a defense-in-depth filter, not an escaping layer: callers
// rendering the output into HTML or any other context must still apply
// context-aware encoding.
package sanitize

import "strings"

// DefaultDenylist is the set of characters removed from input fields:
// HTML markup delimiters, quotes, ampersand, NUL and line breaks.
var DefaultDenylist = []string{"<", ">", `"`, "'", "&", "\x00", "\r", "\n"}

// Sanitizer removes every occurrence of each denylisted character and
// trims surrounding whitespace. Safe for concurrent use.
type Sanitizer struct {
	denylist []string
	onClean  func()
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithCleanHook registers a callback invoked once per Clean call,
// typically to feed a counter.
func WithCleanHook(hook func()) Option {
	return func(s *Sanitizer) {
		s.onClean = hook
	}
}

// New creates a Sanitizer with a custom denylist. An empty denylist
// falls back to DefaultDenylist.
func New(denylist []string, opts ...Option) *Sanitizer {
	if len(denylist) == 0 {
		denylist = DefaultDenylist
	}
	s := &Sanitizer{denylist: denylist}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default returns a Sanitizer using DefaultDenylist.
func Default() *Sanitizer {
	return New(nil)
}

// Clean returns s with all denylisted characters removed and
// leading/trailing whitespace trimmed. Empty input yields "".
func (s *Sanitizer) Clean(input string) string {
	if s.onClean != nil {
		s.onClean()
	}
	if input == "" {
		return ""
	}
	for _, c := range s.denylist {
		input = strings.ReplaceAll(input, c, "")
	}
	return strings.TrimSpace(input)
}

// Clean applies the default denylist to input.
func Clean(input string) string {
	return Default().Clean(input)
}
