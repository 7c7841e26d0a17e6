// Package classifier decides whether a user prompt asks for writing that
// could be handed in as coursework (essays, introductions, outlines, ...).
//
// Classification is pure and synchronous, and errs toward refusal.
package classifier

import "regexp"

// Verdict is the outcome of classifying a prompt.
type Verdict int

const (
	// Allowed means the prompt can be served.
	Allowed Verdict = iota

	// Disallowed means the prompt requests writing assistance.
	Disallowed
)

// String returns the lowercase verdict name.
func (v Verdict) String() string {
	if v == Disallowed {
		return "disallowed"
	}
	return "allowed"
}

const documentNouns = `(?:introduction|intro|conclusion|essay|paper|thesis|paragraph|outline|statement|argument|overview|abstract|report|body)`

// The write trigger looks for a document noun later in the same sentence.
var triggers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bwrite\b[^.?!\n]{0,60}?\b` + documentNouns + `s?\b`),
	regexp.MustCompile(`(?i)\bdraft(?:s|ed|ing)?\b`),
	regexp.MustCompile(`(?i)\bcompos(?:e|ing)\b`),
	regexp.MustCompile(`(?i)\bmake\s+an?\s+argument\b`),
	regexp.MustCompile(`(?i)\bprovide\s+an?\s+overview\b`),
}

// Classify inspects text for writing-assistance intent.
func Classify(text string) Verdict {
	for _, re := range triggers {
		if re.MatchString(text) {
			return Disallowed
		}
	}
	return Allowed
}

// IsDisallowed is shorthand for Classify(text) == Disallowed.
func IsDisallowed(text string) bool {
	return Classify(text) == Disallowed
}
