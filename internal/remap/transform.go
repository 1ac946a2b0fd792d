package remap

import "strings"

// Transform is a case-insensitive literal path substitution, folded once at
// construction and applied to any number of paths.
type Transform struct {
	pattern     string
	replacement string
}

// NewTransform folds pattern and replacement to lowercase. Folding happens
// here exactly once per run, not per path.
func NewTransform(pattern, replacement string) Transform {
	return Transform{
		pattern:     strings.ToLower(pattern),
		replacement: strings.ToLower(replacement),
	}
}

// Result is the outcome of transforming one recorded path.
type Result struct {
	Original string `json:"original"`
	Proposed string `json:"proposed"`
	Changed  bool   `json:"changed"`
}

// Apply replaces every occurrence of the pattern within original, matching
// case-insensitively. It performs no validation of the proposed path and has
// no side effects; Changed holds iff the folded original differs from the
// proposal.
func (t Transform) Apply(original string) Result {
	folded := strings.ToLower(original)
	proposed := strings.ReplaceAll(folded, t.pattern, t.replacement)
	return Result{
		Original: original,
		Proposed: proposed,
		Changed:  proposed != folded,
	}
}
