package remap

import (
	"fmt"
	"io"
)

// RunReport aggregates every category's outcome for one remap run.
type RunReport struct {
	Pattern     string           `json:"pattern"`
	Replacement string           `json:"replacement"`
	DryRun      bool             `json:"dryRun,omitempty"`
	Categories  []CategoryReport `json:"categories"`
}

// Updated returns the run-wide updated count.
func (r *RunReport) Updated() int {
	n := 0
	for _, c := range r.Categories {
		n += c.Updated
	}
	return n
}

// Failed returns the run-wide failure count, counting an unenumerable
// category as one failure.
func (r *RunReport) Failed() int {
	n := 0
	for _, c := range r.Categories {
		n += len(c.Failures)
		if c.Err != "" {
			n++
		}
	}
	return n
}

// RenderText writes the human-readable run summary.
func (r *RunReport) RenderText(w io.Writer) error {
	verb := "updated"
	if r.DryRun {
		verb = "would update"
	}
	if _, err := fmt.Fprintf(w, "Remap %q -> %q\n", r.Pattern, r.Replacement); err != nil {
		return err
	}
	for _, c := range r.Categories {
		if c.Err != "" {
			fmt.Fprintf(w, "  %-16s failed: %s\n", c.Kind, c.Err)
			continue
		}
		fmt.Fprintf(w, "  %-16s %d/%d %s, %d unchanged, %d failed\n",
			c.Kind, c.Updated, c.Total, verb, c.Skipped, len(c.Failures))
		for _, f := range c.Failures {
			fmt.Fprintf(w, "    ! %s: %s\n", f.Identity, f.Reason)
		}
	}
	_, err := fmt.Fprintf(w, "Total: %d %s, %d failed\n", r.Updated(), verb, r.Failed())
	return err
}
