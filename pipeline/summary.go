package pipeline

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Failures returns the failed outcomes.
func Failures(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	return failed
}

// WriteSummary writes one aligned line per failure: profiles, subreddit, error.
// Nothing is written when the pass had no failures.
func WriteSummary(w io.Writer, outcomes []Outcome) error {
	failed := Failures(outcomes)
	if len(failed) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%d downloads failed:\n", len(failed))
	for _, o := range failed {
		profiles := "-"
		if p := o.Profiles(); len(p) > 0 {
			profiles = strings.Join(p, ",")
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\n", profiles, o.Subreddit, o.Err)
	}
	return tw.Flush()
}
