package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/civitgrab/civitgrab/internal/domain"
)

var (
	okColor   = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	failColor = color.New(color.FgRed).SprintFunc()
)

// Render writes the human-readable run report: per-status counts, every
// failed task with its last error, and every input line that could not
// be parsed.
func Render(w io.Writer, sum domain.Summary, parseErrs []domain.ParseError) {
	skipped, succeeded, failed := sum.Counts()

	fmt.Fprintf(w, "\n%d file(s): %s %d downloaded, %s %d skipped, %s %d failed\n",
		len(sum.Outcomes),
		okColor("✓"), succeeded,
		warnColor("-"), skipped,
		failColor("✗"), failed,
	)

	if failures := sum.Failed(); len(failures) > 0 {
		fmt.Fprintf(w, "\nfailed downloads:\n")
		for _, o := range failures {
			fmt.Fprintf(w, "  %s %s (%d attempt(s)): %s\n", failColor("✗"), o.Task.Name, o.Attempts, o.Err)
		}
	}

	if len(parseErrs) > 0 {
		fmt.Fprintf(w, "\nskipped input lines:\n")
		for _, pe := range parseErrs {
			fmt.Fprintf(w, "  %s line %d: %s (%s)\n", warnColor("!"), pe.Line, pe.Text, pe.Reason)
		}
	}
}
