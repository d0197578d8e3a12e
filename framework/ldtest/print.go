package ldtest

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// PrintResults writes a summary of a test run: one block per failed test with its errors,
// followed by the overall counts.
func PrintResults(out io.Writer, results Results) {
	passed, failed, skipped := results.Counts()

	if len(results.Failures) > 0 {
		color.New(color.FgRed, color.Bold).Fprintln(out, "FAILED TESTS:")
		for _, f := range results.Failures {
			fmt.Fprintf(out, "  %s\n", f.TestID)
			for _, err := range f.Errors {
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintf(out, "      %s\n", line)
				}
			}
		}
		fmt.Fprintln(out)
	}

	summary := fmt.Sprintf("%d passed, %d failed, %d skipped", passed, failed, skipped)
	if results.OK() {
		color.New(color.FgGreen).Fprintf(out, "All tests passed (%s)\n", summary)
	} else {
		color.New(color.FgRed).Fprintf(out, "Some tests failed (%s)\n", summary)
	}
}
