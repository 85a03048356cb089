package output

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/torosent/lockbench/internal/metrics"
	"github.com/torosent/lockbench/internal/threshold"
)

var printer = message.NewPrinter(language.English)

// PrintSummary outputs the per-strategy result block followed by a blank line.
func PrintSummary(w io.Writer, s metrics.Summary) {
	fmt.Fprintf(w, "Locking method: %s\n", s.Strategy)
	fmt.Fprintf(w, "\"Real\" total execution time: %sms\n", FormatMillis(s.Wall))
	fmt.Fprintf(w, "Summed execution time of each task: %sms\n", FormatMillis(s.Sum))
	fmt.Fprintf(w, "Min execution time: %sms\n", FormatMillis(s.Min))
	fmt.Fprintf(w, "Max execution time: %sms\n", FormatMillis(s.Max))
	if s.Failures > 0 {
		fmt.Fprintf(w, "Failed tasks: %s (skipped: %s)\n", printer.Sprintf("%d", s.Failures), printer.Sprintf("%d", s.Skipped))
	}
	fmt.Fprintln(w)
}

// PrintDetails outputs percentiles and lock wait for verbose runs.
func PrintDetails(w io.Writer, s metrics.Summary) {
	fmt.Fprintln(w, "Task durations:")
	fmt.Fprintf(w, "  Mean:            %s\n", s.Mean)
	fmt.Fprintf(w, "  P50:             %s\n", s.P50)
	fmt.Fprintf(w, "  P90:             %s\n", s.P90)
	fmt.Fprintf(w, "  P99:             %s\n", s.P99)
	fmt.Fprintf(w, "  Acquire wait:    %s\n", s.WaitSum)
	fmt.Fprintln(w)
}

// FormatMillis renders d as a thousands-grouped integer count of milliseconds,
// rounded to the nearest millisecond.
func FormatMillis(d time.Duration) string {
	ms := int64(math.Round(float64(d) / float64(time.Millisecond)))
	return printer.Sprintf("%d", ms)
}

// PrintComparison renders one row per strategy.
func PrintComparison(w io.Writer, summaries []metrics.Summary) {
	if len(summaries) == 0 {
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Strategy", "Tasks", "Failed", "Wall (ms)", "Sum (ms)", "Min (ms)", "Max (ms)", "P99 (ms)", "Wait (ms)"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	for _, s := range summaries {
		table.Append([]string{
			s.Strategy,
			strconv.Itoa(s.Tasks),
			strconv.Itoa(s.Failures),
			FormatMillis(s.Wall),
			FormatMillis(s.Sum),
			FormatMillis(s.Min),
			FormatMillis(s.Max),
			FormatMillis(s.P99),
			FormatMillis(s.WaitSum),
		})
	}
	table.Render()
}

// PrintThresholds lists threshold outcomes grouped by strategy.
func PrintThresholds(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w, "Thresholds:")
	current := ""
	for _, r := range results {
		if r.Strategy != current {
			current = r.Strategy
			fmt.Fprintf(w, "  %s\n", current)
		}
		fmt.Fprintf(w, "    %s\n", r.Message)
	}
	fmt.Fprintln(w)
}
