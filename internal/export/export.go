// Package export renders exercise summaries as downloadable CSV.
package export

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/meltforce/traintrack/internal/models"
	"github.com/meltforce/traintrack/internal/tracker"
)

// Header is the first line of every summary export.
const Header = "Exercise,Sessions,Last Sets,Last Reps,Last Weight (kg),Last Duration (s),Best Sets,Best Reps,Best Weight (kg),Best Duration (s)"

// ErrNoData is returned when there is no summary to export.
var ErrNoData = errors.New("no data to export")

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SummaryCSV writes the header and one row per summary. The exercise name is
// always quoted; zero values are left blank.
func SummaryCSV(w io.Writer, summaries []tracker.ExerciseSummary) error {
	if len(summaries) == 0 {
		return ErrNoData
	}

	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, s := range summaries {
		fields := []string{
			quote(s.Name),
			fmt.Sprint(s.Count),
			number(s.Latest.Sets),
			number(s.Latest.Reps),
			number(s.Latest.Weight),
			number(s.Latest.Duration),
			number(s.Best.Sets),
			number(s.Best.Reps),
			number(s.Best.Weight),
			number(s.Best.Duration),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// FileName returns "<client>_summary_<YYYY-MM-DD>.csv" with every character
// of the client name outside [A-Za-z0-9] replaced by "_".
func FileName(clientName string, day time.Time) string {
	return unsafeFileChars.ReplaceAllString(clientName, "_") + "_summary_" + day.Format(time.DateOnly) + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func number(v float64) string {
	if v == 0 {
		return ""
	}
	return models.FormatNumber(v)
}
