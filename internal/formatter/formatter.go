// package formatter renders playback times, clock strings, and play queue exports (CSV, Markdown, plain text, JSON)
package formatter

import (
	"fmt"
	"time"
)

// Unknown is shown in place of a position that is not known.
const Unknown = "-:--"

const (
	dateLayout = "Mon 02 Jan 2006"
	timeLayout = "15:04"
)

// Duration formats whole seconds as m:ss. Minutes are not wrapped into hours; negative values render as 0:00.
func Duration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Elapsed formats seconds as m:ss, or [Unknown] when known is false.
func Elapsed(seconds int, known bool) string {
	if !known {
		return Unknown
	}
	return Duration(seconds)
}

// DateString renders the clock's date line, e.g. "Sat 14 Mar 2026".
func DateString(t time.Time) string {
	return t.Format(dateLayout)
}

// TimeString renders the clock's time line, e.g. "20:05".
func TimeString(t time.Time) string {
	return t.Format(timeLayout)
}
