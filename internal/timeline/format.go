package timeline

import (
	"fmt"
	"time"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatTime renders a timestamp as a 12-hour clock string with AM/PM
// and zero-padded minutes, e.g. "9:05 AM".
func FormatTime(t time.Time) string {
	return t.Format("3:04 PM")
}

// FormatDaySeparator renders the label for a day boundary. The
// comparison is by calendar date, not elapsed duration: a message from
// one hour ago that crossed midnight is still "Today" for that date's
// separator, and 23 hours ago on the previous date is "Yesterday".
func FormatDaySeparator(t, now time.Time) string {
	if sameDay(t, now) {
		return "Today"
	}
	if sameDay(t, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return fmt.Sprintf("%s %d, %d", monthNames[t.Month()-1], t.Day(), t.Year())
}

// FormatFileSize renders a byte count for display: whole bytes under
// 1 KB, one decimal place above.
func FormatFileSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
