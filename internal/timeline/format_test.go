package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"morning", time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC), "9:05 AM"},
		{"afternoon", time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC), "2:30 PM"},
		{"midnight", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), "12:00 AM"},
		{"noon", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), "12:00 PM"},
		{"last minute", time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC), "11:59 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTime(tt.in))
		})
	}
}

func TestFormatDaySeparator(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 0, 30, 0, 0, time.UTC)

	t.Run("today regardless of hour", func(t *testing.T) {
		assert.Equal(t, "Today", FormatDaySeparator(time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC), now))
		assert.Equal(t, "Today", FormatDaySeparator(time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC), now))
	})

	t.Run("yesterday by calendar date not elapsed time", func(t *testing.T) {
		// 90 minutes ago but on the previous calendar date.
		assert.Equal(t, "Yesterday", FormatDaySeparator(time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), now))
	})

	t.Run("long form for older dates", func(t *testing.T) {
		assert.Equal(t, "March 8, 2025", FormatDaySeparator(time.Date(2025, 3, 8, 12, 0, 0, 0, time.UTC), now))
		assert.Equal(t, "December 31, 2024", FormatDaySeparator(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), now))
	})

	t.Run("yesterday across month boundary", func(t *testing.T) {
		firstOfMonth := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, "Yesterday", FormatDaySeparator(time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC), firstOfMonth))
	})
}

func TestFormatFileSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{2048, "2.0 KB"},
		{1024*1024 - 1, "1024.0 KB"},
		{1024 * 1024, "1.0 MB"},
		{5_000_000, "4.8 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.bytes), "bytes=%d", tt.bytes)
	}
}
