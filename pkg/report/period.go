package report

import (
	"time"

	"github.com/mao65123/logmee/pkg/state"
)

// ResolvePeriod turns a "this month" / "last month" shortcut into concrete
// dates for a client with the given closing date.
//
// A closing date of 99 means the literal calendar month. Any other value
// splits the year into billing cycles ending on that day; which cycle is
// "current" depends on whether today's day-of-month has passed the closing
// day. The cycle boundaries deliberately follow the historical behavior,
// including the wide cycle produced once today is past the closing day.
// Out-of-range closing days (e.g. 31 in April) roll over to the next month.
func ResolvePeriod(closingDate int, preset PeriodPreset, now time.Time, loc *time.Location) (time.Time, time.Time) {
	now = now.In(loc)
	year, month, day := now.Date()

	offset := 0
	if preset == PeriodLastMonth {
		offset = -1
	}

	if closingDate == state.DefaultClosingDate {
		start := time.Date(year, month+time.Month(offset), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, -1)
	}

	var start, end time.Time
	if day <= closingDate {
		start = time.Date(year, month-1+time.Month(offset), closingDate+1, 0, 0, 0, 0, loc)
		end = time.Date(year, month+time.Month(offset), closingDate, 0, 0, 0, 0, loc)
	} else {
		// Past the closing day both presets start from last month's closing:
		// "last month" is the cycle that just closed, "this month" is the
		// wide cycle running until next month's closing day.
		start = time.Date(year, month-1, closingDate+1, 0, 0, 0, 0, loc)
		end = time.Date(year, month+1+time.Month(offset), closingDate, 0, 0, 0, 0, loc)
	}
	return start, end
}
