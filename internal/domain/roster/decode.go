package roster

import (
	"fmt"
	"math"
	"time"
)

const (
	secondsPerDay = 86400
	msPerDay      = secondsPerDay * 1000
	// Largest instant offset a spreadsheet date can sensibly carry (±100M days).
	maxSerialMs = 8.64e15
)

// Spreadsheet day zero. The 1900 leap-year quirk is baked into this epoch and
// stored schedules rely on it, so serials are not corrected.
var sheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// DecodeDate turns a spreadsheet date serial into YYYY-MM-DD using UTC
// calendar fields. Empty, zero, negative or non-numeric cells yield "".
func DecodeDate(c Cell) string {
	serial, ok := c.serial()
	if !ok || serial < 0 {
		return ""
	}
	ms := math.Trunc(serial * msPerDay)
	if ms > maxSerialMs {
		return ""
	}
	days := math.Floor(ms / msPerDay)
	rest := ms - days*msPerDay
	instant := sheetEpoch.AddDate(0, 0, int(days)).Add(time.Duration(rest) * time.Millisecond)
	return instant.Format("2006-01-02")
}

// DecodeTime turns a fraction of a day into HH:MM. Seconds are rounded first
// and then dropped, so 0.5 is "12:00". Fractions just under a day stay on
// 23:59; values of a day or more are not wrapped.
func DecodeTime(c Cell) string {
	fraction, ok := c.serial()
	if !ok || fraction < 0 {
		return ""
	}
	total := int64(math.Floor(fraction*secondsPerDay + 0.5))
	if fraction < 1 && total >= secondsPerDay {
		total = secondsPerDay - 1
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
