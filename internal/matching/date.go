package matching

import "time"

const millisPerDay = 24 * 60 * 60 * 1000

// DateWithinRange reports whether the gap between a submission timestamp
// and an external posting timestamp is at most maxDaysApart days. The gap
// is measured as the exact millisecond difference converted to fractional
// days, so clock skew of a few hours does not flip the result at the
// boundary.
func DateWithinRange(submitted, posted time.Time, maxDaysApart int) bool {
	diff := posted.Sub(submitted)
	if diff < 0 {
		diff = -diff
	}

	days := float64(diff.Milliseconds()) / float64(millisPerDay)
	return days <= float64(maxDaysApart)
}
