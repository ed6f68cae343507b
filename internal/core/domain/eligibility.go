package domain

import "time"

const MinimumMonthsForCreditEligibility = 6

// WholeMonthsBetween counts the complete calendar months from start to end.
// It returns 0 when end precedes start.
func WholeMonthsBetween(start, end time.Time) int {
	start = start.UTC()
	end = end.UTC()

	if end.Before(start) {
		return 0
	}

	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())

	if end.Day() < start.Day() || (end.Day() == start.Day() && timeOfDay(end) < timeOfDay(start)) {
		months--
	}

	return months
}

// IsCreditEligible applies the enrollment-age rule: at least six whole months since creation.
func IsCreditEligible(dateCreation, now time.Time) bool {
	return WholeMonthsBetween(dateCreation, now) >= MinimumMonthsForCreditEligibility
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}
