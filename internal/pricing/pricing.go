// Package pricing computes booking quotes from a weekday/weekend rate table.
// Quotes are charged per calendar day, inclusive of both the start and end
// dates: a booking from 23:00 to 01:00 the next day charges two full days.
package pricing

import (
	"time"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
)

// Quote returns the total price in currency minor units for the window
// [start, end]. It is a pure function: the same two dates and rate table
// always produce the same amount.
func Quote(start, end time.Time, rates domain.Pricing) (int32, error) {
	if err := rates.Validate(); err != nil {
		return 0, err
	}
	day := truncateToDate(start)
	last := truncateToDate(end.In(start.Location()))
	if last.Before(day) {
		return 0, apperror.Validation("end date must not be before start date")
	}

	var total int32
	for !day.After(last) {
		if isWeekend(day.Weekday()) {
			total += rates.WeekendPriceCents
		} else {
			total += rates.WeekdayPriceCents
		}
		day = day.AddDate(0, 0, 1)
	}
	return total, nil
}

func isWeekend(wd time.Weekday) bool {
	return wd == time.Saturday || wd == time.Sunday
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
