package risk

import "time"

const (
	daysPerWeek          = 7
	offsetDaysForMonday  = 1
	thirdMondayOffset    = 2
	fourthThursdayOffset = 3
)

// IsBusinessDay reports whether t is a weekday that is not a US market
// holiday. The rolling day-trade window counts only these days.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !isMarketHoliday(t)
}

// BusinessDaysAgo walks back n business days from t.
func BusinessDaysAgo(t time.Time, n int) time.Time {
	current := t
	count := 0
	for count < n {
		current = current.AddDate(0, 0, -1)
		if IsBusinessDay(current) {
			count++
		}
	}
	return current
}

func isMarketHoliday(t time.Time) bool {
	year := t.Year()

	// New Year's Day, observed Monday when it lands on a Sunday
	newYearsDay := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	if newYearsDay.Weekday() == time.Sunday {
		newYearsDay = newYearsDay.AddDate(0, 0, offsetDaysForMonday)
	}

	mlkDay := calculateSpecificMonday(year, time.January, thirdMondayOffset)
	presidentsDay := calculateSpecificMonday(year, time.February, thirdMondayOffset)

	// Memorial Day, last Monday of May
	memorialDay := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for memorialDay.Weekday() != time.Monday {
		memorialDay = memorialDay.AddDate(0, 0, -1)
	}

	independenceDay := time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC)
	if independenceDay.Weekday() == time.Sunday {
		independenceDay = independenceDay.AddDate(0, 0, offsetDaysForMonday)
	}

	laborDay := calculateSpecificMonday(year, time.September, 0)
	thanksgivingDay := calculateSpecificThursday(year, time.November, fourthThursdayOffset)

	christmasDay := time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC)
	if christmasDay.Weekday() == time.Sunday {
		christmasDay = christmasDay.AddDate(0, 0, offsetDaysForMonday)
	}

	holidays := []time.Time{
		newYearsDay,
		mlkDay,
		presidentsDay,
		memorialDay,
		independenceDay,
		laborDay,
		thanksgivingDay,
		christmasDay,
	}
	return isDateAmong(t, holidays)
}

// calculateSpecificMonday calculates the specific Monday of a month (like the third Monday).
func calculateSpecificMonday(year int, month time.Month, mondayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Monday-firstOfMonth.Weekday()+daysPerWeek) % daysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+mondayOffset*daysPerWeek)
}

// calculateSpecificThursday calculates the specific Thursday of a month (like the fourth Thursday).
func calculateSpecificThursday(year int, month time.Month, thursdayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Thursday-firstOfMonth.Weekday()+daysPerWeek) % daysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+thursdayOffset*daysPerWeek)
}

func isDateAmong(t time.Time, dates []time.Time) bool {
	for _, d := range dates {
		if t.Format("2006-01-02") == d.Format("2006-01-02") {
			return true
		}
	}
	return false
}
