package calmath

import "time"

// Difference is a calendar-field distance between two dates. Days is always
// in [0, 6]; Weeks is at most 4 because it comes from a sub-month remainder.
type Difference struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Weeks  int `json:"weeks"`
	Days   int `json:"days"`
}

func (d Difference) IsZero() bool { return d == Difference{} }

// FieldDifference returns the distance from earlier to later. The caller
// orders the arguments; FieldDifference does not swap them.
//
// Fields are subtracted year/month/day; a negative day count borrows the
// length of the month preceding later's month, a negative month count
// borrows twelve months from the year. When earlier's day overruns a short
// February so that the borrow still leaves Days negative (Jan 31 to Mar 1),
// one more month is given back and the days are counted from there.
// AddDifference(earlier, diff) == later holds for every ordered pair.
func FieldDifference(earlier, later Date) Difference {
	years := later.Year - earlier.Year
	months := int(later.Month - earlier.Month)
	days := later.Day - earlier.Day

	if days < 0 {
		months--
		days += DaysIn(later.Year, later.Month-1)
	}
	if months < 0 {
		years--
		months += 12
	}
	if days < 0 {
		total := years*12 + months - 1
		if total < 0 {
			total = 0
		}
		days = DayCount(addMonthsOverflow(earlier, total), later)
		years, months = total/12, total%12
	}

	return Difference{
		Years:  years,
		Months: months,
		Weeks:  days / 7,
		Days:   days % 7,
	}
}

// AddDifference applies diff to d: years and months first, with a day past
// the end of the target month running over into the next one (Mar 31 + 1
// month = May 1), then weeks and days. This is the inverse of the borrow in
// FieldDifference.
func AddDifference(d Date, diff Difference) Date {
	return addMonthsOverflow(d, diff.Years*12+diff.Months).AddDays(diff.Weeks*7 + diff.Days)
}

func addMonthsOverflow(d Date, n int) Date {
	return NewDate(d.Year, d.Month+time.Month(n), d.Day)
}
