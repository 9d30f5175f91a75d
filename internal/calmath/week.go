package calmath

// ISOWeek returns the ISO-8601 week-numbering year and week of d.
//
// The date is moved to the Thursday of its week (Monday-based); the year of
// that Thursday owns the week. This is what places 2024-12-31 in week 1 of
// 2025 and 2021-01-01 in week 53 of 2020.
func ISOWeek(d Date) (year, week int) {
	thursday := d.AddDays(4 - d.ISOWeekday())
	return thursday.Year, 1 + (thursday.YearDay()-1)/7
}

// ISOWeekStart returns the Monday of the given ISO week.
func ISOWeekStart(year, week int) Date {
	jan4 := NewDate(year, 1, 4)
	week1Monday := jan4.AddDays(1 - jan4.ISOWeekday())
	return week1Monday.AddDays((week - 1) * 7)
}

// ISOWeeksInYear returns 52 or 53.
func ISOWeeksInYear(year int) int {
	_, w := ISOWeek(NewDate(year, 12, 28))
	return w
}
