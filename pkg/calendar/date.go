// Package calendar provides the medieval calendar the chronicle runs on.
// The engine itself only tracks an integer day counter; this package maps
// that counter onto dates in 1205, feast days, and seasons.
package calendar

import "fmt"

// EpochYear is the year the chronicle begins. Day 0 of the engine's
// counter is January 1 of this year.
const EpochYear = 1205

// 1205 is not a leap year.
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Date is a single day in the medieval calendar.
type Date struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12
	Day   int `json:"day"`   // 1-31 depending on month
}

// New creates a validated Date.
func New(year, month, day int) (Date, error) {
	d := Date{Year: year, Month: month, Day: day}
	if err := d.Validate(); err != nil {
		return Date{}, err
	}
	return d, nil
}

// Validate checks that the month and day are in range.
func (d Date) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("invalid month %d: must be 1-12", d.Month)
	}
	if max := daysInMonth[d.Month-1]; d.Day < 1 || d.Day > max {
		return fmt.Errorf("invalid day %d: month %d has %d days", d.Day, d.Month, max)
	}
	return nil
}

// Next returns the following day, rolling over months and years.
func (d Date) Next() Date {
	d.Day++
	if d.Day > daysInMonth[d.Month-1] {
		d.Day = 1
		d.Month++
		if d.Month > 12 {
			d.Month = 1
			d.Year++
		}
	}
	return d
}

// FromDayNumber maps the engine's day counter onto a calendar date.
// Day 0 is January 1 of the epoch year.
func FromDayNumber(day int) Date {
	d := Date{Year: EpochYear, Month: 1, Day: 1}
	for i := 0; i < day; i++ {
		d = d.Next()
	}
	return d
}

// DayOfYear returns the day number within the year (1 = Jan 1, 365 = Dec 31).
func (d Date) DayOfYear() int {
	n := d.Day
	for m := 0; m < d.Month-1; m++ {
		n += daysInMonth[m]
	}
	return n
}

// DayOfWeek returns the weekday name, computed via Zeller's congruence
// for the Julian calendar.
func (d Date) DayOfWeek() string {
	year, month := d.Year, d.Month
	if month < 3 {
		month += 12
		year--
	}
	h := (d.Day + (13*(month+1))/5 + year + year/4 + 5) % 7
	// Zeller yields 0=Saturday; shift so 0=Monday.
	return dayNames[(h+5)%7]
}

// Equal reports whether two dates are the same day.
func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

// Before reports whether d falls strictly before o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// FormatLong returns a date like "Saturday, January 1, 1205".
func (d Date) FormatLong() string {
	return fmt.Sprintf("%s, %s %d, %d", d.DayOfWeek(), monthNames[d.Month-1], d.Day, d.Year)
}

// FormatShort returns a date like "Day 152 - May 31, 1205".
func (d Date) FormatShort() string {
	return fmt.Sprintf("Day %d - %s %d, %d", d.DayOfYear(), monthNames[d.Month-1], d.Day, d.Year)
}

func (d Date) String() string {
	return d.FormatShort()
}
