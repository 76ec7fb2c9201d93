package format

import "time"

// DosDateTime is an MS-DOS timestamp exactly as stored in file headers:
// the packed time word in the low 16 bits, the packed date word in the
// high 16 bits. Reading the four bytes as one little-endian word yields
// the same value as reading time and date separately.
type DosDateTime uint32

// Bit layout of the packed words. Seconds are stored halved and years
// count from 1980.
const (
	dosEpochYear = 1980

	dosSecondShift = 0
	dosMinuteShift = 5
	dosHourShift   = 11
	dosDayShift    = 16
	dosMonthShift  = 21
	dosYearShift   = 25

	dosSecondMask = 0x1f
	dosMinuteMask = 0x3f
	dosHourMask   = 0x1f
	dosDayMask    = 0x1f
	dosMonthMask  = 0x0f
	dosYearMask   = 0x7f
)

// NewDosDateTime packs the given calendar fields. Years before 1980
// collapse to 1980 and the low bit of the seconds is dropped; both are
// limits of the on-disk representation.
func NewDosDateTime(year int, month time.Month, day, hour, min, sec int) DosDateTime {
	if year < dosEpochYear {
		year = dosEpochYear
	}
	return DosDateTime(uint32(sec/2)<<dosSecondShift |
		uint32(min)<<dosMinuteShift |
		uint32(hour)<<dosHourShift |
		uint32(day)<<dosDayShift |
		uint32(month)<<dosMonthShift |
		uint32(year-dosEpochYear)<<dosYearShift)
}

// Year returns the calendar year, 1980 or later.
func (t DosDateTime) Year() int { return int(t>>dosYearShift&dosYearMask) + dosEpochYear }

// Month returns the calendar month.
func (t DosDateTime) Month() time.Month { return time.Month(t>>dosMonthShift&dosMonthMask) }

// Day returns the day of the month.
func (t DosDateTime) Day() int { return int(t>>dosDayShift&dosDayMask) }

// Hour returns the hour of the day.
func (t DosDateTime) Hour() int { return int(t>>dosHourShift&dosHourMask) }

// Minute returns the minute of the hour.
func (t DosDateTime) Minute() int { return int(t>>dosMinuteShift&dosMinuteMask) }

// Second returns the stored seconds, always even.
func (t DosDateTime) Second() int { return int(t>>dosSecondShift&dosSecondMask) * 2 }

// Time converts the timestamp to a time.Time in UTC. The format records
// no zone, so UTC is a convention, not a fact about the archive.
func (t DosDateTime) Time() time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
