// Package words translates a time of day into the set of lamps to light on
// the word clock panel.
package words

import "fmt"

// NumLEDs is the number of lamps wired behind the panel. Lamp i is bit i of a
// Pattern.
const NumLEDs = 30

// Pattern is a bit set of lit lamps. Each bit corresponds to one lamp behind
// the panel.
type Pattern uint32

// Blank is the empty pattern. Every real pattern lights at least one
// minute word, so Blank never equals the result of Translate.
const Blank Pattern = 0

// Minute bucket words. Some words span several lamps, and the buckets share
// lamps (TWENTY FIVE is TWENTY with FIVE lit next to it).
const (
	OClock            Pattern = 201326592
	FiveMinutes       Pattern = 392
	TenMinutes        Pattern = 448
	Quarter           Pattern = 6
	TwentyMinutes     Pattern = 432
	TwentyFiveMinutes Pattern = 440
	Half              Pattern = 1
)

// Affix words.
const (
	Past Pattern = 1024
	To   Pattern = 512
)

// hourShift is the first lamp used by hour words.
const hourShift = 11

// hourWords maps a 12-hour clock hour to its lamps. The order follows the
// wiring of the strip behind the panel, not the hours.
var hourWords = [13]Pattern{
	2:  1 << (hourShift + 0),
	4:  1 << (hourShift + 1),
	1:  1 << (hourShift + 2),
	3:  3 << (hourShift + 3),
	6:  1 << (hourShift + 5),
	5:  1 << (hourShift + 6),
	11: 3 << (hourShift + 7),
	12: 3 << (hourShift + 9),
	9:  1 << (hourShift + 11),
	10: 1 << (hourShift + 12),
	8:  3 << (hourShift + 13),
	7:  3 << (hourShift + 17),
}

// Translate returns the lamps spelling out the given time. hour is in
// [0, 24) and minute in [0, 60). The result does not depend on seconds, so
// callers can compare patterns to detect a visible change.
func Translate(hour, minute int) Pattern {
	affix := Affix(minute)
	if affix == To {
		hour = (hour + 1) % 24
	}
	return MinuteBucket(minute) | affix | Hour(hour)
}

// MinuteBucket returns the minute words for the given minute, rounded down to
// the closest five minute mark on either side of the half hour.
func MinuteBucket(minute int) Pattern {
	switch {
	case minute < 5:
		return OClock
	case minute < 10 || minute >= 55:
		return FiveMinutes
	case minute < 15 || minute >= 50:
		return TenMinutes
	case minute < 20 || minute >= 45:
		return Quarter
	case minute < 25 || minute >= 40:
		return TwentyMinutes
	case minute < 30 || minute >= 35:
		return TwentyFiveMinutes
	default:
		return Half
	}
}

// Affix returns Past, To or nothing for the top of the hour.
func Affix(minute int) Pattern {
	switch {
	case minute < 5:
		return 0
	case minute < 35:
		return Past
	default:
		return To
	}
}

// Hour returns the hour word for a 24-hour clock hour.
func Hour(hour int) Pattern {
	return hourWords[Format12(hour)]
}

// Format12 converts a 24-hour clock hour into 12-hour form, 1 to 12.
func Format12(hour int) int {
	if h := hour % 12; h != 0 {
		return h
	}
	return 12
}

// String implements fmt.Stringer.
func (p Pattern) String() string {
	return fmt.Sprintf("%030b", uint32(p))
}
