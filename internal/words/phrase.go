package words

import "strings"

const (
	minuteMask Pattern = 0x1FF
	affixMask  Pattern = Past | To
)

var bucketNames = []struct {
	bucket Pattern
	name   string
}{
	{FiveMinutes, "FIVE"},
	{TenMinutes, "TEN"},
	{Quarter, "QUARTER"},
	{TwentyMinutes, "TWENTY"},
	{TwentyFiveMinutes, "TWENTY FIVE"},
	{Half, "HALF"},
}

var hourNames = [13]string{
	1: "ONE", 2: "TWO", 3: "THREE", 4: "FOUR", 5: "FIVE", 6: "SIX",
	7: "SEVEN", 8: "EIGHT", 9: "NINE", 10: "TEN", 11: "ELEVEN", 12: "TWELVE",
}

// Phrase returns the words lit by the pattern, such as "TWENTY TO FIVE" or
// "TWELVE O'CLOCK". Lamps that do not form a known word are ignored.
func Phrase(p Pattern) string {
	var parts []string

	hour := p &^ (minuteMask | affixMask | OClock)
	if p&OClock == OClock {
		if name := HourName(hour); name != "" {
			parts = append(parts, name)
		}
		parts = append(parts, "O'CLOCK")
		return strings.Join(parts, " ")
	}

	for _, b := range bucketNames {
		if p&minuteMask == b.bucket {
			parts = append(parts, b.name)
			break
		}
	}

	switch p & affixMask {
	case Past:
		parts = append(parts, "PAST")
	case To:
		parts = append(parts, "TO")
	}

	if name := HourName(hour); name != "" {
		parts = append(parts, name)
	}

	return strings.Join(parts, " ")
}

// HourName returns the English word for the hour lamps in p, or an empty
// string if p is not exactly one hour word.
func HourName(p Pattern) string {
	for h := 1; h <= 12; h++ {
		if hourWords[h] == p {
			return hourNames[h]
		}
	}
	return ""
}
