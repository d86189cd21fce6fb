package words

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
)

var buckets = []Pattern{
	OClock, FiveMinutes, TenMinutes, Quarter, TwentyMinutes, TwentyFiveMinutes, Half,
}

func TestTranslateDeterministic(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			assert.Equal(t, Translate(h, m), Translate(h, m), "%d:%d", h, m)
			assert.NotEqual(t, Blank, Translate(h, m), "%d:%d", h, m)
		}
	}
}

func TestTranslateExclusiveGroups(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			p := Translate(h, m)

			var matched int
			for _, b := range buckets {
				if p&(minuteMask|OClock) == b {
					matched++
				}
			}
			assert.Equal(t, 1, matched, "%d:%d", h, m)

			affix := p & (Past | To)
			assert.LessOrEqual(t, bits.OnesCount32(uint32(affix)), 1, "%d:%d", h, m)

			hour := p &^ (minuteMask | affixMask | OClock)
			assert.NotEmpty(t, HourName(hour), "%d:%d has pattern %s", h, m, p)
			assert.Equal(t, p, MinuteBucket(m)|affix|hour)
		}
	}
}

func TestHourWordsDisjoint(t *testing.T) {
	var seen Pattern
	for h := 1; h <= 12; h++ {
		w := hourWords[h]
		n := bits.OnesCount32(uint32(w))
		assert.True(t, n == 1 || n == 2, "hour %d uses %d lamps", h, n)
		assert.Zero(t, seen&w, "hour %d overlaps another hour", h)
		assert.Zero(t, w&(minuteMask|affixMask|OClock), "hour %d overlaps minute lamps", h)
		assert.Less(t, bits.Len32(uint32(w)), NumLEDs+1, "hour %d beyond the strip", h)
		seen |= w
	}
}

func TestTranslateNextHourBeforeTheHour(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 35; m < 60; m++ {
			p := Translate(h, m)
			assert.Equal(t, Hour((h+1)%24), p&^(minuteMask|affixMask|OClock), "%d:%d", h, m)
		}
		for m := 0; m < 35; m++ {
			p := Translate(h, m)
			assert.Equal(t, Hour(h), p&^(minuteMask|affixMask|OClock), "%d:%d", h, m)
		}
	}
}

func TestTranslateBoundaries(t *testing.T) {
	tests := []struct {
		minute int
		bucket Pattern
		affix  Pattern
	}{
		{0, OClock, 0},
		{4, OClock, 0},
		{5, FiveMinutes, Past},
		{14, TenMinutes, Past},
		{15, Quarter, Past},
		{29, TwentyFiveMinutes, Past},
		{30, Half, Past},
		{34, Half, Past},
		{35, TwentyFiveMinutes, To},
		{45, Quarter, To},
		{50, TenMinutes, To},
		{59, FiveMinutes, To},
	}

	for _, test := range tests {
		assert.Equal(t, test.bucket, MinuteBucket(test.minute), "minute %d", test.minute)
		assert.Equal(t, test.affix, Affix(test.minute), "minute %d", test.minute)
	}
}

func TestFormat12(t *testing.T) {
	assert.Equal(t, 12, Format12(0))
	assert.Equal(t, 1, Format12(1))
	assert.Equal(t, 12, Format12(12))
	assert.Equal(t, 1, Format12(13))
	assert.Equal(t, 11, Format12(23))
}

func TestPhrase(t *testing.T) {
	tests := []struct {
		hour, minute int
		pattern      Pattern
		phrase       string
	}{
		{4, 40, TwentyMinutes | To | Hour(5), "TWENTY TO FIVE"},
		{0, 0, OClock | Hour(12), "TWELVE O'CLOCK"},
		{23, 59, FiveMinutes | To | Hour(12), "FIVE TO TWELVE"},
		{10, 30, Half | Past | Hour(10), "HALF PAST TEN"},
		{10, 35, TwentyFiveMinutes | To | Hour(11), "TWENTY FIVE TO ELEVEN"},
		{16, 10, TenMinutes | Past | Hour(4), "TEN PAST FOUR"},
		{6, 47, Quarter | To | Hour(7), "QUARTER TO SEVEN"},
	}

	for _, test := range tests {
		p := Translate(test.hour, test.minute)
		assert.Equal(t, test.pattern, p, "%d:%d", test.hour, test.minute)
		assert.Equal(t, test.phrase, Phrase(p), "%d:%d", test.hour, test.minute)
	}

	assert.Equal(t, uint32(201326592|3<<20), uint32(Translate(0, 0)))
	assert.Empty(t, Phrase(Blank))
}
