package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTodayUsesClockLocation(t *testing.T) {
	addis := time.FixedZone("EAT", 3*60*60)
	// 22:30 UTC on Jan 31 is already Feb 1 in EAT.
	c := &Fixed{T: time.Date(2024, 1, 31, 22, 30, 0, 0, time.UTC), Loc: addis}

	today := Today(c)

	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, addis), today)
}

func TestFixedAdvance(t *testing.T) {
	c := NewFixed(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	c.Advance(36 * time.Hour)

	assert.Equal(t, time.Date(2024, 1, 11, 21, 0, 0, 0, time.UTC), c.Now())
}
