package clock

import "time"

// Clock supplies the current time in the service's canonical timezone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type systemClock struct {
	loc *time.Location
}

// System returns a Clock backed by time.Now, reporting times in loc.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time           { return time.Now().In(c.loc) }
func (c systemClock) Location() *time.Location { return c.loc }

// Fixed is a settable Clock for tests and seeding.
type Fixed struct {
	T   time.Time
	Loc *time.Location
}

// NewFixed returns a Fixed clock at t, using t's location as canonical.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t, Loc: t.Location()}
}

func (f *Fixed) Now() time.Time { return f.T.In(f.Location()) }

func (f *Fixed) Location() *time.Location {
	if f.Loc == nil {
		return time.UTC
	}
	return f.Loc
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) { f.T = t }

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) { f.T = f.T.Add(d) }

// Today returns midnight of the current calendar day in the clock's location.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now(), c.Location())
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
