package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"zapis/pkg/model"
)

// Calendar generates the rolling window of candidate slots: a fixed grid of
// daily times over a fixed number of days, minus the blackout weekday, minus
// the slots that have already elapsed today. Generation is a pure function of
// "now"; it is safe to call repeatedly.
type Calendar struct {
	times    []timeOfDay
	horizon  int
	blackout time.Weekday
	loc      *time.Location
}

type timeOfDay struct {
	hour   int
	minute int
}

func New(slotTimes []string, horizonDays int, blackout time.Weekday, loc *time.Location) (*Calendar, error) {
	if len(slotTimes) == 0 {
		return nil, fmt.Errorf("at least one daily slot time is required")
	}
	if horizonDays < 0 {
		return nil, fmt.Errorf("horizon days cannot be negative, got %d", horizonDays)
	}
	if loc == nil {
		loc = time.UTC
	}

	times := make([]timeOfDay, 0, len(slotTimes))
	var prev timeOfDay
	for i, s := range slotTimes {
		tod, err := parseTimeOfDay(s)
		if err != nil {
			return nil, err
		}
		if i > 0 && !prev.before(tod) {
			return nil, fmt.Errorf("daily slot times must be strictly ascending, got %q", strings.Join(slotTimes, ","))
		}
		times = append(times, tod)
		prev = tod
	}

	return &Calendar{
		times:    times,
		horizon:  horizonDays,
		blackout: blackout,
		loc:      loc,
	}, nil
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Generate returns the candidate slots for the window anchored at now, in
// chronological order.
//
// The elapsed-slot trim for today is computed against the day's own time grid
// before the weekday filter runs, so a blackout elsewhere in the window never
// shifts which of today's slots count as passed. If every daily time has
// elapsed the anchor moves to tomorrow and no trimming applies.
func (c *Calendar) Generate(now time.Time) []model.Slot {
	now = now.In(c.loc)

	elapsed := 0
	for _, t := range c.times {
		if !t.after(now.Hour(), now.Minute()) {
			elapsed++
		}
	}

	anchor := now
	if elapsed == len(c.times) {
		anchor = anchor.AddDate(0, 0, 1)
		elapsed = 0
	}

	slots := make([]model.Slot, 0, c.horizon*len(c.times))
	for day := 0; day < c.horizon; day++ {
		date := anchor.AddDate(0, 0, day)

		dayTimes := c.times
		if day == 0 {
			dayTimes = dayTimes[elapsed:]
		}

		if date.Weekday() == c.blackout {
			continue
		}

		for _, t := range dayTimes {
			start := time.Date(date.Year(), date.Month(), date.Day(), t.hour, t.minute, 0, 0, c.loc)
			slots = append(slots, model.NewSlot(start))
		}
	}

	return slots
}

func (t timeOfDay) after(hour, minute int) bool {
	if t.hour != hour {
		return t.hour > hour
	}
	return t.minute > minute
}

func (t timeOfDay) before(other timeOfDay) bool {
	if t.hour != other.hour {
		return t.hour < other.hour
	}
	return t.minute < other.minute
}

func parseTimeOfDay(s string) (timeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return timeOfDay{}, fmt.Errorf("invalid slot time %q, expected H:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return timeOfDay{}, fmt.Errorf("invalid hour in slot time %q", s)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return timeOfDay{}, fmt.Errorf("invalid minute in slot time %q", s)
	}

	return timeOfDay{hour: hour, minute: minute}, nil
}
