package model

import (
	"fmt"
	"strings"
	"time"
)

// Day is one of the seven fixed week-day labels. Days are labels, not dates.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaysInWeek is the number of Day labels.
const DaysInWeek = 7

var dayNames = [DaysInWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Days returns all labels in week order.
func Days() []Day {
	return []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// Short returns the three-letter label, e.g. "Mon".
func (d Day) Short() string {
	return d.String()[:3]
}

// ParseDay accepts full names and three-letter abbreviations in any case.
func ParseDay(raw string) (Day, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return 0, fmt.Errorf("day is required")
	}
	for i, name := range dayNames {
		lower := strings.ToLower(name)
		if value == lower || value == lower[:3] {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", raw)
}

// Weekday maps a calendar weekday onto its label.
func Weekday(wd time.Weekday) Day {
	// time.Sunday is 0, the week here starts on Monday.
	return Day((int(wd) + 6) % DaysInWeek)
}

// CronWeekday is the inverse of Weekday, in cron's 0=Sunday numbering.
func (d Day) CronWeekday() int {
	return (int(d) + 1) % DaysInWeek
}

func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid day %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
