package calendar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WorkCalendar defines the working day for attendance derivation. At
// most one calendar is active at a time. StartTime and EndTime are
// wall-clock values in HH:MM:SS. WeeklyOffDays uses time.Weekday
// numbering, Sunday = 0.
type WorkCalendar struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	GraceMinutes  int        `json:"grace_minutes"`
	WeeklyOffDays []int      `json:"weekly_off_days"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type Holiday struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCalendarRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	StartTime     string `json:"start_time" validate:"required,datetime=15:04:05"`
	EndTime       string `json:"end_time" validate:"required,datetime=15:04:05"`
	GraceMinutes  int    `json:"grace_minutes" validate:"min=0,max=240"`
	WeeklyOffDays []int  `json:"weekly_off_days" validate:"max=7,dive,min=0,max=6"`
}

type CreateHolidayRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// IsWeeklyOff reports whether the weekday is one of the calendar's
// configured off days.
func (c *WorkCalendar) IsWeeklyOff(day time.Weekday) bool {
	for _, d := range c.WeeklyOffDays {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}

// StartClock parses StartTime into hour, minute and second components.
func (c *WorkCalendar) StartClock() (hour, min, sec int, err error) {
	return parseClock(c.StartTime)
}

func parseClock(v string) (hour, min, sec int, err error) {
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid clock value %q", v)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, 0, fmt.Errorf("invalid hour in %q", v)
	}
	min, err = strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return 0, 0, 0, fmt.Errorf("invalid minute in %q", v)
	}
	sec, err = strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 {
		return 0, 0, 0, fmt.Errorf("invalid second in %q", v)
	}
	return hour, min, sec, nil
}

// offDaysToCSV serializes weekly off days for storage, sorted and
// deduplicated.
func offDaysToCSV(days []int) string {
	seen := make(map[int]bool, len(days))
	uniq := make([]int, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	sort.Ints(uniq)

	parts := make([]string, len(uniq))
	for i, d := range uniq {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func offDaysFromCSV(v string) []int {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err == nil {
			days = append(days, d)
		}
	}
	return days
}
