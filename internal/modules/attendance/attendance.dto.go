package attendance

import "time"

// DayStatus is the derived attendance state for one user on one date.
// Attendance is never stored; it is always recomputed from punches,
// the active calendar and the holiday table.
type DayStatus string

const (
	StatusPresent DayStatus = "PRESENT"
	StatusAbsent  DayStatus = "ABSENT"
	StatusWeekOff DayStatus = "WEEK_OFF"
	StatusHoliday DayStatus = "HOLIDAY"
)

// DayRecord is the reconciliation result for one (user, date) pair.
type DayRecord struct {
	Date       string     `json:"date"`
	Status     DayStatus  `json:"status"`
	Late       bool       `json:"late"`
	FirstPunch *time.Time `json:"first_punch,omitempty"`
	Holiday    string     `json:"holiday,omitempty"`
}

// RangeSummary aggregates reconciliation over a date range for a user.
type RangeSummary struct {
	UserID         string      `json:"user_id"`
	From           string      `json:"from"`
	To             string      `json:"to"`
	WorkingDays    int         `json:"working_days"`
	Present        int         `json:"present"`
	Absent         int         `json:"absent"`
	WeekOffs       int         `json:"week_offs"`
	Holidays       int         `json:"holidays"`
	LateDays       int         `json:"late_days"`
	AttendanceRate float64     `json:"attendance_rate"`
	Days           []DayRecord `json:"days"`
}

// SheetEntry is one row of the daily attendance sheet.
type SheetEntry struct {
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Status     DayStatus  `json:"status"`
	Late       bool       `json:"late"`
	FirstPunch *time.Time `json:"first_punch,omitempty"`
}

// DailySheet is the reconciled attendance of all active users for one
// date.
type DailySheet struct {
	Date    string       `json:"date"`
	Status  DayStatus    `json:"day_status,omitempty"`
	Entries []SheetEntry `json:"entries"`
}

// Absentee is a user flagged by the missed punch-in check.
type Absentee struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// NotificationBatch is the payload handed to the notifier when the
// daily trigger fires.
type NotificationBatch struct {
	Date    string     `json:"date"`
	Absent  []Absentee `json:"absent"`
	FiredAt time.Time  `json:"fired_at"`
}

type DayQuery struct {
	UserID string `form:"user_id" validate:"required,uuid4"`
	Date   string `form:"date" validate:"required,datetime=2006-01-02"`
}

type SummaryQuery struct {
	UserID string `form:"user_id" validate:"required,uuid4"`
	From   string `form:"from" validate:"required,datetime=2006-01-02"`
	To     string `form:"to" validate:"required,datetime=2006-01-02"`
}

type SheetQuery struct {
	Date string `form:"date" validate:"required,datetime=2006-01-02"`
}
