package events

import "time"

// AccessLog is one palm scan reported by a device. DeviceDateTime is
// the scan time as reported by the scanner clock.
type AccessLog struct {
	ID             string    `json:"id"`
	SN             string    `json:"sn"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	PalmType       string    `json:"palm_type"`
	Status         string    `json:"status"`
	DeviceDateTime time.Time `json:"device_date_time"`
	CreatedAt      time.Time `json:"created_at"`
}

type IngestEventRequest struct {
	SN             string `json:"sn" validate:"required,min=4,max=64"`
	UserID         string `json:"user_id" validate:"required,uuid4"`
	Name           string `json:"name" validate:"required,max=100"`
	PalmType       string `json:"palm_type" validate:"required,oneof=left right"`
	Status         string `json:"status" validate:"required,oneof=granted denied"`
	DeviceDateTime string `json:"device_date_time" validate:"required,datetime=2006-01-02 15:04:05"`
}

type ListEventsQuery struct {
	SN     string `form:"sn" validate:"omitempty,max=64"`
	UserID string `form:"user_id" validate:"omitempty,uuid4"`
	From   string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

// Punch is the earliest granted scan for a user on a calendar date.
type Punch struct {
	UserID string
	Date   string
	At     time.Time
}

// AbsentUser is an active user with no granted scan on a given date.
type AbsentUser struct {
	UserID string
	Name   string
	Email  string
}
