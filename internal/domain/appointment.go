package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus is a state of the appointment lifecycle.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// DateLayout is the wire format of an appointment's calendar day.
const DateLayout = "2006-01-02"

// TimeSlots is the fixed, ordered list of bookable half-hour labels.
// The lunch hour (01:00 PM - 02:00 PM) is never bookable.
var TimeSlots = []string{
	"09:00 AM",
	"09:30 AM",
	"10:00 AM",
	"10:30 AM",
	"11:00 AM",
	"11:30 AM",
	"12:00 PM",
	"12:30 PM",
	"02:00 PM",
	"02:30 PM",
	"03:00 PM",
	"03:30 PM",
	"04:00 PM",
	"04:30 PM",
	"05:00 PM",
}

// IsTimeSlot reports whether label is one of TimeSlots.
func IsTimeSlot(label string) bool {
	return SlotIndex(label) >= 0
}

// SlotIndex is the position of label in TimeSlots, or -1.
func SlotIndex(label string) int {
	for i, slot := range TimeSlots {
		if slot == label {
			return i
		}
	}
	return -1
}

// Person is the embedded summary of a patient or doctor.
type Person struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	StudentID      string `json:"studentId,omitempty"`
}

// Appointment is one consultation request between a patient and a doctor.
type Appointment struct {
	ID        string            `json:"id"`
	PatientID string            `json:"patientId"`
	DoctorID  string            `json:"doctorId"`
	Date      string            `json:"date"`
	TimeSlot  string            `json:"timeSlot"`
	Symptoms  string            `json:"symptoms"`
	Status    AppointmentStatus `json:"status"`
	Notes     string            `json:"notes,omitempty"`
	Patient   *Person           `json:"patient,omitempty"`
	Doctor    *Person           `json:"doctor,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Day returns the appointment's calendar day in loc.
func (a Appointment) Day(loc *time.Location) (time.Time, error) {
	return ParseDate(a.Date, loc)
}

// ParseDate reads a calendar day. Full RFC 3339 timestamps are accepted and
// truncated to their date part.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDate renders t as a wire date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
