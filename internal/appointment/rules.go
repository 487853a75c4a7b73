// Package appointment implements the appointment lifecycle: which bookings are
// acceptable, which status changes each actor may make, and an Engine that
// drives those changes against the remote service.
//
// The pure rules in this file are shared with the API service so both ends
// agree on the lifecycle.
package appointment

import (
	"strings"
	"time"

	"medunit-portal/internal/domain"
)

// BookingWindowDays is how far ahead, in calendar days, a booking may be made.
const BookingWindowDays = 30

type edge struct {
	from domain.AppointmentStatus
	to   domain.AppointmentStatus
}

// transitions maps each permitted status change to the actors allowed to make it.
// Nothing leaves cancelled or completed.
var transitions = map[edge][]domain.Role{
	{domain.StatusPending, domain.StatusApproved}:   {domain.RoleDoctor},
	{domain.StatusPending, domain.StatusCancelled}:  {domain.RoleDoctor, domain.RolePatient},
	{domain.StatusApproved, domain.StatusCancelled}: {domain.RoleDoctor},
	{domain.StatusApproved, domain.StatusCompleted}: {domain.RoleDoctor},
}

// CheckTransition reports an InvalidTransitionError unless actor may move an
// appointment from one status to the other.
func CheckTransition(from, to domain.AppointmentStatus, actor domain.Role) error {
	if actor.In(transitions[edge{from, to}]...) {
		return nil
	}
	return &domain.InvalidTransitionError{From: from, To: to, Actor: actor}
}

// NextStatuses lists the statuses actor may move an appointment in from to,
// in lifecycle order.
func NextStatuses(from domain.AppointmentStatus, actor domain.Role) []domain.AppointmentStatus {
	var out []domain.AppointmentStatus
	for _, to := range []domain.AppointmentStatus{domain.StatusApproved, domain.StatusCompleted, domain.StatusCancelled} {
		if CheckTransition(from, to, actor) == nil {
			out = append(out, to)
		}
	}
	return out
}

// BookingRequest is the validated input of a booking.
type BookingRequest struct {
	DoctorID string `json:"doctor"`
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Symptoms string `json:"symptoms"`
}

// BookingWindow returns the first and last bookable days relative to now,
// in now's location.
func BookingWindow(now time.Time) (first, last time.Time) {
	today := domain.StartOfDay(now)
	return today.AddDate(0, 0, 1), today.AddDate(0, 0, BookingWindowDays)
}

// CheckBookingWindow accepts days from tomorrow up to and including
// BookingWindowDays days from today.
func CheckBookingWindow(day, now time.Time) error {
	first, last := BookingWindow(now)
	day = domain.StartOfDay(day)
	if day.Before(first) {
		return domain.NewValidationError("date", "appointments can be booked from tomorrow onwards")
	}
	if day.After(last) {
		return domain.NewValidationError("date", "appointments can be booked at most 30 days ahead")
	}
	return nil
}

// ValidateBooking checks every booking precondition that does not depend on
// who is booking.
func ValidateBooking(req BookingRequest, now time.Time) error {
	if strings.TrimSpace(req.DoctorID) == "" {
		return domain.NewValidationError("doctor", "is required")
	}
	if strings.TrimSpace(req.Date) == "" {
		return domain.NewValidationError("date", "is required")
	}
	day, err := domain.ParseDate(req.Date, now.Location())
	if err != nil {
		return domain.NewValidationError("date", "must be a calendar day (YYYY-MM-DD)")
	}
	if err := CheckBookingWindow(day, now); err != nil {
		return err
	}
	if !domain.IsTimeSlot(req.TimeSlot) {
		return domain.NewValidationError("timeSlot", "must be one of the listed slots")
	}
	if strings.TrimSpace(req.Symptoms) == "" {
		return domain.NewValidationError("symptoms", "are required")
	}
	return nil
}
