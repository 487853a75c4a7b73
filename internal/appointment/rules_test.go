package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medunit-portal/internal/domain"
)

var (
	allStatuses = []domain.AppointmentStatus{domain.StatusPending, domain.StatusApproved, domain.StatusCancelled, domain.StatusCompleted}
	allRoles    = []domain.Role{domain.RolePatient, domain.RoleDoctor, domain.RoleAdmin}
)

func TestCheckTransition_Table(t *testing.T) {
	type triple struct {
		from, to domain.AppointmentStatus
		actor    domain.Role
	}
	permitted := map[triple]bool{
		{domain.StatusPending, domain.StatusApproved, domain.RoleDoctor}:   true,
		{domain.StatusPending, domain.StatusCancelled, domain.RoleDoctor}:  true,
		{domain.StatusPending, domain.StatusCancelled, domain.RolePatient}: true,
		{domain.StatusApproved, domain.StatusCancelled, domain.RoleDoctor}: true,
		{domain.StatusApproved, domain.StatusCompleted, domain.RoleDoctor}: true,
	}

	allowed := 0
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			for _, actor := range allRoles {
				err := CheckTransition(from, to, actor)
				if permitted[triple{from, to, actor}] {
					assert.NoError(t, err, "%s: %s -> %s", actor, from, to)
					allowed++
					continue
				}
				require.Error(t, err, "%s: %s -> %s", actor, from, to)
				assert.True(t, domain.IsInvalidTransition(err))
			}
		}
	}
	assert.Equal(t, len(permitted), allowed)
}

func TestCheckTransition_TerminalStatuses(t *testing.T) {
	for _, from := range []domain.AppointmentStatus{domain.StatusCancelled, domain.StatusCompleted} {
		for _, actor := range allRoles {
			assert.Empty(t, NextStatuses(from, actor))
		}
	}
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []domain.AppointmentStatus{domain.StatusApproved, domain.StatusCancelled},
		NextStatuses(domain.StatusPending, domain.RoleDoctor))
	assert.Equal(t, []domain.AppointmentStatus{domain.StatusCompleted, domain.StatusCancelled},
		NextStatuses(domain.StatusApproved, domain.RoleDoctor))
	assert.Equal(t, []domain.AppointmentStatus{domain.StatusCancelled},
		NextStatuses(domain.StatusPending, domain.RolePatient))
	assert.Empty(t, NextStatuses(domain.StatusApproved, domain.RolePatient))
}

func TestCheckBookingWindow(t *testing.T) {
	now := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time { return time.Date(2026, 10, 18+offset, 0, 0, 0, 0, time.UTC) }

	for _, offset := range []int{-1, 0, 31, 60} {
		err := CheckBookingWindow(day(offset), now)
		assert.True(t, domain.IsValidation(err), "offset %d", offset)
	}
	for _, offset := range []int{1, 2, 15, 29, 30} {
		assert.NoError(t, CheckBookingWindow(day(offset), now), "offset %d", offset)
	}
}

func TestValidateBooking(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	valid := BookingRequest{DoctorID: "d-1", Date: "2026-11-17", TimeSlot: "09:00 AM", Symptoms: "fever"}
	require.NoError(t, ValidateBooking(valid, now))

	cases := map[string]func(r *BookingRequest){
		"no doctor":      func(r *BookingRequest) { r.DoctorID = " " },
		"no date":        func(r *BookingRequest) { r.Date = "" },
		"bad date":       func(r *BookingRequest) { r.Date = "17/11/2026" },
		"today":          func(r *BookingRequest) { r.Date = "2026-10-18" },
		"too far":        func(r *BookingRequest) { r.Date = "2026-11-18" },
		"lunch slot":     func(r *BookingRequest) { r.TimeSlot = "01:00 PM" },
		"unknown slot":   func(r *BookingRequest) { r.TimeSlot = "9am" },
		"blank symptoms": func(r *BookingRequest) { r.Symptoms = "   " },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := valid
			mutate(&r)
			assert.True(t, domain.IsValidation(ValidateBooking(r, now)))
		})
	}
}

func TestValidateBooking_AcceptsTimestampDates(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	req := BookingRequest{DoctorID: "d-1", Date: "2026-10-19T00:00:00Z", TimeSlot: "05:00 PM", Symptoms: "cough"}
	assert.NoError(t, ValidateBooking(req, now))
}
