// Package dashboard derives the summary counters and notifications shown on
// the patient and doctor home views. Everything here is a pure function of
// its inputs.
package dashboard

import (
	"fmt"
	"time"

	"medunit-portal/internal/domain"
)

// RecentRecordWindow is how far back a record still counts as new.
const RecentRecordWindow = 7 * 24 * time.Hour

// NotificationType classifies a notification entry.
type NotificationType string

const (
	NotificationAppointment NotificationType = "appointment"
	NotificationPending     NotificationType = "pending"
	NotificationRecord      NotificationType = "record"
)

// Notification is one entry of the dashboard's notification list.
type Notification struct {
	Type    NotificationType `json:"type" yaml:"type"`
	Message string           `json:"message" yaml:"message"`
	Urgent  bool             `json:"urgent,omitempty" yaml:"urgent,omitempty"`
	Date    time.Time        `json:"date" yaml:"date"`
}

// Summary is the dashboard projection for one view.
type Summary struct {
	UpcomingCount     int            `json:"upcomingCount" yaml:"upcomingCount"`
	TodayCount        int            `json:"todayCount" yaml:"todayCount"`
	PendingCount      int            `json:"pendingCount" yaml:"pendingCount"`
	RecentRecordCount int            `json:"recentRecordCount" yaml:"recentRecordCount"`
	Notifications     []Notification `json:"notifications" yaml:"notifications"`
}

// Summarize computes the counters and notifications for view from scratch.
// Calendar comparisons use now's location. Appointments whose date cannot be
// read are left out of the date-based counters.
func Summarize(view domain.Role, appointments []domain.Appointment, records []domain.MedicalRecord, now time.Time) Summary {
	today := domain.StartOfDay(now)
	var s Summary

	for _, a := range appointments {
		if a.Status == domain.StatusPending {
			s.PendingCount++
		}
		day, err := a.Day(now.Location())
		if err != nil {
			continue
		}
		switch {
		case day.After(today) && a.Status != domain.StatusCancelled:
			s.UpcomingCount++
		case day.Equal(today) && !a.Status.Terminal():
			s.TodayCount++
		}
	}

	cutoff := now.Add(-RecentRecordWindow)
	for _, r := range records {
		if r.CreatedAt.After(cutoff) {
			s.RecentRecordCount++
		}
	}

	s.Notifications = []Notification{}
	switch view {
	case domain.RolePatient:
		if s.UpcomingCount > 0 {
			s.Notifications = append(s.Notifications, Notification{
				Type:    NotificationAppointment,
				Message: fmt.Sprintf("You have %d upcoming appointment(s)", s.UpcomingCount),
				Date:    now,
			})
		}
	case domain.RoleDoctor:
		if s.TodayCount > 0 {
			s.Notifications = append(s.Notifications, Notification{
				Type:    NotificationAppointment,
				Message: fmt.Sprintf("You have %d appointment(s) today", s.TodayCount),
				Urgent:  true,
				Date:    now,
			})
		}
	}
	if s.PendingCount > 0 && view.In(domain.RolePatient, domain.RoleDoctor) {
		s.Notifications = append(s.Notifications, Notification{
			Type:    NotificationPending,
			Message: fmt.Sprintf("%d appointment(s) pending approval", s.PendingCount),
			Date:    now,
		})
	}
	if view == domain.RolePatient && s.RecentRecordCount > 0 {
		s.Notifications = append(s.Notifications, Notification{
			Type:    NotificationRecord,
			Message: fmt.Sprintf("%d new medical record(s) available", s.RecentRecordCount),
			Date:    now,
		})
	}
	return s
}
