package models

import (
	"medunit-portal/internal/domain"
)

// Appointment is a booked consultation. Doctor, day and slot are indexed
// together for the double-booking check.
type Appointment struct {
	BaseModel
	PatientID string                   `gorm:"size:36;index"`
	DoctorID  string                   `gorm:"size:36;index:idx_doctor_slot"`
	Date      string                   `gorm:"size:10;index:idx_doctor_slot"`
	TimeSlot  string                   `gorm:"size:10;index:idx_doctor_slot"`
	Symptoms  string                   `gorm:"type:text"`
	Status    domain.AppointmentStatus `gorm:"size:20;index;default:'pending'"`
	Notes     string                   `gorm:"type:text"`

	// Relations
	Patient *User `gorm:"foreignKey:PatientID"`
	Doctor  *User `gorm:"foreignKey:DoctorID"`
}

// ToDomain converts the row into the wire shape.
func (a *Appointment) ToDomain() domain.Appointment {
	return domain.Appointment{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		TimeSlot:  a.TimeSlot,
		Symptoms:  a.Symptoms,
		Status:    a.Status,
		Notes:     a.Notes,
		Patient:   a.Patient.Person(),
		Doctor:    a.Doctor.Person(),
		CreatedAt: a.CreatedAt,
	}
}

// AppointmentsToDomain converts a slice, never returning nil.
func AppointmentsToDomain(rows []Appointment) []domain.Appointment {
	out := make([]domain.Appointment, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}
