package models

import (
	"medunit-portal/internal/domain"
)

// MedicalRecord is a diagnosis written by a doctor. Rows are never updated.
type MedicalRecord struct {
	BaseModel
	PatientID string `gorm:"size:36;index"`
	DoctorID  string `gorm:"size:36;index"`
	Diagnosis string `gorm:"type:text;not null"`
	Notes     string `gorm:"type:text"`

	// Relations
	Patient      *User              `gorm:"foreignKey:PatientID"`
	Doctor       *User              `gorm:"foreignKey:DoctorID"`
	Prescription []PrescriptionItem `gorm:"foreignKey:MedicalRecordID"`
}

// PrescriptionItem is one medicine line; Position keeps the written order.
type PrescriptionItem struct {
	BaseModel
	MedicalRecordID string `gorm:"not null;type:varchar(36);index"`
	Position        int    `gorm:"not null"`
	Medicine        string `gorm:"size:255;not null"`
	Dosage          string `gorm:"size:255"`
}

func (r *MedicalRecord) ToDomain() domain.MedicalRecord {
	items := make([]domain.PrescriptionItem, 0, len(r.Prescription))
	for _, p := range r.Prescription {
		items = append(items, domain.PrescriptionItem{Medicine: p.Medicine, Dosage: p.Dosage})
	}
	return domain.MedicalRecord{
		ID:           r.ID,
		PatientID:    r.PatientID,
		DoctorID:     r.DoctorID,
		Diagnosis:    r.Diagnosis,
		Prescription: items,
		Notes:        r.Notes,
		Patient:      r.Patient.Person(),
		Doctor:       r.Doctor.Person(),
		CreatedAt:    r.CreatedAt,
	}
}

func RecordsToDomain(rows []MedicalRecord) []domain.MedicalRecord {
	out := make([]domain.MedicalRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}
