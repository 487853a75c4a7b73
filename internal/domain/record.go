package domain

import "time"

// PrescriptionItem is one medicine line of a prescription.
type PrescriptionItem struct {
	Medicine string `json:"medicine"`
	Dosage   string `json:"dosage"`
}

// MedicalRecord is a diagnosis written by a doctor for a patient.
// Records are immutable once created.
type MedicalRecord struct {
	ID           string             `json:"id"`
	PatientID    string             `json:"patientId"`
	DoctorID     string             `json:"doctorId"`
	Diagnosis    string             `json:"diagnosis"`
	Prescription []PrescriptionItem `json:"prescription"`
	Notes        string             `json:"notes,omitempty"`
	Patient      *Person            `json:"patient,omitempty"`
	Doctor       *Person            `json:"doctor,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// Stats are the admin counters.
type Stats struct {
	Patients     int64 `json:"patients"`
	Doctors      int64 `json:"doctors"`
	Appointments int64 `json:"appointments"`
}

// Profile is the signed-in account as returned by the profile endpoint.
type Profile struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Role           Role   `json:"role,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	StudentID      string `json:"studentId,omitempty"`
}
