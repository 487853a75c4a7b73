package apiclient

import (
	"context"
	"net/http"

	"medunit-portal/internal/domain"
)

// NewRecord is the body of a record creation.
type NewRecord struct {
	PatientID    string                    `json:"patientId"`
	Diagnosis    string                    `json:"diagnosis"`
	Prescription []domain.PrescriptionItem `json:"prescription"`
	Notes        string                    `json:"notes,omitempty"`
}

// Records lists the caller's records: their own for patients, the ones they
// wrote for doctors.
func (c *Client) Records(ctx context.Context) ([]domain.MedicalRecord, error) {
	var out []domain.MedicalRecord
	if err := c.do(ctx, http.MethodGet, "/records", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Patients lists every patient a doctor may write a record for.
func (c *Client) Patients(ctx context.Context) ([]domain.Person, error) {
	var out []domain.Person
	if err := c.do(ctx, http.MethodGet, "/records/patients", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRecord(ctx context.Context, rec NewRecord) (domain.MedicalRecord, error) {
	if rec.Prescription == nil {
		rec.Prescription = []domain.PrescriptionItem{}
	}
	var out domain.MedicalRecord
	err := c.do(ctx, http.MethodPost, "/records", rec, &out)
	return out, err
}
