package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"medunit-portal/internal/domain"
	"medunit-portal/internal/models"
	"medunit-portal/internal/utils"
)

// RecordHandler handles medical record requests.
type RecordHandler struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(db *gorm.DB, log zerolog.Logger) *RecordHandler {
	return &RecordHandler{DB: db, Log: log}
}

// PrescriptionItemRequest is one line of a prescription.
type PrescriptionItemRequest struct {
	Medicine string `json:"medicine" binding:"required"`
	Dosage   string `json:"dosage"`
}

// CreateRecordRequest represents the request body for creating a medical record.
type CreateRecordRequest struct {
	PatientID    string                    `json:"patientId" binding:"required"`
	Diagnosis    string                    `json:"diagnosis" binding:"required"`
	Prescription []PrescriptionItemRequest `json:"prescription" binding:"dive"`
	Notes        string                    `json:"notes"`
}

func withPrescription(db *gorm.DB) *gorm.DB {
	return db.Preload("Patient").Preload("Doctor").
		Preload("Prescription", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") })
}

// CreateRecord stores a record written by the calling doctor.
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	var req CreateRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	doctorID, _, ok := caller(c)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Diagnosis) == "" {
		utils.BadRequest(c, "Diagnosis is required")
		return
	}

	var patient models.User
	if err := h.DB.Where("id = ? AND role = ?", req.PatientID, domain.RolePatient).First(&patient).Error; err != nil {
		if isNotFound(err) {
			utils.NotFound(c, "Patient not found")
		} else {
			internalError(c, "Failed to create medical record", err)
		}
		return
	}

	record := models.MedicalRecord{
		PatientID: patient.ID,
		DoctorID:  doctorID,
		Diagnosis: strings.TrimSpace(req.Diagnosis),
		Notes:     strings.TrimSpace(req.Notes),
	}
	for i, item := range req.Prescription {
		record.Prescription = append(record.Prescription, models.PrescriptionItem{
			Position: i,
			Medicine: strings.TrimSpace(item.Medicine),
			Dosage:   strings.TrimSpace(item.Dosage),
		})
	}
	if err := h.DB.Create(&record).Error; err != nil {
		internalError(c, "Failed to create medical record", err)
		return
	}
	h.Log.Info().Str("record", record.ID).Str("patient", patient.ID).Str("doctor", doctorID).Msg("medical record created")

	var created models.MedicalRecord
	if err := withPrescription(h.DB).First(&created, "id = ?", record.ID).Error; err != nil {
		internalError(c, "Failed to create medical record", err)
		return
	}
	utils.Created(c, "Medical record created successfully", created.ToDomain())
}

// GetRecords lists records: a patient's own, the ones a doctor wrote, or all
// of them for admins. Newest first.
func (h *RecordHandler) GetRecords(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	query := withPrescription(h.DB).Order("created_at desc")
	switch role {
	case domain.RolePatient:
		query = query.Where("patient_id = ?", userID)
	case domain.RoleDoctor:
		query = query.Where("doctor_id = ?", userID)
	}

	var rows []models.MedicalRecord
	if err := query.Find(&rows).Error; err != nil {
		internalError(c, "Failed to fetch medical records", err)
		return
	}
	utils.Success(c, "Medical records fetched successfully", models.RecordsToDomain(rows))
}
