package handlers

import (
	"errors"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"medunit-portal/internal/appointment"
	"medunit-portal/internal/domain"
	"medunit-portal/internal/metrics"
	"medunit-portal/internal/models"
	"medunit-portal/internal/utils"
)

var (
	errSlotTaken     = errors.New("slot taken")
	errStatusChanged = errors.New("status changed concurrently")
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB  *gorm.DB
	Now Clock
	Log zerolog.Logger
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, now Clock, log zerolog.Logger) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Now: now, Log: log}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID string `json:"doctor" binding:"required"`
	Date     string `json:"date" binding:"required"`
	TimeSlot string `json:"timeSlot" binding:"required"`
	Symptoms string `json:"symptoms" binding:"required"`
}

// CreateAppointment books a pending appointment for the calling patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	patientID, _, ok := caller(c)
	if !ok {
		return
	}

	now := h.Now()
	booking := appointment.BookingRequest{
		DoctorID: strings.TrimSpace(req.DoctorID),
		Date:     strings.TrimSpace(req.Date),
		TimeSlot: req.TimeSlot,
		Symptoms: strings.TrimSpace(req.Symptoms),
	}
	if err := appointment.ValidateBooking(booking, now); err != nil {
		metrics.AppointmentRejectionsTotal.WithLabelValues("validation").Inc()
		domainError(c, err)
		return
	}
	day, _ := domain.ParseDate(booking.Date, now.Location())

	appt := models.Appointment{
		PatientID: patientID,
		DoctorID:  booking.DoctorID,
		Date:      domain.FormatDate(day),
		TimeSlot:  booking.TimeSlot,
		Symptoms:  booking.Symptoms,
		Status:    domain.StatusPending,
	}
	var doctor models.User
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		// Bookings for one doctor queue on the doctor row until commit.
		if err := lockDoctor(tx, appt.DoctorID, &doctor).Error; err != nil {
			return err
		}
		var taken int64
		if err := tx.Model(&models.Appointment{}).
			Where("doctor_id = ? AND date = ? AND time_slot = ? AND status <> ?", appt.DoctorID, appt.Date, appt.TimeSlot, domain.StatusCancelled).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errSlotTaken
		}
		return tx.Create(&appt).Error
	})
	if isNotFound(err) {
		utils.NotFound(c, "Doctor not found")
		return
	}
	if errors.Is(err, errSlotTaken) {
		metrics.AppointmentRejectionsTotal.WithLabelValues("double_booking").Inc()
		utils.Conflict(c, "This time slot is already booked for the selected doctor")
		return
	}
	if err != nil {
		internalError(c, "Failed to create appointment", err)
		return
	}

	metrics.AppointmentsBookedTotal.Inc()
	h.Log.Info().Str("appointment", appt.ID).Str("doctor", appt.DoctorID).Str("date", appt.Date).Msg("appointment booked")
	appt.Doctor = &doctor
	utils.Created(c, "Appointment booked successfully", appt.ToDomain())
}

// lockDoctor loads the doctor with id and holds a row lock on it for the rest
// of tx.
func lockDoctor(tx *gorm.DB, id string, doctor *models.User) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ? AND role = ?", id, domain.RoleDoctor).
		First(doctor)
}

// GetAppointmentsForUser lists the caller's appointments: their own for
// patients, their schedule for doctors, everything for admins.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	query := h.DB.Preload("Patient").Preload("Doctor").Order("date asc").Order("created_at asc")
	switch role {
	case domain.RolePatient:
		query = query.Where("patient_id = ?", userID)
	case domain.RoleDoctor:
		query = query.Where("doctor_id = ?", userID)
	}

	var rows []models.Appointment
	if err := query.Find(&rows).Error; err != nil {
		internalError(c, "Failed to fetch appointments", err)
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return domain.SlotIndex(rows[i].TimeSlot) < domain.SlotIndex(rows[j].TimeSlot)
	})
	utils.Success(c, "Appointments fetched successfully", models.AppointmentsToDomain(rows))
}

// UpdateAppointmentStatusRequest represents the request body for updating an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status domain.AppointmentStatus `json:"status" binding:"required,oneof=pending approved cancelled completed"`
	Notes  string                   `json:"notes"`
}

// UpdateAppointmentStatus moves an appointment along the lifecycle.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	h.transition(c, req.Status, req.Notes)
}

// WithdrawAppointment is a patient cancelling one of their own appointments.
func (h *AppointmentHandler) WithdrawAppointment(c *gin.Context) {
	h.transition(c, domain.StatusCancelled, "")
}

func (h *AppointmentHandler) transition(c *gin.Context, to domain.AppointmentStatus, notes string) {
	userID, role, ok := caller(c)
	if !ok {
		return
	}

	var appt models.Appointment
	if err := h.DB.First(&appt, "id = ?", c.Param("id")).Error; err != nil {
		if isNotFound(err) {
			utils.NotFound(c, "Appointment not found")
		} else {
			internalError(c, "Failed to update appointment", err)
		}
		return
	}

	if (role == domain.RoleDoctor && appt.DoctorID != userID) ||
		(role == domain.RolePatient && appt.PatientID != userID) {
		metrics.AppointmentRejectionsTotal.WithLabelValues("ownership").Inc()
		utils.Forbidden(c, "You are not authorized to update this appointment")
		return
	}

	from := appt.Status
	if err := appointment.CheckTransition(from, to, role); err != nil {
		metrics.AppointmentRejectionsTotal.WithLabelValues("invalid_transition").Inc()
		domainError(c, err)
		return
	}

	updates := map[string]any{"status": to}
	if notes = strings.TrimSpace(notes); notes != "" {
		updates["notes"] = notes
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Appointment{}).Where("id = ? AND status = ?", appt.ID, from).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errStatusChanged
		}
		return nil
	})
	if errors.Is(err, errStatusChanged) {
		utils.Conflict(c, "Appointment was changed by someone else, reload and try again")
		return
	}
	if err != nil {
		internalError(c, "Failed to update appointment", err)
		return
	}

	metrics.AppointmentTransitionsTotal.WithLabelValues(string(from), string(to), string(role)).Inc()
	h.Log.Info().Str("appointment", appt.ID).Str("from", string(from)).Str("to", string(to)).
		Str("actor", userID).Msg("appointment status changed")

	var updated models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&updated, "id = ?", appt.ID).Error; err != nil {
		internalError(c, "Failed to update appointment", err)
		return
	}
	utils.Success(c, "Appointment updated successfully", updated.ToDomain())
}
