package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medunit-portal/internal/domain"
	"medunit-portal/internal/models"
	"medunit-portal/internal/utils"
)

// UserHandler serves the user directory and the admin counters.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

func (h *UserHandler) listByRole(c *gin.Context, role domain.Role, what string) {
	var users []models.User
	if err := h.DB.Where("role = ?", role).Order("name asc").Find(&users).Error; err != nil {
		internalError(c, "Failed to fetch "+what, err)
		return
	}
	out := make([]domain.Person, 0, len(users))
	for i := range users {
		out = append(out, *users[i].Person())
	}
	utils.Success(c, what+" fetched successfully", out)
}

// GetDoctors lists every doctor, for the booking form.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	h.listByRole(c, domain.RoleDoctor, "Doctors")
}

// GetPatients lists every patient, for doctors writing records.
func (h *UserHandler) GetPatients(c *gin.Context) {
	h.listByRole(c, domain.RolePatient, "Patients")
}

// GetStats returns the admin counters.
func (h *UserHandler) GetStats(c *gin.Context) {
	var stats domain.Stats
	if err := h.DB.Model(&models.User{}).Where("role = ?", domain.RolePatient).Count(&stats.Patients).Error; err != nil {
		internalError(c, "Failed to fetch stats", err)
		return
	}
	if err := h.DB.Model(&models.User{}).Where("role = ?", domain.RoleDoctor).Count(&stats.Doctors).Error; err != nil {
		internalError(c, "Failed to fetch stats", err)
		return
	}
	if err := h.DB.Model(&models.Appointment{}).Count(&stats.Appointments).Error; err != nil {
		internalError(c, "Failed to fetch stats", err)
		return
	}
	utils.Success(c, "Stats fetched successfully", stats)
}
