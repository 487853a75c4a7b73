package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"medunit-portal/internal/config"
	"medunit-portal/internal/domain"
	"medunit-portal/internal/metrics"
	"medunit-portal/internal/models"
	"medunit-portal/internal/resetstore"
	"medunit-portal/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Resets resetstore.Store
	Log    zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, resets resetstore.Store, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg, Resets: resets, Log: log}
}

// RegisterRequest represents the request body for user registration.
// Admin accounts are never self-registered.
type RegisterRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	Role           string `json:"role" binding:"required,oneof=patient doctor"`
	StudentID      string `json:"studentId"`
	Specialization string `json:"specialization"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	email := normaliseEmail(req.Email)

	var existingUser models.User
	if err := h.DB.Where("email = ?", email).First(&existingUser).Error; err == nil {
		utils.Conflict(c, "User with this email already exists")
		return
	} else if !isNotFound(err) {
		internalError(c, "Failed to create user", err)
		return
	}

	user := models.User{
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Role:           domain.Role(req.Role),
		StudentID:      strings.TrimSpace(req.StudentID),
		Specialization: strings.TrimSpace(req.Specialization),
	}
	if err := user.SetPassword(req.Password); err != nil {
		internalError(c, "Failed to create user", err)
		return
	}
	if err := h.DB.Create(&user).Error; err != nil {
		internalError(c, "Failed to create user", err)
		return
	}

	h.Log.Info().Str("user", user.ID).Str("role", string(user.Role)).Msg("user registered")
	utils.Created(c, "User registered successfully", user.Profile())
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token and the role it was issued for.
type LoginResponse struct {
	Token string         `json:"token"`
	Role  domain.Role    `json:"role"`
	User  domain.Profile `json:"user"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", normaliseEmail(req.Email)).First(&user).Error; err != nil {
		if isNotFound(err) {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			internalError(c, "Login failed", err)
		}
		return
	}
	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	token, err := utils.GenerateToken(&user, h.Cfg)
	if err != nil {
		internalError(c, "Login failed", err)
		return
	}
	utils.Success(c, "Login successful", LoginResponse{Token: token, Role: user.Role, User: user.Profile()})
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, _, ok := caller(c)
	if !ok {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			utils.NotFound(c, "User profile not found")
		} else {
			internalError(c, "Failed to fetch profile", err)
		}
		return
	}
	utils.Success(c, "Profile fetched successfully", user.Profile())
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Role  domain.Role `json:"role" binding:"omitempty,oneof=patient doctor"`
}

// ResetTicket is returned outside production in place of an email.
type ResetTicket struct {
	ResetToken string `json:"resetToken,omitempty"`
	ResetURL   string `json:"resetUrl,omitempty"`
}

const forgotPasswordMessage = "If an account exists for this email, a reset link has been generated"

// ForgotPassword issues a single-use reset token. The answer is the same
// whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	email := normaliseEmail(req.Email)
	if req.Role == "" {
		req.Role = domain.RolePatient
	}

	var user models.User
	if err := h.DB.Where("email = ? AND role = ?", email, req.Role).First(&user).Error; err != nil {
		if isNotFound(err) {
			utils.Success(c, forgotPasswordMessage, nil)
		} else {
			internalError(c, "Failed to start password reset", err)
		}
		return
	}

	token := uuid.NewString()
	if err := h.Resets.Put(c.Request.Context(), token, user.ID, h.Cfg.PasswordResetTokenExpiry); err != nil {
		internalError(c, "Failed to start password reset", err)
		return
	}
	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	h.Log.Info().Str("user", user.ID).Msg("password reset requested")

	if h.Cfg.Production() {
		utils.Success(c, forgotPasswordMessage, nil)
		return
	}
	q := url.Values{"token": {token}, "email": {email}}
	utils.Success(c, forgotPasswordMessage, ResetTicket{
		ResetToken: token,
		ResetURL:   strings.TrimRight(h.Cfg.AppURL, "/") + "/reset-password?" + q.Encode(),
	})
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// ResetPassword redeems a reset token. A token is consumed even when the
// email does not match.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, err := h.Resets.Take(c.Request.Context(), req.Token)
	if errors.Is(err, resetstore.ErrNotFound) {
		utils.BadRequest(c, "Invalid or expired reset token")
		return
	}
	if err != nil {
		internalError(c, "Failed to reset password", err)
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			utils.BadRequest(c, "Invalid or expired reset token")
		} else {
			internalError(c, "Failed to reset password", err)
		}
		return
	}
	if user.Email != normaliseEmail(req.Email) {
		utils.BadRequest(c, "Invalid or expired reset token")
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		internalError(c, "Failed to reset password", err)
		return
	}
	if err := h.DB.Model(&user).Update("password", user.Password).Error; err != nil {
		internalError(c, "Failed to reset password", err)
		return
	}
	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	utils.Success(c, "Password has been reset successfully", nil)
}

func normaliseEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
