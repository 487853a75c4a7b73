package models

import (
	"golang.org/x/crypto/bcrypt"

	"medunit-portal/internal/domain"
)

// User is an account of any role.
type User struct {
	BaseModel
	Name           string      `gorm:"size:255;not null" json:"name"`
	Email          string      `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password       string      `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	Role           domain.Role `gorm:"size:20;index;default:'patient'" json:"role"`
	Specialization string      `gorm:"size:100" json:"specialization,omitempty"`
	StudentID      string      `gorm:"size:50" json:"studentId,omitempty"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Profile is the account as the owner sees it.
func (u *User) Profile() domain.Profile {
	return domain.Profile{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Specialization: u.Specialization,
		StudentID:      u.StudentID,
	}
}

// Person is the summary embedded in appointments and records. Nil when the
// relation was not loaded.
func (u *User) Person() *domain.Person {
	if u == nil || u.ID == "" {
		return nil
	}
	return &domain.Person{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Specialization: u.Specialization,
		StudentID:      u.StudentID,
	}
}
