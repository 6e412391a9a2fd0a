package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/salesync/reports_backend/config"
	"golang.org/x/crypto/bcrypt"
)

// User is a phone-authenticated account. Phone is the login id and the key
// team rosters are written against.
type User struct {
	ID                    int       `gorm:"primary_key" json:"id"`
	Phone                 string    `gorm:"size:15;not null;unique" json:"phone"`
	PasswordHash          string    `gorm:"size:255;not null" json:"-"`
	AdminViewablePassword *string   `gorm:"size:255" json:"-"`
	Role                  UserRole  `gorm:"type:enum('ADMIN','MANAGER','AGENT');not null" json:"role"`
	Name                  *string   `gorm:"size:100" json:"name"`
	IsActive              *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy             *int      `json:"created_by"`
	ManagerId             *int      `json:"manager_id"`
}

type NewUser struct {
	Phone     string
	Password  string
	Role      UserRole
	Name      string
	ManagerId *int
}

func hashPassword(s string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateUser inserts a user, or returns the existing one with the same phone.
func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return nil, errors.New("phone is required")
	}
	if !input.Role.IsValid() {
		return nil, errors.New("invalid role")
	}
	db := config.GetDB()

	var existing User
	err := db.WithContext(ctx).Where("phone = ?", phone).Limit(1).Find(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return &existing, nil
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	active := true
	user := User{
		Phone:        phone,
		PasswordHash: hash,
		Role:         input.Role,
		IsActive:     &active,
		ManagerId:    input.ManagerId,
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = &name
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
