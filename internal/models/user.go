package models

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is an account that can receive notifications and trigger them.
type User struct {
	Base
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	DisplayName  string `gorm:"size:255" json:"display_name"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"size:32;not null" json:"role"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the provided password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

func (u User) String() string {
	return u.Email
}
