package models

import "time"

// User is an authenticated staff member. Users are never deleted.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // never exposed in JSON
	RoleID       uint      `gorm:"index;not null" json:"role_id"`
	Role         *Role     `gorm:"foreignKey:RoleID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"role,omitempty"`
}

// RoleName returns the user's role, or "" when the role was not loaded.
func (u *User) RoleName() RoleName {
	if u == nil || u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// HasRole reports whether the user holds role r.
func (u *User) HasRole(r RoleName) bool {
	return u.RoleName() == r
}
