package models

import (
	"fmt"
	"strings"
)

// RoleName is the closed set of roles a user can hold.
type RoleName string

const (
	RoleAdmin      RoleName = "Admin"
	RoleCommercial RoleName = "Commercial"
	RoleSupport    RoleName = "Support"
	RoleGestion    RoleName = "Gestion"
)

// AllRoles lists every role in seeding order. The position fixes the seeded ID.
var AllRoles = []RoleName{RoleAdmin, RoleCommercial, RoleSupport, RoleGestion}

// Valid reports whether r is one of the known roles.
func (r RoleName) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRoleName resolves a role name case-insensitively.
func ParseRoleName(s string) (RoleName, error) {
	for _, known := range AllRoles {
		if strings.EqualFold(string(known), strings.TrimSpace(s)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Role is a seeded, immutable role row.
type Role struct {
	ID   uint     `gorm:"primaryKey" json:"id"`
	Name RoleName `gorm:"uniqueIndex;size:50;not null" json:"name"`
}
