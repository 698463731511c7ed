package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/config"
	"github.com/diewo77/epic-events/internal/models"
)

// Hasher produces a password digest.
type Hasher interface {
	Hash(plain string) (string, error)
}

// SeedRoles creates the fixed role set. Safe to call repeatedly.
func SeedRoles(db *gorm.DB) error {
	const op = "db.SeedRoles"
	for _, name := range models.AllRoles {
		role := models.Role{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap administrator when configured and absent.
// It reports whether a user was created.
func SeedAdmin(db *gorm.DB, hasher Hasher, cfg config.BootstrapConfig) (bool, error) {
	const op = "db.SeedAdmin"
	if !cfg.HasBootstrapAdmin() {
		return false, nil
	}
	email := strings.TrimSpace(cfg.AdminEmail)

	var existing models.User
	err := db.Where("LOWER(email) = LOWER(?)", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var role models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
		return false, fmt.Errorf("%s: admin role: %w", op, err)
	}
	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	admin := models.User{
		FullName:     cfg.AdminFullName,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Setup migrates the schema and seeds roles.
func Setup(db *gorm.DB, cfg config.DatabaseConfig) error {
	if err := Migrate(db, cfg, nil); err != nil {
		return err
	}
	return SeedRoles(db)
}
