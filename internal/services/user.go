package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/policy"
	"github.com/diewo77/epic-events/internal/report"
	"github.com/diewo77/epic-events/internal/validation"
)

// Hasher produces password digests.
type Hasher interface {
	Hash(plain string) (string, error)
}

// RegisterInput creates a user with the named role.
type RegisterInput struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// UserUpdate is a partial update of another user's details.
type UserUpdate struct {
	FullName Optional[string]
	Email    Optional[string]
	Password Optional[string]
}

type UserService struct {
	base
	hasher Hasher
}

func NewUserService(d Deps, hasher Hasher) *UserService {
	return &UserService{base: newBase(d), hasher: hasher}
}

func (s *UserService) Register(ctx context.Context, actor *models.User, in RegisterInput) (*models.User, error) {
	op := policy.RegisterUser.String()
	if err := s.authz.Authorize(ctx, actor, policy.RegisterUser, nil); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(in.Email)
	v := validation.Struct(in)
	validation.MaxBytes("password", in.Password, validation.MaxPasswordBytes, v)
	if err := v.Err(op); err != nil {
		return nil, err
	}
	roleName, err := models.ParseRoleName(in.Role)
	if err != nil {
		return nil, apperr.NotFound(op, "role", in.Role)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        in.Email,
		PasswordHash: hash,
	}
	err = s.inTx(ctx, op, func(tx *gorm.DB) error {
		var role models.Role
		err := tx.Where("name = ?", roleName).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(op, "role", roleName)
		}
		if err != nil {
			return err
		}
		taken, err := emailTaken(tx, &models.User{}, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateEmail(op)
		}
		user.RoleID = role.ID
		user.Role = &role
		return tx.Omit("Role").Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.UserRegistered, "user registered", map[string]any{
		"user_id": user.ID, "role": string(roleName), "by": actor.ID,
	})
	return &user, nil
}

// Update changes the name, email or password of the user identified by email.
func (s *UserService) Update(ctx context.Context, actor *models.User, email string, upd UserUpdate) (*models.User, error) {
	op := policy.UpdateUser.String()
	if err := s.authz.Precheck(ctx, actor, policy.UpdateUser); err != nil {
		return nil, err
	}

	var hash string
	if pw, ok := upd.Password.Get(); ok {
		if strings.TrimSpace(pw) == "" {
			return nil, apperr.InvalidInput(op, "password must not be empty", map[string]string{"password": "required"})
		}
		v := validation.Violations{}
		validation.MaxBytes("password", pw, validation.MaxPasswordBytes, v)
		if err := v.Err(op); err != nil {
			return nil, err
		}
		var err error
		if hash, err = s.hasher.Hash(pw); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	var user models.User
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		err := tx.Preload("Role").Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(op, "user", email)
		}
		if err != nil {
			return err
		}
		if err := s.authz.Authorize(ctx, actor, policy.UpdateUser, &user); err != nil {
			return err
		}

		upd.FullName.applyTo(&user.FullName)
		upd.Email.applyTo(&user.Email)
		user.Email = strings.TrimSpace(user.Email)
		if hash != "" {
			user.PasswordHash = hash
		}
		v := validation.Struct(RegisterInput{
			FullName: user.FullName, Email: user.Email, Password: "-", Role: string(user.RoleName()),
		})
		if err := v.Err(op); err != nil {
			return err
		}
		if upd.Email.Set {
			taken, err := emailTaken(tx, &models.User{}, user.Email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return duplicateEmail(op)
			}
		}
		return tx.Omit("Role").Save(&user).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.UserUpdated, "user updated", map[string]any{"user_id": user.ID, "by": actor.ID})
	return &user, nil
}
