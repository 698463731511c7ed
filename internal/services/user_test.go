package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/report"
)

func TestUserRegister(t *testing.T) {
	e := newEnv(t)

	u, err := e.svc.Users.Register(ctx, e.admin, RegisterInput{
		FullName: "Nora", Email: "nora@epic.test", Password: "pw", Role: "support",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupport, u.RoleName())
	assert.Equal(t, "hashed:pw", u.PasswordHash)

	_, ok := e.recorder.Find(report.UserRegistered)
	assert.True(t, ok)

	_, err = e.svc.Users.Register(ctx, e.admin, RegisterInput{
		FullName: "Nora 2", Email: "nora@epic.test", Password: "pw", Role: "Support",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput, "duplicate email")

	_, err = e.svc.Users.Register(ctx, e.admin, RegisterInput{
		FullName: "Max", Email: "max@epic.test", Password: "pw", Role: "Manager",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound, "unknown role")

	_, err = e.svc.Users.Register(ctx, e.admin, RegisterInput{
		FullName: "Long", Email: "long@epic.test", Password: strings.Repeat("p", 73), Role: "Support",
	})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr, "password over bcrypt's limit")
	assert.Equal(t, apperr.KindInvalidInput, appErr.Kind)
	assert.Equal(t, "too_large", appErr.Fields["password"])

	for _, actor := range []*models.User{e.sam, e.dana, e.gil} {
		_, err = e.svc.Users.Register(ctx, actor, RegisterInput{
			FullName: "X", Email: "x@epic.test", Password: "pw", Role: "Support",
		})
		assert.ErrorIs(t, err, apperr.ErrPermissionDenied, actor.FullName)
	}
}

func TestUserUpdate(t *testing.T) {
	e := newEnv(t)

	u, err := e.svc.Users.Update(ctx, e.admin, "pat@epic.test", UserUpdate{
		FullName: Some("Patricia"), Password: Some("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", u.FullName)
	assert.Equal(t, "hashed:new", u.PasswordHash)
	assert.Equal(t, "pat@epic.test", u.Email)

	_, err = e.svc.Users.Update(ctx, e.admin, "pat@epic.test", UserUpdate{Email: Some("dana@epic.test")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = e.svc.Users.Update(ctx, e.admin, "ghost@epic.test", UserUpdate{FullName: Some("Ghost")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.svc.Users.Update(ctx, e.admin, "pat@epic.test", UserUpdate{Password: Some(" ")})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = e.svc.Users.Update(ctx, e.admin, "pat@epic.test", UserUpdate{Password: Some(strings.Repeat("é", 40))})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput, "80 bytes")

	u, err = e.svc.Users.Update(ctx, e.admin, "  PAT@Epic.Test ", UserUpdate{FullName: Some("Patricia")})
	require.NoError(t, err, "lookup ignores case")
	assert.Equal(t, "pat@epic.test", u.Email)

	_, err = e.svc.Users.Update(ctx, e.sam, "pat@epic.test", UserUpdate{FullName: Some("Nope")})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	var stored models.User
	require.NoError(t, e.db.Where("email = ?", "pat@epic.test").First(&stored).Error)
	assert.Equal(t, "Patricia", stored.FullName)
}

func TestOptional(t *testing.T) {
	var unset Optional[int]
	_, ok := unset.Get()
	assert.False(t, ok)

	target := 7
	unset.applyTo(&target)
	assert.Equal(t, 7, target)

	Some(0).applyTo(&target)
	assert.Equal(t, 0, target, "explicit zero overwrites")

	var notes *string
	applyPtr(Some("hello"), &notes)
	require.NotNil(t, notes)
	applyPtr(Optional[string]{}, &notes)
	assert.Equal(t, "hello", *notes)
	applyPtr(Some(""), &notes)
	assert.Nil(t, notes)
}
