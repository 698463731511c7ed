package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/config"
	"github.com/diewo77/epic-events/internal/db"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/policy"
	"github.com/diewo77/epic-events/internal/report"
)

type plainHasher struct{}

func (plainHasher) Hash(s string) (string, error) { return "hashed:" + s, nil }

type env struct {
	db       *gorm.DB
	svc      *Services
	recorder *report.Recorder

	admin, sam, other, dana, pat, gil *models.User
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}
	d, err := db.Open(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, db.Setup(d, cfg))
	t.Cleanup(func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return d
}

func newEnv(t *testing.T) *env {
	t.Helper()
	d := setupTestDB(t)
	e := &env{db: d, recorder: &report.Recorder{}}
	e.svc = New(Deps{DB: d, Authorizer: policy.NewAuthorizer(), Reporter: e.recorder}, plainHasher{})

	e.admin = seedUser(t, d, "Ada Admin", "admin@epic.test", models.RoleAdmin)
	e.sam = seedUser(t, d, "Sam", "sam@epic.test", models.RoleCommercial)
	e.other = seedUser(t, d, "Olive", "olive@epic.test", models.RoleCommercial)
	e.dana = seedUser(t, d, "Dana", "dana@epic.test", models.RoleSupport)
	e.pat = seedUser(t, d, "Pat", "pat@epic.test", models.RoleSupport)
	e.gil = seedUser(t, d, "Gil", "gil@epic.test", models.RoleGestion)
	return e
}

func seedUser(t *testing.T, d *gorm.DB, name, email string, role models.RoleName) *models.User {
	t.Helper()
	var r models.Role
	require.NoError(t, d.Where("name = ?", role).First(&r).Error)
	u := models.User{FullName: name, Email: email, PasswordHash: "x", RoleID: r.ID}
	require.NoError(t, d.Create(&u).Error)
	u.Role = &r
	return &u
}

func strPtr(s string) *string { return &s }

func (e *env) client(t *testing.T, owner *models.User, email string) *models.Client {
	t.Helper()
	c, err := e.svc.Clients.Create(ctx, e.admin, ClientInput{
		FullName: "Client " + email, Email: email, Phone: "+33612345678",
		CompanyName: "Company", SalesContactID: owner.ID,
	})
	require.NoError(t, err)
	return c
}

func (e *env) contract(t *testing.T, clientID uint, owner *models.User, signed bool) *models.Contract {
	t.Helper()
	c, err := e.svc.Contracts.Create(ctx, e.admin, ContractInput{
		ClientID: clientID, SalesContactID: owner.ID, TotalAmount: 5000, AmountDue: 2500, Signed: signed,
	})
	require.NoError(t, err)
	return c
}

func (e *env) event(t *testing.T, contractID uint, support *string) *models.Event {
	t.Helper()
	ev, err := e.svc.Events.Create(ctx, e.admin, EventInput{
		ContractID: contractID, SupportContact: support,
		StartDate: june10(14), EndDate: june10(22), Location: "Test Location", Attendees: 50,
	})
	require.NoError(t, err)
	return ev
}
