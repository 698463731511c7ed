package policy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/gate"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/policy"
)

const (
	A = gate.Allow
	D = gate.Deny
	O = gate.AllowIfOwner
)

// expected mirrors the permission table row by row.
var expected = map[policy.Operation]map[models.RoleName]gate.Decision{
	policy.CreateClient:    {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: D, models.RoleGestion: D},
	policy.UpdateClient:    {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: D, models.RoleGestion: D},
	policy.DeleteClient:    {models.RoleAdmin: A, models.RoleCommercial: D, models.RoleSupport: D, models.RoleGestion: D},
	policy.ListClients:     {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: A, models.RoleGestion: A},
	policy.CreateContract:  {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: D, models.RoleGestion: D},
	policy.UpdateContract:  {models.RoleAdmin: A, models.RoleCommercial: O, models.RoleSupport: D, models.RoleGestion: A},
	policy.ListContracts:   {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: A, models.RoleGestion: A},
	policy.FilterContracts: {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: D, models.RoleGestion: D},
	policy.CreateEvent:     {models.RoleAdmin: A, models.RoleCommercial: D, models.RoleSupport: A, models.RoleGestion: A},
	policy.UpdateEvent:     {models.RoleAdmin: A, models.RoleCommercial: D, models.RoleSupport: O, models.RoleGestion: D},
	policy.ListEvents:      {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: A, models.RoleGestion: A},
	policy.FilterEvents:    {models.RoleAdmin: A, models.RoleCommercial: A, models.RoleSupport: A, models.RoleGestion: A},
	policy.RegisterUser:    {models.RoleAdmin: A, models.RoleCommercial: D, models.RoleSupport: D, models.RoleGestion: D},
	policy.UpdateUser:      {models.RoleAdmin: A, models.RoleCommercial: D, models.RoleSupport: D, models.RoleGestion: D},
}

func userWithRole(id uint, name string, role models.RoleName) *models.User {
	return &models.User{ID: id, FullName: name, Role: &models.Role{Name: role}}
}

func strPtr(s string) *string { return &s }

func TestGrant_MatchesTable(t *testing.T) {
	require.Len(t, expected, len(policy.Operations), "every operation needs a row")
	for _, op := range policy.Operations {
		for _, role := range models.AllRoles {
			want, ok := expected[op][role]
			require.True(t, ok, "missing cell %s/%s", op, role)
			assert.Equal(t, want, policy.Grant(role, op), "%s/%s", op, role)
		}
	}
}

func TestGrant_UnknownRole(t *testing.T) {
	for _, op := range policy.Operations {
		assert.Equal(t, gate.Deny, policy.Grant("Intern", op), op.String())
	}
	assert.Nil(t, policy.ProfileFor("Intern"))
}

func TestDecide_ExhaustiveOwnerAndNonOwner(t *testing.T) {
	for _, op := range policy.Operations {
		for _, role := range models.AllRoles {
			actor := userWithRole(7, "Dana", role)
			var owned, foreign any
			switch op.Resource() {
			case policy.ResourceContract:
				owned = &models.Contract{SalesContactID: 7}
				foreign = &models.Contract{SalesContactID: 8}
			case policy.ResourceEvent:
				owned = &models.Event{SupportContact: strPtr("Dana")}
				foreign = &models.Event{SupportContact: strPtr("Pat")}
			case policy.ResourceClient:
				owned = &models.Client{SalesContactID: 7}
				foreign = &models.Client{SalesContactID: 8}
			default:
				owned = &models.User{ID: 7}
				foreign = &models.User{ID: 8}
			}

			want := expected[op][role]
			gotOwned := policy.Decide(role, op, owned, actor)
			gotForeign := policy.Decide(role, op, foreign, actor)

			switch want {
			case gate.Allow:
				assert.Equal(t, gate.Allow, gotOwned, "%s/%s owner", op, role)
				assert.Equal(t, gate.Allow, gotForeign, "%s/%s non-owner", op, role)
			case gate.Deny:
				assert.Equal(t, gate.Deny, gotOwned, "%s/%s owner", op, role)
				assert.Equal(t, gate.Deny, gotForeign, "%s/%s non-owner", op, role)
			case gate.AllowIfOwner:
				assert.Equal(t, gate.Allow, gotOwned, "%s/%s owner", op, role)
				assert.Equal(t, gate.Deny, gotForeign, "%s/%s non-owner", op, role)
			}
		}
	}
}

func TestDecide_OwnershipNeedsLoadedTarget(t *testing.T) {
	sam := userWithRole(7, "Sam", models.RoleCommercial)
	assert.Equal(t, gate.Deny, policy.Decide(models.RoleCommercial, policy.UpdateContract, nil, sam))

	dana := userWithRole(3, "Dana", models.RoleSupport)
	assert.Equal(t, gate.Deny, policy.Decide(models.RoleSupport, policy.UpdateEvent, &models.Event{}, dana),
		"unassigned event has no owner")
	assert.Equal(t, gate.Deny, policy.Decide(models.RoleSupport, policy.UpdateEvent, &models.Contract{SalesContactID: 3}, dana),
		"wrong target type")
}

func TestDecide_NilIdentity(t *testing.T) {
	assert.Equal(t, gate.Deny, policy.Decide(models.RoleAdmin, policy.ListClients, nil, nil))
}

func TestAuthorizer_DanaAndPat(t *testing.T) {
	a := policy.NewAuthorizer()
	ctx := context.Background()
	event := &models.Event{ID: 1, SupportContact: strPtr("Dana")}

	dana := userWithRole(3, "Dana", models.RoleSupport)
	pat := userWithRole(4, "Pat", models.RoleSupport)

	require.NoError(t, a.Authorize(ctx, dana, policy.UpdateEvent, event))

	err := a.Authorize(ctx, pat, policy.UpdateEvent, event)
	require.ErrorIs(t, err, apperr.ErrPermissionDenied)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "UpdateEvent", appErr.Op)
	assert.Equal(t, "Support", appErr.Role)
}

func TestAuthorizer_GestionUpdatesAnyContract(t *testing.T) {
	a := policy.NewAuthorizer()
	gestion := userWithRole(5, "Gil", models.RoleGestion)

	assert.NoError(t, a.Authorize(context.Background(), gestion, policy.UpdateContract, &models.Contract{SalesContactID: 99}))
}

func TestAuthorizer_NoIdentity(t *testing.T) {
	err := policy.NewAuthorizer().Authorize(context.Background(), nil, policy.ListEvents, nil)
	assert.ErrorIs(t, err, apperr.ErrAuth)
}

func TestAuthorizer_UnloadedRoleDenied(t *testing.T) {
	err := policy.NewAuthorizer().Authorize(context.Background(), &models.User{ID: 1}, policy.ListClients, nil)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestAuthorizer_Hints(t *testing.T) {
	a := policy.NewAuthorizer()
	ctx := context.Background()
	sam := userWithRole(7, "Sam", models.RoleCommercial)

	assert.True(t, a.CanEdit(ctx, sam, policy.UpdateContract, &models.Contract{SalesContactID: 7}))
	assert.False(t, a.CanEdit(ctx, sam, policy.UpdateContract, &models.Contract{SalesContactID: 8}))
	assert.True(t, a.Offers(ctx, sam, policy.UpdateContract))
	assert.False(t, a.Offers(ctx, sam, policy.UpdateEvent))
	assert.False(t, a.CanEdit(ctx, nil, policy.UpdateClient, &models.Client{}))
}

func TestOperation_Names(t *testing.T) {
	seen := map[string]bool{}
	for _, op := range policy.Operations {
		assert.NotEqual(t, "UnknownOperation", op.String())
		assert.False(t, seen[op.String()], "duplicate name %s", op)
		seen[op.String()] = true
	}
	assert.Equal(t, gate.Permission("contract:update"), policy.UpdateContract.Permission())
	assert.Equal(t, "UnknownOperation", policy.Operation(0).String())
}

func TestAuthorizer_Precheck(t *testing.T) {
	a := policy.NewAuthorizer()
	ctx := context.Background()

	assert.NoError(t, a.Precheck(ctx, userWithRole(3, "Dana", models.RoleSupport), policy.UpdateEvent))
	assert.ErrorIs(t, a.Precheck(ctx, userWithRole(7, "Sam", models.RoleCommercial), policy.UpdateEvent), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, a.Precheck(ctx, nil, policy.UpdateEvent), apperr.ErrAuth)
}
