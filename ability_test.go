package abilitykit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernandezvara/abilitykit/rules"
)

func canOrFail(t *testing.T, u *User, action string, subject any) bool {
	t.Helper()
	ok, err := u.Ability.Can(action, subject)
	require.NoError(t, err)
	return ok
}

// TestNurseReadsPatientsInOwnEntity tests entity-scoped reads: a nurse at
// HTA1 sees patients belonging to HTA1, nothing else.
func TestNurseReadsPatientsInOwnEntity(t *testing.T) {
	nurse := decorated("nurse-1", "HTA1", "nurse")

	assert.True(t, canOrFail(t, nurse, "read", Subject{Type: "Patient", EntityIDs: []string{"HTA1"}}))
	assert.True(t, canOrFail(t, nurse, "read", Subject{Type: "Patient", EntityIDs: []string{"HTA1", "HTA2"}}))
	assert.False(t, canOrFail(t, nurse, "read", Subject{Type: "Patient", EntityIDs: []string{"SE1"}}))
}

// TestNurseUpdatesOwnPatientsOnly tests caregiver-scoped updates.
func TestNurseUpdatesOwnPatientsOnly(t *testing.T) {
	nurse := decorated("nurse-1", "HTA1", "nurse")

	assert.True(t, canOrFail(t, nurse, "update", Subject{Type: "Patient", CaregiverID: "nurse-1"}))

	// Entity-adjacent is not enough: the update permission is scoped to the
	// primary caregiver relation.
	other := Subject{Type: "Patient", CaregiverID: "nurse-2", EntityIDs: []string{"HTA1"}}
	assert.False(t, canOrFail(t, nurse, "update", other))
}

// TestManagerReadsOneLevelDown tests the sub-entities scope: a manager at
// CVS reaches patients in HTA1 but not in the sibling subtree.
func TestManagerReadsOneLevelDown(t *testing.T) {
	manager := decorated("manager-1", "CVS", "manager")

	assert.True(t, canOrFail(t, manager, "read", Subject{Type: "Patient", EntityIDs: []string{"HTA1"}}))
	assert.False(t, canOrFail(t, manager, "read", Subject{Type: "Patient", EntityIDs: []string{"SE1"}}))
}

// TestSuperAdminManagesEverything tests the unscoped manage-all permission.
func TestSuperAdminManagesEverything(t *testing.T) {
	admin := decorated("admin-1", "SmartMonitor", "super_admin")

	checks := []struct {
		action  string
		subject any
	}{
		{"read", "Patient"},
		{"delete", "User"},
		{"archive", "Entity"},
		{"read", Subject{Type: "Patient", EntityIDs: []string{"SE1"}}},
		{"update", Subject{Type: "Patient", CaregiverID: "someone-else"}},
		// No scope restriction means no subject classification either.
		{"configure", Subject{Type: "Spaceship"}},
	}

	for _, c := range checks {
		assert.True(t, canOrFail(t, admin, c.action, c.subject), "%s %v", c.action, c.subject)
	}
}

// TestManagerCreatesUsersInDescendantEntities tests a create check against a
// prospective subject: the entityId stand-in must fall within the manager's
// one-level descendant set.
func TestManagerCreatesUsersInDescendantEntities(t *testing.T) {
	manager := decorated("manager-1", "CVS", "manager")

	assert.True(t, canOrFail(t, manager, "create", Subject{Type: "User", EntityID: "CVS"}))
	assert.True(t, canOrFail(t, manager, "create", Subject{Type: "User", EntityID: "HTA1"}))
	assert.False(t, canOrFail(t, manager, "create", Subject{Type: "User", EntityID: "SE1"}))
}

// TestNurseCreatesPatientsEitherScope tests that a permission listing
// several scopes applies when any one of them holds.
func TestNurseCreatesPatientsEitherScope(t *testing.T) {
	nurse := decorated("nurse-1", "HTA1", "nurse")

	// In the nurse's entity, but another nurse is the caregiver.
	assert.True(t, canOrFail(t, nurse, "create", Subject{Type: "Patient", EntityID: "HTA1", CaregiverID: "nurse-2"}))

	// Elsewhere, but the nurse is the declared caregiver.
	assert.True(t, canOrFail(t, nurse, "create", Subject{Type: "Patient", EntityID: "SE1", CaregiverID: "nurse-1"}))

	// Neither relation holds.
	assert.False(t, canOrFail(t, nurse, "create", Subject{Type: "Patient", EntityID: "SE1", CaregiverID: "nurse-2"}))
}

// TestRegistrarConditionsTemplate tests a conditions-scoped permission: the
// template resolves per user at decoration time and matches the subject's
// attributes exactly.
func TestRegistrarConditionsTemplate(t *testing.T) {
	registrar := decorated("reg-1", "CVS", "registrar")

	assert.True(t, canOrFail(t, registrar, "create", Subject{Type: "User", EntityID: "CVS"}))
	assert.False(t, canOrFail(t, registrar, "create", Subject{Type: "User", EntityID: "HTA1"}))
}

// TestCannot tests the negated facade query.
func TestCannot(t *testing.T) {
	nurse := decorated("nurse-1", "HTA1", "nurse")

	ok, err := nurse.Ability.Cannot("read", Subject{Type: "Patient", EntityIDs: []string{"SE1"}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = nurse.Ability.Cannot("read", Subject{Type: "Patient", EntityIDs: []string{"HTA1"}})
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestDecorateUnknownScopeFailsEagerly tests that a misconfigured role fails
// at decoration, before any check is attempted.
func TestDecorateUnknownScopeFailsEagerly(t *testing.T) {
	user := &User{
		ID:     "u1",
		Entity: testTree(),
		Roles: []*Role{
			{
				Name: "broken",
				Permissions: []Permission{
					{Actions: []string{"read"}, Subject: "Patient", Scopes: []string{"NOT_A_SCOPE"}},
				},
			},
		},
	}

	err := Decorate(user)
	require.Error(t, err)
	assert.True(t, IsUnknownScope(err))
	assert.Nil(t, user.Ability)

	var akErr *Error
	require.ErrorAs(t, err, &akErr)
	assert.Equal(t, "NOT_A_SCOPE", akErr.Scope)
	assert.Equal(t, "broken", akErr.Role)
}

// TestDecorateUndefinedTemplateVariableFails tests that a conditions
// template referencing a missing variable fails decoration.
func TestDecorateUndefinedTemplateVariableFails(t *testing.T) {
	roles, err := testCatalog().Roles("registrar")
	require.NoError(t, err)

	// The registrar template needs user.entity.id; this user has no entity.
	user := &User{ID: "reg-1", Roles: roles}

	err = Decorate(user)
	require.Error(t, err)
	assert.True(t, IsUndefinedVariable(err))
	assert.Nil(t, user.Ability)
}

// TestDecorateInvalidPermission tests structural validation of
// declarations.
func TestDecorateInvalidPermission(t *testing.T) {
	user := &User{
		ID: "u1",
		Roles: []*Role{
			{Name: "empty", Permissions: []Permission{{Subject: "Patient"}}},
		},
	}

	err := Decorate(user)
	require.Error(t, err)
	assert.True(t, IsInvalidPermission(err))
}

// TestDecorateCopyLeavesOriginalUntouched tests the immutable decoration
// path: the input gains no ability and shares no decision state with the
// copies, while both copies answer identically.
func TestDecorateCopyLeavesOriginalUntouched(t *testing.T) {
	original := testUser("nurse-1", "HTA1", "nurse")

	first, err := DecorateCopy(original)
	require.NoError(t, err)
	second, err := DecorateCopy(original)
	require.NoError(t, err)

	assert.Nil(t, original.Ability)
	require.NotNil(t, first.Ability)
	require.NotNil(t, second.Ability)
	assert.NotSame(t, first.Ability, second.Ability)

	// Config data stays shared by reference.
	assert.Same(t, original.Entity, first.Entity)
	assert.Same(t, original.Roles[0], first.Roles[0])

	subject := Subject{Type: "Patient", EntityIDs: []string{"HTA1"}}
	assert.Equal(t, canOrFail(t, first, "read", subject), canOrFail(t, second, "read", subject))
	assert.True(t, canOrFail(t, first, "read", subject))
}

// TestDecorateRebuildsAbility tests that decorating again replaces the
// decision object wholesale.
func TestDecorateRebuildsAbility(t *testing.T) {
	user := decorated("nurse-1", "HTA1", "nurse")
	previous := user.Ability

	require.NoError(t, Decorate(user))
	assert.NotSame(t, previous, user.Ability)
}

// TestCanUnsupportedSubjectTypeFailsAtCheck tests the check-time fatal path:
// an entity scope evaluated against an unclassified subject type errors out
// rather than denying.
func TestCanUnsupportedSubjectTypeFailsAtCheck(t *testing.T) {
	catalog := NewCatalog()
	catalog.Role("auditor").
		Permit("all", "read").Scopes(ScopeBelongsToEntityTree)
	roles, err := catalog.Roles("auditor")
	require.NoError(t, err)

	auditor := &User{ID: "aud-1", Entity: testTree(), Roles: roles}
	require.NoError(t, Decorate(auditor))

	_, err = auditor.Ability.Can("read", Subject{Type: "Appointment", EntityIDs: []string{"CVS"}})
	require.Error(t, err)
	assert.True(t, IsUnsupportedSubject(err))
}

// TestDecorateWithSubjectKind tests registering an additional patient-like
// subject type.
func TestDecorateWithSubjectKind(t *testing.T) {
	catalog := NewCatalog()
	catalog.Role("device_nurse").
		Permit("Device", "read").Scopes(ScopeBelongsToEntity)
	roles, err := catalog.Roles("device_nurse")
	require.NoError(t, err)

	user := &User{ID: "n1", Entity: findEntity(testTree(), "HTA1"), Roles: roles}
	require.NoError(t, Decorate(user, WithSubjectKind("Device", KindPatientLike)))

	assert.True(t, canOrFail(t, user, "read", Subject{Type: "Device", EntityIDs: []string{"HTA1"}}))
	assert.False(t, canOrFail(t, user, "read", Subject{Type: "Device", EntityIDs: []string{"SE1"}}))
}

// TestDecorateWithCustomScope tests extending the scope catalog for one
// decoration.
func TestDecorateWithCustomScope(t *testing.T) {
	catalog := NewCatalog()
	catalog.Role("night_shift").
		Permit("Patient", "read").Scopes("ON_SHIFT")
	roles, err := catalog.Roles("night_shift")
	require.NoError(t, err)

	user := &User{ID: "n1", Entity: testTree(), Roles: roles}
	onShift := func(u *User, s Subject, _ *rules.Rule) (bool, error) {
		shift, _ := s.Attribute("shift")
		return shift == "night", nil
	}
	require.NoError(t, Decorate(user, WithScope("ON_SHIFT", onShift)))

	assert.True(t, canOrFail(t, user, "read", Subject{Type: "Patient", Attrs: map[string]any{"shift": "night"}}))
	assert.False(t, canOrFail(t, user, "read", Subject{Type: "Patient", Attrs: map[string]any{"shift": "day"}}))
}

// TestExpansionPreservesOrder tests that roles expand in role order, then
// declaration order, with no reordering or deduplication.
func TestExpansionPreservesOrder(t *testing.T) {
	user := decorated("u1", "CVS", "nurse", "manager")

	rs := user.Ability.Rules()
	require.Len(t, rs, 5)
	assert.Equal(t, []string{"read"}, rs[0].Actions)   // nurse
	assert.Equal(t, []string{"update"}, rs[1].Actions) // nurse
	assert.Equal(t, []string{"create"}, rs[2].Actions) // nurse
	assert.Equal(t, "Patient", rs[3].Subject)          // manager read
	assert.Equal(t, "User", rs[4].Subject)             // manager create
}

// TestAbilityUserID tests the accessor.
func TestAbilityUserID(t *testing.T) {
	user := decorated("nurse-1", "HTA1", "nurse")
	assert.Equal(t, "nurse-1", user.Ability.UserID())
}
