package abilitykit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernandezvara/abilitykit/rules"
)

// TestCatalogBuilder tests the fluent role definition API.
func TestCatalogBuilder(t *testing.T) {
	catalog := NewCatalog()
	catalog.Role("nurse").
		Permit("Patient", "read", "list").Scopes(ScopeBelongsToEntity).
		Permit("Patient", "update").
		Scopes(ScopeIsPrimaryCaregiver).
		Role("admin").
		Permit("all", "manage")

	nurse := catalog.Get("nurse")
	require.NotNil(t, nurse)
	require.Len(t, nurse.Permissions, 2)
	assert.Equal(t, []string{"read", "list"}, nurse.Permissions[0].Actions)
	assert.Equal(t, "Patient", nurse.Permissions[0].Subject)
	assert.Equal(t, []string{ScopeBelongsToEntity}, nurse.Permissions[0].Scopes)
	assert.Equal(t, []string{ScopeIsPrimaryCaregiver}, nurse.Permissions[1].Scopes)

	admin := catalog.Get("admin")
	require.NotNil(t, admin)
	require.Len(t, admin.Permissions, 1)
	assert.Equal(t, "all", admin.Permissions[0].Subject)
}

// TestCatalogWhere tests attaching a conditions template.
func TestCatalogWhere(t *testing.T) {
	catalog := NewCatalog()
	catalog.Role("registrar").
		Permit("User", "create").Where(map[string]any{"entityId": "${user.entity.id}"})

	role := catalog.Get("registrar")
	require.NotNil(t, role)
	assert.Equal(t, map[string]any{"entityId": "${user.entity.id}"}, role.Permissions[0].Conditions)
}

// TestCatalogGetUnknown tests lookup of an undefined role.
func TestCatalogGetUnknown(t *testing.T) {
	assert.Nil(t, NewCatalog().Get("ghost"))
}

// TestCatalogRoles tests ordered resolution of role names.
func TestCatalogRoles(t *testing.T) {
	catalog := testCatalog()

	roles, err := catalog.Roles("manager", "nurse")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "manager", roles[0].Name)
	assert.Equal(t, "nurse", roles[1].Name)

	// Role definitions are shared by reference.
	again, err := catalog.Roles("nurse")
	require.NoError(t, err)
	assert.Same(t, roles[1], again[0])

	_, err = catalog.Roles("nurse", "ghost")
	require.Error(t, err)
	assert.True(t, IsInvalidPermission(err))
}

// TestCatalogValidate tests startup validation of the whole catalog.
func TestCatalogValidate(t *testing.T) {
	assert.NoError(t, testCatalog().Validate())

	unknownScope := NewCatalog()
	unknownScope.Role("broken").Permit("Patient", "read").Scopes("NOT_A_SCOPE")
	err := unknownScope.Validate()
	require.Error(t, err)
	assert.True(t, IsUnknownScope(err))

	noActions := NewCatalog()
	noActions.Role("broken").Permit("Patient")
	err = noActions.Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidPermission(err))

	noSubject := NewCatalog()
	noSubject.Role("broken").Permit("", "read")
	err = noSubject.Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidPermission(err))
}

// TestCatalogValidateCustomScope tests that validation accepts scopes added
// through options.
func TestCatalogValidateCustomScope(t *testing.T) {
	catalog := NewCatalog()
	catalog.Role("night_shift").Permit("Patient", "read").Scopes("ON_SHIFT")

	require.Error(t, catalog.Validate())
	assert.NoError(t, catalog.Validate(WithScope("ON_SHIFT", func(*User, Subject, *rules.Rule) (bool, error) {
		return true, nil
	})))
}
