package abilitykit

import "sync"

// Catalog holds the application's role definitions. It is created at startup
// with the fluent builder and should be treated as immutable afterwards; the
// *Role values it hands out are shared by reference across all users.
type Catalog struct {
	mu    sync.RWMutex
	roles map[string]*Role
}

// NewCatalog creates an empty role catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		roles: make(map[string]*Role),
	}
}

// Role starts defining a new role. Returns a RoleBuilder for fluent
// configuration.
//
// Example:
//
//	catalog.Role("nurse").
//	    Permit("Patient", "read").Scopes(abilitykit.ScopeBelongsToEntity).
//	    Permit("Patient", "update").Scopes(abilitykit.ScopeIsPrimaryCaregiver)
func (c *Catalog) Role(name string) *RoleBuilder {
	c.mu.Lock()
	defer c.mu.Unlock()

	role := &Role{Name: name}
	c.roles[name] = role
	return &RoleBuilder{role: role, catalog: c}
}

// Get returns the role definition by name, or nil if not defined.
func (c *Catalog) Get(name string) *Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roles[name]
}

// Roles resolves role names into the shared role definitions, in the given
// order. Unknown names fail with ErrInvalidPermission context.
func (c *Catalog) Roles(names ...string) ([]*Role, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Role, 0, len(names))
	for _, name := range names {
		role, ok := c.roles[name]
		if !ok {
			return nil, NewError(ErrInvalidPermission, "role "+name+" is not defined").
				WithRole(name)
		}
		out = append(out, role)
	}
	return out, nil
}

// Validate checks every role in the catalog against the scope catalog and
// permission shape rules, so that misconfiguration surfaces at startup
// rather than at the first decoration. Options extend the scope and subject
// tables the same way they do for Decorate.
func (c *Catalog) Validate(opts ...Option) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	o := newDecorateOptions(opts)
	catalog := builtinScopes(o.kinds)
	for name, fn := range o.scopes {
		catalog[name] = fn
	}

	for _, role := range c.roles {
		for _, perm := range role.Permissions {
			if len(perm.Actions) == 0 {
				return NewError(ErrInvalidPermission, "permission declares no actions").
					WithRole(role.Name)
			}
			if perm.Subject == "" {
				return NewError(ErrInvalidPermission, "permission declares no subject").
					WithRole(role.Name)
			}
			for _, scope := range perm.Scopes {
				if _, ok := catalog[scope]; !ok {
					return NewError(ErrUnknownScope, "scope "+scope+" is not in the catalog").
						WithScope(scope).
						WithRole(role.Name)
				}
			}
		}
	}
	return nil
}

// RoleBuilder configures one role's permission declarations.
type RoleBuilder struct {
	role    *Role
	catalog *Catalog
}

// Permit appends an allow declaration: the actions are permitted on the
// subject type. Returns a PermissionBuilder to narrow the declaration.
func (b *RoleBuilder) Permit(subject string, actions ...string) *PermissionBuilder {
	b.role.Permissions = append(b.role.Permissions, Permission{
		Actions: actions,
		Subject: subject,
	})
	return &PermissionBuilder{
		role:  b,
		index: len(b.role.Permissions) - 1,
	}
}

// Role continues defining roles on the catalog (fluent API).
func (b *RoleBuilder) Role(name string) *RoleBuilder {
	return b.catalog.Role(name)
}

// Build returns the underlying role.
func (b *RoleBuilder) Build() *Role {
	return b.role
}

// PermissionBuilder narrows the last declared permission.
type PermissionBuilder struct {
	role  *RoleBuilder
	index int
}

// Scopes names the relational predicates narrowing this permission. The
// permission applies when any of them holds.
func (p *PermissionBuilder) Scopes(names ...string) *PermissionBuilder {
	perm := &p.role.role.Permissions[p.index]
	perm.Scopes = append(perm.Scopes, names...)
	return p
}

// Where attaches a conditions template to this permission. String values of
// the exact form "${path}" are substituted per user at decoration time.
//
// Example:
//
//	.Permit("User", "create").Where(map[string]any{"entityId": "${user.entity.id}"})
func (p *PermissionBuilder) Where(conditions map[string]any) *PermissionBuilder {
	p.role.role.Permissions[p.index].Conditions = conditions
	return p
}

// Permit continues declaring permissions on the same role (fluent API).
func (p *PermissionBuilder) Permit(subject string, actions ...string) *PermissionBuilder {
	return p.role.Permit(subject, actions...)
}

// Role continues defining roles on the catalog (fluent API).
func (p *PermissionBuilder) Role(name string) *RoleBuilder {
	return p.role.catalog.Role(name)
}

// Build returns the underlying role.
func (p *PermissionBuilder) Build() *Role {
	return p.role.role
}
