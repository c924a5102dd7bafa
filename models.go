package abilitykit

// Entity is a node in the organizational hierarchy tree, e.g. a hospital
// system, a pilot program or a sub-unit. Entities are long-lived reference
// data: created once at startup, read by the engine, never mutated by it.
//
// Entity graphs must be trees. No cycle detection is performed; walking a
// cyclic graph does not terminate.
type Entity struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Entities []*Entity `json:"entities,omitempty"`
}

// Permission declares an allow rule: the listed actions are permitted on the
// given subject type, optionally narrowed by named scopes and/or a conditions
// template.
//
// Actions may include the aliases "manage" (every action) and "crud"
// (create, read, update, delete). Subject may be "all" to match every
// subject type.
type Permission struct {
	// Actions granted by this declaration. Must be non-empty.
	Actions []string `json:"actions"`

	// Subject is the subject type name this declaration applies to,
	// or "all".
	Subject string `json:"subject"`

	// Scopes names the relational predicates narrowing this declaration.
	// When several are listed, the permission applies if any of them holds.
	Scopes []string `json:"scopes,omitempty"`

	// Conditions is an optional attribute-matching template. String values
	// of the exact form "${path}" are substituted at decoration time with
	// the value at that path in the template variables (e.g.
	// "${user.entity.id}"). The resolved map is matched for equality
	// against the subject's attributes.
	Conditions map[string]any `json:"conditions,omitempty"`
}

// Role is a named, ordered list of permission declarations. Roles are static
// configuration shared by reference across all users holding them; the
// engine never mutates them.
type Role struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// User is the acting principal: the single entity it belongs to, its roles
// in order, and, after decoration, the Ability answering permission checks.
type User struct {
	ID     string  `json:"id"`
	Entity *Entity `json:"entity,omitempty"`
	Roles  []*Role `json:"roles,omitempty"`

	// Ability is the decision object attached by Decorate. It is rebuilt
	// on every decoration call, never updated incrementally.
	Ability *Ability `json:"-"`
}

// Clone returns a copy of the user that shares the read-only Entity and Role
// configuration by reference but carries no Ability. The clone is safe to
// decorate without affecting the original.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := &User{
		ID:     u.ID,
		Entity: u.Entity,
	}
	if u.Roles != nil {
		clone.Roles = make([]*Role, len(u.Roles))
		copy(clone.Roles, u.Roles)
	}
	return clone
}

// RoleNames returns the names of the user's roles, in order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
