package abilitykit

// Shared fixtures: the SmartMonitor organizational tree and a role catalog
// exercising every scope.
//
//	SmartMonitor
//	├── CVS
//	│   ├── HTA1
//	│   └── HTA2
//	└── CVSPilot
//	    ├── SE1
//	    └── SE2

func testTree() *Entity {
	return &Entity{
		ID:   "SmartMonitor",
		Name: "Smart Monitor",
		Entities: []*Entity{
			{
				ID:   "CVS",
				Name: "CVS",
				Entities: []*Entity{
					{ID: "HTA1", Name: "HTA 1"},
					{ID: "HTA2", Name: "HTA 2"},
				},
			},
			{
				ID:   "CVSPilot",
				Name: "CVS Pilot",
				Entities: []*Entity{
					{ID: "SE1", Name: "SE 1"},
					{ID: "SE2", Name: "SE 2"},
				},
			},
		},
	}
}

// findEntity walks the fixture tree for the node with the given ID.
func findEntity(root *Entity, id string) *Entity {
	if root.ID == id {
		return root
	}
	for _, child := range root.Entities {
		if found := findEntity(child, id); found != nil {
			return found
		}
	}
	return nil
}

func testCatalog() *Catalog {
	catalog := NewCatalog()
	catalog.Role("nurse").
		Permit("Patient", "read").Scopes(ScopeBelongsToEntity).
		Permit("Patient", "update").Scopes(ScopeIsPrimaryCaregiver).
		Permit("Patient", "create").Scopes(ScopeIsPrimaryCaregiver, ScopeBelongsToSubEntities).
		Role("manager").
		Permit("Patient", "read").Scopes(ScopeBelongsToSubEntities).
		Permit("User", "create").Scopes(ScopeBelongsToSubEntities).
		Role("registrar").
		Permit("User", "create").Where(map[string]any{"entityId": "${user.entity.id}"}).
		Role("super_admin").
		Permit("all", "manage")
	return catalog
}

// testUser builds a user at the given entity holding the given roles from
// the fixture catalog.
func testUser(id, entityID string, roleNames ...string) *User {
	tree := testTree()
	roles, err := testCatalog().Roles(roleNames...)
	if err != nil {
		panic(err)
	}
	return &User{
		ID:     id,
		Entity: findEntity(tree, entityID),
		Roles:  roles,
	}
}

// decorated builds and decorates a test user, failing the fixture on error.
func decorated(id, entityID string, roleNames ...string) *User {
	u := testUser(id, entityID, roleNames...)
	if err := Decorate(u); err != nil {
		panic(err)
	}
	return u
}
