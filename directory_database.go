package abilitykit

import (
	"context"
	"time"

	"github.com/fernandezvara/dbkit"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EntityRecord is the persisted form of an entity node. The tree is stored
// flat, one row per node with a parent reference.
type EntityRecord struct {
	bun.BaseModel `bun:"table:entities,alias:e"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	ParentID  string    `bun:"parent_id"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// UserRecord is the persisted form of a user: identity plus the single
// entity it belongs to. Role assignments live in their own table.
type UserRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name"`
	EntityID  string    `bun:"entity_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// UserRoleRecord assigns one named role to a user. Assignment order is
// preserved (by created_at, then id) because permission expansion is
// order-sensitive.
type UserRoleRecord struct {
	bun.BaseModel `bun:"table:user_roles,alias:ur"`

	ID        string    `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID    string    `bun:"user_id,notnull"`
	Role      string    `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// DatabaseDirectory is a Directory backed by Postgres. It stores users,
// role assignments and the entity tree; the role definitions themselves are
// code-level configuration resolved through a Catalog.
//
// Entity reference data is assumed small (an organizational hierarchy): the
// whole table is loaded and assembled per lookup rather than queried
// recursively.
type DatabaseDirectory struct {
	db      dbkit.IDB
	catalog *Catalog
}

// NewDatabaseDirectory creates a DatabaseDirectory.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	directory := abilitykit.NewDatabaseDirectory(db, catalog)
//	db.Migrate(ctx, directory.Migrations())
func NewDatabaseDirectory(db dbkit.IDB, catalog *Catalog) *DatabaseDirectory {
	return &DatabaseDirectory{
		db:      db,
		catalog: catalog,
	}
}

// Migrations returns all database migrations required for the directory.
// Use dbkit.Migrate(ctx, directory.Migrations()) to run them.
func (d *DatabaseDirectory) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "abilitykit-001",
			Description: "Create entities table",
			SQL: `
                CREATE TABLE IF NOT EXISTS entities (
                    id TEXT PRIMARY KEY,
                    name TEXT NOT NULL,
                    parent_id TEXT,
                    created_at TIMESTAMPTZ DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "abilitykit-002",
			Description: "Create users table",
			SQL: `
                CREATE TABLE IF NOT EXISTS users (
                    id TEXT PRIMARY KEY,
                    name TEXT,
                    entity_id TEXT NOT NULL,
                    created_at TIMESTAMPTZ DEFAULT current_timestamp
                )`,
		},
		{
			ID:          "abilitykit-003",
			Description: "Create user_roles table",
			SQL: `
                CREATE TABLE IF NOT EXISTS user_roles (
                    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
                    user_id TEXT NOT NULL,
                    role TEXT NOT NULL,
                    created_at TIMESTAMPTZ DEFAULT current_timestamp,
                    UNIQUE (user_id, role)
                )`,
		},
	}
}

// User implements Directory: it loads the user row, resolves its role
// assignments through the catalog and assembles its entity subtree.
func (d *DatabaseDirectory) User(ctx context.Context, id string) (*User, error) {
	var record UserRecord
	err := d.db.NewSelect().Model(&record).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if dbkit.IsNotFound(err) {
			return nil, NewError(ErrUserNotFound, "no user with ID "+id).WithUser(id)
		}
		return nil, dbkit.WithErr1(err, "GetUser").Err()
	}

	var assignments []UserRoleRecord
	err = dbkit.WithErr1(d.db.NewSelect().Model(&assignments).Where("user_id = ?", id).Order("created_at ASC", "id ASC").Scan(ctx), "GetUserRoles").Err()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(assignments))
	for _, a := range assignments {
		names = append(names, a.Role)
	}
	roles, err := d.catalog.Roles(names...)
	if err != nil {
		return nil, err
	}

	entity, err := d.Entity(ctx, record.EntityID)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:     record.ID,
		Entity: entity,
		Roles:  roles,
	}, nil
}

// Entity loads the entity node with the given ID, including its full
// descendant subtree.
func (d *DatabaseDirectory) Entity(ctx context.Context, id string) (*Entity, error) {
	var records []EntityRecord
	err := dbkit.WithErr1(d.db.NewSelect().Model(&records).Order("created_at ASC", "id ASC").Scan(ctx), "GetEntities").Err()
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*Entity, len(records))
	for _, r := range records {
		nodes[r.ID] = &Entity{ID: r.ID, Name: r.Name}
	}
	for _, r := range records {
		if r.ParentID == "" {
			continue
		}
		if parent, ok := nodes[r.ParentID]; ok {
			parent.Entities = append(parent.Entities, nodes[r.ID])
		}
	}

	node, ok := nodes[id]
	if !ok {
		return nil, NewError(ErrUserNotFound, "no entity with ID "+id)
	}
	return node, nil
}

// CreateEntity inserts one entity node under the given parent ("" for a
// root). Duplicate IDs are ignored so that seeding is idempotent.
func (d *DatabaseDirectory) CreateEntity(ctx context.Context, id, name, parentID string) error {
	record := &EntityRecord{
		ID:       id,
		Name:     name,
		ParentID: parentID,
	}
	result, err := d.db.NewInsert().Model(record).Exec(ctx)
	if err != nil && dbkit.IsDuplicate(err) {
		return nil
	}
	return dbkit.WithErr(result, err, "CreateEntity").Err()
}

// CreateUser inserts a user belonging to the given entity. A generated UUID
// is used when id is empty; the effective ID is returned.
func (d *DatabaseDirectory) CreateUser(ctx context.Context, id, name, entityID string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	record := &UserRecord{
		ID:       id,
		Name:     name,
		EntityID: entityID,
	}
	result, err := d.db.NewInsert().Model(record).Exec(ctx)
	if err := dbkit.WithErr(result, err, "CreateUser").Err(); err != nil {
		return "", err
	}
	return id, nil
}

// AssignRole appends a role assignment for the user. The role must be
// defined in the catalog; assigning an already held role is a no-op.
func (d *DatabaseDirectory) AssignRole(ctx context.Context, userID, role string) error {
	if d.catalog.Get(role) == nil {
		return NewError(ErrInvalidPermission, "role "+role+" is not defined").
			WithRole(role).
			WithUser(userID)
	}

	record := &UserRoleRecord{
		UserID: userID,
		Role:   role,
	}
	result, err := d.db.NewInsert().Model(record).Exec(ctx)
	if err != nil && dbkit.IsDuplicate(err) {
		return nil
	}
	return dbkit.WithErr(result, err, "AssignRole").Err()
}

// RevokeRole removes a role assignment from the user.
func (d *DatabaseDirectory) RevokeRole(ctx context.Context, userID, role string) error {
	result, err := d.db.NewDelete().Model((*UserRoleRecord)(nil)).Where("user_id = ? AND role = ?", userID, role).Exec(ctx)
	return dbkit.WithErr(result, err, "RevokeRole").Err()
}
