// Package abilitykit provides an attribute-based permission evaluation engine.
//
// AbilityKit decides whether a user may perform an action on a subject. A
// decision depends on the user's roles (each carrying permission declarations)
// and on relational facts computed at check time: whether the subject belongs
// to the user's organizational entity, to a descendant entity one level down,
// to any descendant at arbitrary depth, or whether the user is a primary or
// secondary caregiver of a patient-like subject.
//
// # Core Concepts
//
// Entity: A node in the organizational hierarchy tree (a hospital system, a
// pilot program, a sub-unit). Each user belongs to exactly one entity.
//
// Role: A named, ordered list of permission declarations. Roles are static
// configuration, shared by reference across all users holding them.
//
// Permission: An allow declaration of (actions, subject type), optionally
// narrowed by named scope predicates and/or a conditions template.
//
// Scope: A named relational predicate such as IS_PRIMARY_CAREGIVER or
// BELONGS_TO_ENTITY_TREE that narrows a permission based on computed
// relationships between the acting user and the subject.
//
// Ability: The decision object built for one user, exposing Can and Cannot.
//
// # Basic Usage
//
//	// 1. Define roles (at application startup)
//	catalog := abilitykit.NewCatalog()
//	catalog.Role("nurse").
//	    Permit("Patient", "read").Scopes(abilitykit.ScopeBelongsToEntity).
//	    Permit("Patient", "update").Scopes(abilitykit.ScopeIsPrimaryCaregiver).
//	    Role("admin").
//	    Permit("all", "manage")
//
//	// 2. Build a user (from your identity source) and decorate it
//	roles, _ := catalog.Roles("nurse")
//	user := &abilitykit.User{
//	    ID:     "u1",
//	    Entity: hta1,
//	    Roles:  roles,
//	}
//	if err := abilitykit.Decorate(user); err != nil {
//	    // misconfigured role: unknown scope name or bad template
//	}
//
//	// 3. Check permissions
//	ok, err := user.Ability.Can("read", abilitykit.Subject{
//	    Type:      "Patient",
//	    EntityIDs: []string{"HTA1"},
//	})
//
// # Scopes
//
// The built-in scope catalog:
//
//   - IS_PRIMARY_CAREGIVER: the user is the subject's declared primary
//     caregiver.
//   - IS_CAREGIVER: primary caregiver, or listed among the subject's
//     secondary caregivers.
//   - BELONGS_TO_ENTITY: the subject belongs directly to the user's entity.
//   - BELONGS_TO_SUB_ENTITIES: the subject belongs to the user's entity or
//     one of its direct children.
//   - BELONGS_TO_ENTITY_TREE: the subject belongs anywhere in the user's
//     entity subtree.
//
// A permission that lists several scopes allows the action when any one of
// them holds.
//
// # Subjects
//
// Subjects are passed as a Subject value tagged with a type name. Supported
// kinds are "User", "Entity" and patient-like types carrying entity-id lists
// and caregiver fields ("Patient" by default; register more with
// WithSubjectKind). A Subject may be in persisted form (Entity, EntityIDs,
// CaregiverIDs populated) or prospective form (singular EntityID and
// CaregiverID stand-ins, used when checking a not-yet-created object).
//
// # Decoration
//
// Decorate mutates the given user, attaching a fresh Ability. DecorateCopy
// leaves the input untouched and returns a decorated copy that shares the
// read-only Role and Entity configuration by reference but owns its Ability
// exclusively. Decoration validates eagerly: an unknown scope name or an
// unresolvable conditions template fails immediately, not at first check.
//
// # Directory Integration
//
// The Directory interface abstracts the identity source that supplies users
// with populated roles and entity trees. A Postgres-backed implementation
// built on dbkit/bun is included, along with HTTP middleware that loads the
// request user, decorates a copy and stores the Ability in the request
// context.
package abilitykit
