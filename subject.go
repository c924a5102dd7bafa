package abilitykit

import "strings"

// SubjectKind classifies a subject type name for the scope predicates.
// Every supported type name maps to exactly one kind; an unmapped name is an
// unsupported subject and fails the check.
type SubjectKind int

const (
	// KindUser subjects belong to a single entity, resolved from the
	// prospective EntityID field or the persisted Entity reference.
	KindUser SubjectKind = iota + 1

	// KindEntity subjects are entity nodes themselves, resolved from the
	// prospective EntityID field or their own ID.
	KindEntity

	// KindPatientLike subjects may belong to several entities (EntityIDs)
	// and carry caregiver fields. "Patient" is the built-in example.
	KindPatientLike
)

// defaultSubjectKinds is the built-in type-name classification. Treated as
// immutable; per-decoration additions work on a copy (see WithSubjectKind).
var defaultSubjectKinds = map[string]SubjectKind{
	"User":    KindUser,
	"Entity":  KindEntity,
	"Patient": KindPatientLike,
}

// Subject is the object a permission check runs against, tagged with its
// type name.
//
// A subject comes in one of two shapes. The persisted shape carries the true
// relational fields: Entity for user-like subjects, EntityIDs and
// CaregiverIDs for patient-like ones. The prospective shape stands in for an
// object that does not exist yet (e.g. during a "create" check) and carries
// the singular EntityID and CaregiverID fields instead. The scope predicates
// accept both; prospective fields win when both are set.
//
// Absent relational fields are not errors: a relation that is not recorded
// simply does not hold.
type Subject struct {
	// Type is the subject type name, e.g. "Patient", "User", "Entity".
	Type string

	// ID identifies the subject itself (meaningful for Entity subjects).
	ID string

	// EntityID is the prospective single-entity stand-in.
	EntityID string

	// Entity is the persisted entity reference of user-like subjects.
	Entity *Entity

	// EntityIDs lists the entities a patient-like subject belongs to.
	EntityIDs []string

	// CaregiverID is the subject's primary caregiver, if any.
	CaregiverID string

	// CaregiverIDs lists the subject's secondary caregivers.
	CaregiverIDs []string

	// Attrs holds any further attributes, matched by the rule engine's
	// conditions via dotted paths.
	Attrs map[string]any
}

// SubjectType returns the subject's type name.
func (s Subject) SubjectType() string {
	return s.Type
}

// Attribute resolves a dotted attribute path. Relational fields are exposed
// under their canonical names; everything else is looked up in Attrs.
func (s Subject) Attribute(path string) (any, bool) {
	switch path {
	case "id":
		if s.ID != "" {
			return s.ID, true
		}
	case "entityId":
		if s.EntityID != "" {
			return s.EntityID, true
		}
	case "entity.id":
		if s.Entity != nil {
			return s.Entity.ID, true
		}
	case "entityIds":
		if s.EntityIDs != nil {
			return s.EntityIDs, true
		}
	case "caregiverId":
		if s.CaregiverID != "" {
			return s.CaregiverID, true
		}
	case "caregiverIds":
		if s.CaregiverIDs != nil {
			return s.CaregiverIDs, true
		}
	default:
		return lookupAttr(s.Attrs, path)
	}
	return nil, false
}

// lookupAttr walks a dotted path through nested string-keyed maps.
func lookupAttr(attrs map[string]any, path string) (any, bool) {
	if attrs == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur any = attrs
	for _, part := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// singleEntityID resolves the one entity a user-like or entity subject
// belongs to. Returns "" when the subject carries no entity relation.
func (s Subject) singleEntityID(kind SubjectKind) string {
	if s.EntityID != "" {
		return s.EntityID
	}
	switch kind {
	case KindUser:
		if s.Entity != nil {
			return s.Entity.ID
		}
	case KindEntity:
		return s.ID
	}
	return ""
}

// entityIDList resolves the entity-id list of a patient-like subject: the
// singleton prospective EntityID when set, the persisted EntityIDs otherwise.
func (s Subject) entityIDList() []string {
	if s.EntityID != "" {
		return []string{s.EntityID}
	}
	return s.EntityIDs
}
