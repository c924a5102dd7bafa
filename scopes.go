package abilitykit

import (
	"github.com/fernandezvara/abilitykit/rules"
)

// Scope names of the built-in relational predicates.
const (
	ScopeIsPrimaryCaregiver   = "IS_PRIMARY_CAREGIVER"
	ScopeIsCaregiver          = "IS_CAREGIVER"
	ScopeBelongsToEntity      = "BELONGS_TO_ENTITY"
	ScopeBelongsToSubEntities = "BELONGS_TO_SUB_ENTITIES"
	ScopeBelongsToEntityTree  = "BELONGS_TO_ENTITY_TREE"
)

// ScopeFunc is a relational predicate: does the named relation hold between
// the acting user and the subject? The rule carries the subject type name
// under which the check runs.
//
// Absent relational fields on the subject make the relation not hold; they
// are never an error. An unsupported subject type name is an error.
type ScopeFunc func(user *User, subject Subject, rule *rules.Rule) (bool, error)

// builtinScopes returns the scope catalog, with the entity-membership
// predicates classifying subject type names against the given table. The
// returned map is owned by the caller.
func builtinScopes(kinds map[string]SubjectKind) map[string]ScopeFunc {
	return map[string]ScopeFunc{
		ScopeIsPrimaryCaregiver: isPrimaryCaregiver,
		ScopeIsCaregiver:        isCaregiver,
		ScopeBelongsToEntity: func(u *User, s Subject, r *rules.Rule) (bool, error) {
			return belongsWithin(kinds, u, s, r, 0)
		},
		ScopeBelongsToSubEntities: func(u *User, s Subject, r *rules.Rule) (bool, error) {
			return belongsWithin(kinds, u, s, r, 1)
		},
		ScopeBelongsToEntityTree: func(u *User, s Subject, r *rules.Rule) (bool, error) {
			return belongsWithin(kinds, u, s, r, DepthUnbounded)
		},
	}
}

// isPrimaryCaregiver reports whether the user is the subject's declared
// primary caregiver.
func isPrimaryCaregiver(u *User, s Subject, _ *rules.Rule) (bool, error) {
	return s.CaregiverID != "" && u.ID == s.CaregiverID, nil
}

// isCaregiver reports whether the user is the subject's primary caregiver or
// appears among its secondary caregivers.
func isCaregiver(u *User, s Subject, r *rules.Rule) (bool, error) {
	if ok, _ := isPrimaryCaregiver(u, s, r); ok {
		return true, nil
	}
	for _, id := range s.CaregiverIDs {
		if id == u.ID {
			return true, nil
		}
	}
	return false, nil
}

// belongsWithin reports whether the subject belongs to the user's entity or
// to a descendant within maxDepth levels. Direct membership is checked first
// and short-circuits the tree walk.
func belongsWithin(kinds map[string]SubjectKind, u *User, s Subject, r *rules.Rule, maxDepth int) (bool, error) {
	kind, err := subjectKindFor(kinds, checkedSubjectType(s, r))
	if err != nil {
		return false, err
	}
	if u.Entity == nil {
		return false, nil
	}
	direct := map[string]struct{}{u.Entity.ID: {}}
	if memberOf(direct, s, kind) {
		return true, nil
	}
	if maxDepth == 0 {
		return false, nil
	}
	return memberOf(CollectEntityIDs(u.Entity, maxDepth), s, kind), nil
}

// checkedSubjectType is the type name a predicate branches on: the rule's
// declared subject, falling back to the subject's own type for "all" rules.
func checkedSubjectType(s Subject, r *rules.Rule) string {
	if r == nil || r.Subject == "" || r.Subject == "all" {
		return s.Type
	}
	return r.Subject
}

// subjectKindFor classifies a subject type name, failing on unsupported
// names rather than defaulting.
func subjectKindFor(kinds map[string]SubjectKind, name string) (SubjectKind, error) {
	if kind, ok := kinds[name]; ok {
		return kind, nil
	}
	return 0, NewError(ErrUnsupportedSubject, "no scope support for subject type "+name).
		WithSubject(name)
}

// memberOf tests the subject's entity relation against a collected id set:
// single-entity kinds by membership, patient-like kinds by non-empty
// intersection with their entity-id list.
func memberOf(ids map[string]struct{}, s Subject, kind SubjectKind) bool {
	switch kind {
	case KindUser, KindEntity:
		id := s.singleEntityID(kind)
		if id == "" {
			return false
		}
		_, ok := ids[id]
		return ok
	case KindPatientLike:
		for _, id := range s.entityIDList() {
			if _, ok := ids[id]; ok {
				return true
			}
		}
	}
	return false
}
