package rules

import "reflect"

// Subject is the evaluated side of a check: a typed object exposing its
// attributes by dotted path.
type Subject interface {
	// SubjectType returns the subject's type name, e.g. "Patient".
	SubjectType() string

	// Attribute resolves a dotted attribute path such as "entityId" or
	// "entity.id". The second return value reports whether the attribute
	// is present.
	Attribute(path string) (any, bool)
}

// Predicate is a condition function attached to a rule, closed over
// whatever context it needs (typically the acting user). It receives the
// subject under check and the rule being evaluated.
type Predicate func(subject Subject, rule *Rule) (bool, error)

// Rule is one resolved allow declaration: the listed actions are permitted
// on the subject type, provided the conditions map and the predicates hold.
type Rule struct {
	// Actions this rule allows. The aliases "manage" (every action) and
	// "crud" (create, read, update, delete) are honored.
	Actions []string

	// Subject is the subject type name, or "all" to match every type.
	Subject string

	// Conditions is an attribute-equality matcher: every key is a dotted
	// attribute path whose value must deep-equal the subject's attribute.
	Conditions map[string]any

	// Predicates are tried as alternatives: the rule applies if any one
	// of them returns true. An empty list means no predicate restriction.
	Predicates []Predicate
}

// Action aliases expanded on the rule side.
var crudActions = []string{"create", "read", "update", "delete"}

// MatchesAction reports whether the rule grants the given action,
// expanding the "manage" and "crud" aliases.
func (r *Rule) MatchesAction(action string) bool {
	for _, a := range r.Actions {
		if a == action || a == "manage" {
			return true
		}
		if a == "crud" {
			for _, c := range crudActions {
				if c == action {
					return true
				}
			}
		}
	}
	return false
}

// MatchesSubjectType reports whether the rule applies to the given subject
// type name.
func (r *Rule) MatchesSubjectType(name string) bool {
	return r.Subject == "all" || r.Subject == name
}

// matchesConditions reports whether every condition entry deep-equals the
// subject's attribute at that path. A missing attribute never matches.
func (r *Rule) matchesConditions(subject Subject) bool {
	for path, want := range r.Conditions {
		got, ok := subject.Attribute(path)
		if !ok {
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// matchesPredicates reports whether the rule's predicate restriction holds:
// vacuously true with no predicates, otherwise true if any predicate is.
func (r *Rule) matchesPredicates(subject Subject) (bool, error) {
	if len(r.Predicates) == 0 {
		return true, nil
	}
	for _, p := range r.Predicates {
		ok, err := p(subject, r)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
