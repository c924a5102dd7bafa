// Package rules implements the rule-matching engine behind an Ability: an
// ordered list of allow rules matched by action, subject type, attribute
// conditions and predicate functions.
//
// The engine knows nothing about users, roles or entity trees. It is handed
// fully resolved rules (conditions substituted, predicates already closed
// over their context) and answers Can/Cannot queries against them in source
// order, first match wins.
package rules

import "fmt"

// Engine evaluates an ordered list of allow rules.
type Engine struct {
	rules []Rule
}

// NewEngine creates an Engine from an ordered list of rules. The order is
// preserved: rules are evaluated first to last and the first fully matching
// rule allows the action.
func NewEngine(rs []Rule) *Engine {
	owned := make([]Rule, len(rs))
	copy(owned, rs)
	return &Engine{rules: owned}
}

// Rules returns the engine's rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Can reports whether the action is allowed on the subject.
//
// The subject is either a type name string (a bare check: matched on action
// and subject type only, ignoring conditions and predicates) or a Subject
// (a full check against a concrete object).
func (e *Engine) Can(action string, subject any) (bool, error) {
	switch s := subject.(type) {
	case string:
		return e.canBare(action, s), nil
	case Subject:
		return e.canSubject(action, s)
	default:
		return false, fmt.Errorf("rules: unsupported subject %T", subject)
	}
}

// Cannot is the negation of Can.
func (e *Engine) Cannot(action string, subject any) (bool, error) {
	ok, err := e.Can(action, subject)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (e *Engine) canBare(action, subjectType string) bool {
	for i := range e.rules {
		r := &e.rules[i]
		if r.MatchesAction(action) && r.MatchesSubjectType(subjectType) {
			return true
		}
	}
	return false
}

func (e *Engine) canSubject(action string, subject Subject) (bool, error) {
	for i := range e.rules {
		r := &e.rules[i]
		if !r.MatchesAction(action) || !r.MatchesSubjectType(subject.SubjectType()) {
			continue
		}
		if !r.matchesConditions(subject) {
			continue
		}
		ok, err := r.matchesPredicates(subject)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
