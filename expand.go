package abilitykit

import (
	"fmt"

	"github.com/fernandezvara/abilitykit/rules"
)

// buildEngine expands the user's roles into resolved rules and constructs
// the engine answering the user's checks.
func buildEngine(u *User, o *decorateOptions) (*rules.Engine, error) {
	expanded, err := expand(u, o)
	if err != nil {
		return nil, err
	}
	return rules.NewEngine(expanded), nil
}

// expand flattens the user's roles into an ordered rule list: role order
// first, declaration order within each role. Source order is preserved
// exactly; the engine's first-match-wins evaluation depends on it.
//
// Conditions templates are resolved and scope names bound here, so that any
// misconfiguration fails at decoration time.
func expand(u *User, o *decorateOptions) ([]rules.Rule, error) {
	catalog := builtinScopes(o.kinds)
	for name, fn := range o.scopes {
		catalog[name] = fn
	}
	vars := TemplateVars(u)

	var out []rules.Rule
	for _, role := range u.Roles {
		if role == nil {
			continue
		}
		for _, perm := range role.Permissions {
			rule, err := resolvePermission(u, role.Name, perm, catalog, vars)
			if err != nil {
				return nil, err
			}
			out = append(out, rule)
		}
	}
	return out, nil
}

// resolvePermission turns one declaration into a resolved rule.
func resolvePermission(u *User, roleName string, perm Permission, catalog map[string]ScopeFunc, vars map[string]any) (rules.Rule, error) {
	if len(perm.Actions) == 0 {
		return rules.Rule{}, NewError(ErrInvalidPermission, "permission declares no actions").
			WithRole(roleName)
	}
	if perm.Subject == "" {
		return rules.Rule{}, NewError(ErrInvalidPermission, "permission declares no subject").
			WithRole(roleName)
	}

	conditions, err := ResolveConditions(perm.Conditions, vars)
	if err != nil {
		if akErr, ok := err.(*Error); ok {
			akErr.WithRole(roleName).WithUser(u.ID)
		}
		return rules.Rule{}, err
	}

	predicates, err := bindScopes(u, roleName, perm.Scopes, catalog)
	if err != nil {
		return rules.Rule{}, err
	}

	actions := make([]string, len(perm.Actions))
	copy(actions, perm.Actions)

	return rules.Rule{
		Actions:    actions,
		Subject:    perm.Subject,
		Conditions: conditions,
		Predicates: predicates,
	}, nil
}

// bindScopes resolves the declared scope names into predicate closures bound
// to the user. Every name must exist in the catalog; an unknown name is a
// misconfigured role and fails decoration, it never means "no restriction".
func bindScopes(u *User, roleName string, names []string, catalog map[string]ScopeFunc) ([]rules.Predicate, error) {
	if len(names) == 0 {
		return nil, nil
	}
	predicates := make([]rules.Predicate, 0, len(names))
	for _, name := range names {
		fn, ok := catalog[name]
		if !ok {
			return nil, NewError(ErrUnknownScope, "scope "+name+" is not in the catalog").
				WithScope(name).
				WithRole(roleName).
				WithUser(u.ID)
		}
		predicates = append(predicates, bindScope(u, fn))
	}
	return predicates, nil
}

func bindScope(u *User, fn ScopeFunc) rules.Predicate {
	return func(s rules.Subject, r *rules.Rule) (bool, error) {
		subject, ok := s.(Subject)
		if !ok {
			return false, fmt.Errorf("abilitykit: scope predicate received subject %T", s)
		}
		return fn(u, subject, r)
	}
}
