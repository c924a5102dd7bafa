package abilitykit

import "strings"

// ResolveConditions returns a deep copy of a conditions template in which
// every string value of the exact form "${path.to.value}" is replaced by the
// value at that dotted path inside vars. All other values are copied
// unchanged.
//
// A placeholder whose path does not resolve is a configuration error
// (ErrUndefinedVariable); a condition must never silently degrade.
func ResolveConditions(template map[string]any, vars map[string]any) (map[string]any, error) {
	if template == nil {
		return nil, nil
	}
	resolved, err := resolveValue(template, vars)
	if err != nil {
		return nil, err
	}
	return resolved.(map[string]any), nil
}

func resolveValue(v any, vars map[string]any) (any, error) {
	switch value := v.(type) {
	case string:
		if path, ok := placeholderPath(value); ok {
			resolved, found := lookupAttr(vars, path)
			if !found {
				return nil, NewError(ErrUndefinedVariable, "cannot resolve "+value).
					WithPath(path)
			}
			return resolved, nil
		}
		return value, nil
	case map[string]any:
		out := make(map[string]any, len(value))
		for k, entry := range value {
			resolved, err := resolveValue(entry, vars)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(value))
		for i, entry := range value {
			resolved, err := resolveValue(entry, vars)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

// placeholderPath extracts the dotted path from a "${...}" placeholder.
// Only strings that are exactly one placeholder substitute; anything else is
// a literal.
func placeholderPath(s string) (string, bool) {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") && len(s) > 3 {
		return s[2 : len(s)-1], true
	}
	return "", false
}

// TemplateVars builds the variable tree available to conditions templates:
// the decorated user under "user".
func TemplateVars(u *User) map[string]any {
	userVars := map[string]any{
		"id": u.ID,
	}
	if u.Entity != nil {
		userVars["entity"] = map[string]any{
			"id":   u.Entity.ID,
			"name": u.Entity.Name,
		}
	}
	return map[string]any{"user": userVars}
}
