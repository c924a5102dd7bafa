package abilitykit

import (
	"context"
)

// Context keys for AbilityKit values.
type contextKey string

const (
	contextKeyUserID  contextKey = "abilitykit:user_id"
	contextKeyUser    contextKey = "abilitykit:user"
	contextKeyAbility contextKey = "abilitykit:ability"
)

// WithUserID adds a user ID to the context.
// This is the user whose permissions are being checked.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKeyUserID, userID)
}

// GetUserID retrieves the user ID from context.
// Returns empty string if not set.
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MustGetUserID retrieves the user ID from context.
// Panics if not set.
func MustGetUserID(ctx context.Context) string {
	userID := GetUserID(ctx)
	if userID == "" {
		panic("abilitykit: user ID not in context")
	}
	return userID
}

// WithUser adds a decorated user to the context.
// This is set by middleware and can be retrieved in handlers.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKeyUser, u)
}

// GetUser retrieves the decorated user from context.
// Returns nil if not set.
func GetUser(ctx context.Context) *User {
	if v := ctx.Value(contextKeyUser); v != nil {
		if u, ok := v.(*User); ok {
			return u
		}
	}
	return nil
}

// WithAbility adds an Ability to the context.
func WithAbility(ctx context.Context, a *Ability) context.Context {
	return context.WithValue(ctx, contextKeyAbility, a)
}

// GetAbility retrieves the Ability from context.
// Returns nil if not set.
func GetAbility(ctx context.Context) *Ability {
	if v := ctx.Value(contextKeyAbility); v != nil {
		if a, ok := v.(*Ability); ok {
			return a
		}
	}
	return nil
}

// FromContext retrieves the Ability from context.
// Alias for GetAbility for convenience.
func FromContext(ctx context.Context) *Ability {
	return GetAbility(ctx)
}
