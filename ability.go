package abilitykit

import (
	"github.com/fernandezvara/abilitykit/rules"
)

// Ability is the decision object built for one user: a snapshot of the
// user's expanded permissions, queryable with Can and Cannot. It is rebuilt
// from scratch on every decoration and never updated in place; discard and
// re-decorate when the user's roles or entity change.
//
// An Ability is safe for concurrent use.
type Ability struct {
	user   *User
	engine *rules.Engine
}

// Option configures decoration.
type Option func(*decorateOptions)

type decorateOptions struct {
	kinds  map[string]SubjectKind
	scopes map[string]ScopeFunc
}

func newDecorateOptions(opts []Option) *decorateOptions {
	o := &decorateOptions{
		kinds: make(map[string]SubjectKind, len(defaultSubjectKinds)),
	}
	for name, kind := range defaultSubjectKinds {
		o.kinds[name] = kind
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSubjectKind registers an additional subject type name for the entity
// membership scopes, e.g. another patient-like record type.
//
// Example:
//
//	abilitykit.Decorate(user, abilitykit.WithSubjectKind("Device", abilitykit.KindPatientLike))
func WithSubjectKind(name string, kind SubjectKind) Option {
	return func(o *decorateOptions) {
		o.kinds[name] = kind
	}
}

// WithScope adds a custom scope predicate to the catalog (or overrides a
// built-in one) for this decoration.
func WithScope(name string, fn ScopeFunc) Option {
	return func(o *decorateOptions) {
		if o.scopes == nil {
			o.scopes = make(map[string]ScopeFunc)
		}
		o.scopes[name] = fn
	}
}

// Decorate builds the user's Ability from its roles and attaches it,
// replacing any previous one.
//
// All role configuration is validated here, not at first check: an unknown
// scope name or an unresolvable conditions template fails decoration with
// ErrUnknownScope or ErrUndefinedVariable. Callers should treat such a
// failure as a configuration bug, not a per-request condition.
//
// Decorate mutates the user. It must not run twice concurrently against the
// same record; use DecorateCopy for that.
func Decorate(u *User, opts ...Option) error {
	engine, err := buildEngine(u, newDecorateOptions(opts))
	if err != nil {
		return err
	}
	u.Ability = &Ability{user: u, engine: engine}
	return nil
}

// DecorateCopy decorates a copy of the user and returns it, leaving the
// input untouched. The copy shares the read-only Role and Entity
// configuration by reference and owns its Ability exclusively.
func DecorateCopy(u *User, opts ...Option) (*User, error) {
	clone := u.Clone()
	if err := Decorate(clone, opts...); err != nil {
		return nil, err
	}
	return clone, nil
}

// Can reports whether the action is allowed.
//
// The subject is either a type name string (bare check, matched on action
// and subject type only) or a Subject carrying the object's attributes.
// Unsupported subject type names surface as an ErrUnsupportedSubject error,
// never as a plain deny.
func (a *Ability) Can(action string, subject any) (bool, error) {
	return a.engine.Can(action, subject)
}

// Cannot is the negation of Can.
func (a *Ability) Cannot(action string, subject any) (bool, error) {
	return a.engine.Cannot(action, subject)
}

// UserID returns the ID of the user this ability was built for.
func (a *Ability) UserID() string {
	return a.user.ID
}

// Rules returns the expanded rules in evaluation order, for introspection.
func (a *Ability) Rules() []rules.Rule {
	return a.engine.Rules()
}
