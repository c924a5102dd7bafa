package abilitykit

import "context"

// Directory is the identity source: it supplies User records with populated
// roles (each with its permission declarations) and a populated entity tree.
//
// The engine itself performs no fetching, caching or refreshing of identity
// data; it evaluates whatever the Directory returns. Implementations return
// ErrUserNotFound for unknown user IDs.
type Directory interface {
	User(ctx context.Context, id string) (*User, error)
}

// StaticDirectory is an in-memory Directory, useful for tests and for
// applications whose users are configured in code.
type StaticDirectory struct {
	users map[string]*User
}

// NewStaticDirectory creates a StaticDirectory over the given users.
func NewStaticDirectory(users ...*User) *StaticDirectory {
	d := &StaticDirectory{users: make(map[string]*User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// User implements Directory.
func (d *StaticDirectory) User(_ context.Context, id string) (*User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, NewError(ErrUserNotFound, "no user with ID "+id).WithUser(id)
	}
	return u, nil
}
