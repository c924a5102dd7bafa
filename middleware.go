package abilitykit

import (
	"net/http"
)

// Middleware provides HTTP middleware that resolves the request user through
// a Directory, decorates an immutable copy and stores it in the request
// context for handlers to query.
type Middleware struct {
	directory    Directory
	decorateOpts []Option
	getUserID    func(*http.Request) string
	errorHandler func(http.ResponseWriter, *http.Request, error)
}

// MiddlewareOption configures the Middleware.
type MiddlewareOption func(*Middleware)

// NewMiddleware creates a new Middleware instance.
//
// Example:
//
//	mw := abilitykit.NewMiddleware(directory,
//	    abilitykit.WithUserIDExtractor(func(r *http.Request) string {
//	        return r.Header.Get("X-User-ID")
//	    }),
//	)
func NewMiddleware(directory Directory, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		directory:    directory,
		getUserID:    defaultGetUserID,
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// WithUserIDExtractor sets a custom function to extract the user ID from a
// request.
func WithUserIDExtractor(fn func(*http.Request) string) MiddlewareOption {
	return func(m *Middleware) {
		m.getUserID = fn
	}
}

// WithErrorHandler sets a custom error handler for middleware.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) MiddlewareOption {
	return func(m *Middleware) {
		m.errorHandler = fn
	}
}

// WithDecorateOptions sets the decoration options applied when the
// middleware builds abilities (custom scopes, extra subject kinds).
func WithDecorateOptions(opts ...Option) MiddlewareOption {
	return func(m *Middleware) {
		m.decorateOpts = opts
	}
}

func defaultGetUserID(r *http.Request) string {
	return GetUserID(r.Context())
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case IsUserNotFound(err) || err == ErrNoUserID:
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	default:
		// Unknown scopes, bad templates and unsupported subjects are
		// configuration bugs, not request conditions.
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Authorize loads the request user from the Directory, decorates a copy and
// stores both the user and its Ability in the request context.
//
// Example:
//
//	router.Handle("/patients", mw.Authorize(listPatients))
func (m *Middleware) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolveUser(r)
		if err != nil {
			m.errorHandler(w, r, err)
			return
		}

		ctx := WithUser(r.Context(), user)
		ctx = WithAbility(ctx, user.Ability)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCan guards a handler behind a bare permission check on a subject
// type. It decorates the request user if Authorize has not run yet.
//
// Example:
//
//	router.Handle("/patients", mw.RequireCan("read", "Patient")(listPatients))
func (m *Middleware) RequireCan(action, subjectType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			ability := GetAbility(ctx)
			if ability == nil {
				user, err := m.resolveUser(r)
				if err != nil {
					m.errorHandler(w, r, err)
					return
				}
				ability = user.Ability
				ctx = WithUser(ctx, user)
				ctx = WithAbility(ctx, ability)
			}

			ok, err := ability.Can(action, subjectType)
			if err != nil {
				m.errorHandler(w, r, err)
				return
			}
			if !ok {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *Middleware) resolveUser(r *http.Request) (*User, error) {
	userID := m.getUserID(r)
	if userID == "" {
		return nil, ErrNoUserID
	}

	user, err := m.directory.User(r.Context(), userID)
	if err != nil {
		return nil, err
	}

	return DecorateCopy(user, m.decorateOpts...)
}
