package domain

import "context"

// Role of an authenticated caller.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated actor on whose behalf an operation runs.
type Principal struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the principal has the administrator role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Ownable is implemented by resources that belong to a single user.
type Ownable interface {
	OwnerMatches(userID int64) bool
}

// Authorize allows administrators and the owner of o.
func Authorize(p *Principal, o Ownable) error {
	if p == nil || p.UserID == 0 {
		return ErrUnauthorized
	}
	if p.IsAdmin() || o.OwnerMatches(p.UserID) {
		return nil
	}
	return ErrForbidden
}

// RequireAdmin allows administrators only.
func RequireAdmin(p *Principal) error {
	if p == nil || p.UserID == 0 {
		return ErrUnauthorized
	}
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored in ctx, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
