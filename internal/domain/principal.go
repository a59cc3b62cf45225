package domain

import "context"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// SessionRepository resolves bearer tokens issued by the identity service.
// Unknown or expired tokens yield an ErrUnauthorized error.
type SessionRepository interface {
	ResolveSession(ctx context.Context, token string) (*Principal, error)
}
