package types

import "github.com/taskfleet/taskfleet/internal/domain"

// Principal is the authenticated identity attached to a request or
// connection by the auth middleware.
type Principal struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == domain.RoleAdmin
}
