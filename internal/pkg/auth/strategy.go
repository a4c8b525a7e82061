package auth

import "time"

// Role scopes what a principal may do over the realtime channel and admin routes.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleRestaurant Role = "restaurant"
	RoleRider      Role = "rider"
	RoleCustomer   Role = "customer"
)

// Principal is the verified identity behind a token.
type Principal struct {
	Subject string
	Role    Role
}

// IsAdmin reports whether the principal may broadcast or address arbitrary rooms.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Anonymous is used for connections without a token.
var Anonymous = Principal{}

type Strategy interface {
	IssueToken(p Principal) (string, error)
	ParseToken(token string) (Principal, error)
	Name() string
}

type Options struct {
	TTL    time.Duration
	Issuer string
}
