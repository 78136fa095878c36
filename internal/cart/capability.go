package cart

import "strings"

// Role is the actor's account role as reported by authentication.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleGuest    Role = ""
)

// ParseRole normalizes a role string. Unknown roles map to RoleGuest.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleCustomer, "user", "buyer":
		return RoleCustomer
	case RoleAdmin:
		return RoleAdmin
	case RoleSeller, "vendor":
		return RoleSeller
	default:
		return RoleGuest
	}
}

// Actor is whoever drives the session.
type Actor struct {
	ID   string
	Role Role
}

// Gate is the precomputed capability for one actor.
type Gate struct {
	actor   Actor
	allowed bool
	message string
}

// NewGate derives the cart capability from the actor's role.
// Only customers may mutate the cart or proceed to checkout.
func NewGate(a Actor) Gate {
	g := Gate{actor: a}
	switch a.Role {
	case RoleCustomer:
		g.allowed = true
	case RoleAdmin:
		g.message = "Administrator accounts manage the store and cannot shop. Sign in with a customer account to use the cart."
	case RoleSeller:
		g.message = "Seller accounts cannot buy products. Sign in with a customer account to use the cart."
	default:
		g.message = "Sign in with a customer account to use the cart."
	}
	return g
}

// Actor returns the actor the gate was computed for.
func (g Gate) Actor() Actor { return g.actor }

// Allowed reports whether the actor may mutate the cart.
func (g Gate) Allowed() bool { return g.allowed }

// Message is the denial text shown to disallowed actors. Empty when allowed.
func (g Gate) Message() string { return g.message }

// check returns ErrCapabilityDenied wrapped with op when the gate is closed.
func (g Gate) check(op string) error {
	if g.allowed {
		return nil
	}
	return newError(CodeCapabilityDenied, op, nil, "role %q", string(g.actor.Role))
}
