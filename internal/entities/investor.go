package entities

import "github.com/golang-jwt/jwt/v5"

type InvestorRole string

const (
	RoleInvestor InvestorRole = "investor"
	RoleAdmin    InvestorRole = "admin"
)

// InvestorClaims is the credential contract with the identity provider.
// The order engine trusts these claims as-is; `sub` (RegisteredClaims.Subject)
// carries the investor id.
type InvestorClaims struct {
	Email string       `json:"email"`
	Role  InvestorRole `json:"role"`
	jwt.RegisteredClaims
}

// InvestorID returns the investor id carried by the credential.
func (c *InvestorClaims) InvestorID() string {
	return c.Subject
}
