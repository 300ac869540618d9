package tokens

import "github.com/golang-jwt/jwt/v5"

type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

type AccessClaims struct {
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Type     Kind   `json:"typ"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type Kind `json:"typ"`
	jwt.RegisteredClaims
}

// Subject is what a token is issued for.
type Subject struct {
	ID       string
	Role     string
	Email    string
	Username string
}
