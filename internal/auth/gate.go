// Package auth verifies bearer tokens and hashes passwords.
package auth

import (
	"strings"

	"minitwitql/internal/apperr"
)

// Messages returned when the gate rejects a request.
const (
	MsgMustLogIn    = "Unauthorized - you must log in first"
	MsgInvalidToken = "Unauthorized - the JWT token is invalid"
)

// Gate decides once per request whether it may proceed, from the value of
// its Authorization header alone.
type Gate struct {
	tokens *Tokens
}

// NewGate returns a Gate verifying with tokens.
func NewGate(tokens *Tokens) *Gate {
	return &Gate{tokens: tokens}
}

// Check returns nil when header holds a valid token and an Unauthorized
// *apperr.Error otherwise. An absent, empty or "null" header means no token
// was supplied. A "Bearer " prefix is accepted.
func (g *Gate) Check(header string) error {
	token := strings.TrimSpace(header)
	if len(token) >= 6 && strings.EqualFold(token[:6], "bearer") && (len(token) == 6 || token[6] == ' ') {
		token = strings.TrimSpace(token[6:])
	}
	if token == "" || token == "null" {
		return apperr.NewUnauthorized(MsgMustLogIn)
	}
	if err := g.tokens.Verify(token); err != nil {
		return &apperr.Error{Kind: apperr.Unauthorized, Message: MsgInvalidToken, Err: err}
	}
	return nil
}
