// Package admin holds the shared-secret gate that promotes a connection to
// the admin role, and the resume tokens issued after a successful login.
package admin

import (
	"crypto/subtle"
	"strings"

	"lv-simtrade/internal/exchange"
	"lv-simtrade/internal/hub"
	"lv-simtrade/internal/protocol"

	"golang.org/x/crypto/bcrypt"
)

type Gate struct {
	hub    *hub.Hub
	svc    *exchange.Service
	secret string
	tokens *TokenIssuer
}

// NewGate builds the gate. secret is either the plain shared secret or a
// bcrypt hash of it (cmd/genhash); tokens may be nil to disable resume
// tokens.
func NewGate(h *hub.Hub, svc *exchange.Service, secret string, tokens *TokenIssuer) *Gate {
	return &Gate{hub: h, svc: svc, secret: secret, tokens: tokens}
}

// Authenticate handles an admin-auth envelope. On success the connection
// is promoted, receives the full-state snapshot and an auth-success (with
// a resume token when enabled). On failure it receives auth-error and is
// terminated. Re-authenticating an admin connection is an idempotent ack.
func (g *Gate) Authenticate(c *hub.Client, password, token string) {
	if c.Role() == hub.RoleAdmin {
		c.Send(protocol.NewAuthSuccess(""))
		return
	}
	ok := password != "" && g.verifySecret(password)
	if !ok && token != "" && g.tokens != nil {
		ok = g.tokens.Validate(token) == nil
	}
	if !ok {
		c.Send(protocol.NewAuthError("invalid credentials"))
		c.Close()
		return
	}
	g.hub.PromoteAdmin(c)
	c.Send(g.svc.AdminSnapshot())
	resume := ""
	if g.tokens != nil {
		if t, err := g.tokens.Issue(); err == nil {
			resume = t
		}
	}
	c.Send(protocol.NewAuthSuccess(resume))
}

func (g *Gate) verifySecret(password string) bool {
	if strings.HasPrefix(g.secret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(g.secret), []byte(password)) == nil
	}
	if len(g.secret) != len(password) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(g.secret), []byte(password)) == 1
}
