package identity

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

// Gateway authenticates wallets and issues and validates session tokens.
type Gateway interface {
	VerifySignature(address, message, signature string) error
	IssueSession(u *user.User) (*Tokens, error)
	ValidateAccessToken(token string) (*Session, error)
	Refresh(refreshToken string) (*Tokens, error)
}

type gateway struct {
	tokens     *tokenProvider
	accessTTL  time.Duration
	refreshTTL time.Duration
	admins     map[string]struct{}
}

var _ Gateway = (*gateway)(nil)

// NewGateway creates a Gateway from the auth configuration.
func NewGateway(cfg config.AuthConfig) Gateway {
	return newGateway(cfg, time.Now)
}

func newGateway(cfg config.AuthConfig, now func() time.Time) *gateway {
	admins := make(map[string]struct{}, len(cfg.AdminAddresses))
	for _, a := range cfg.AdminAddresses {
		admins[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	return &gateway{
		tokens:     &tokenProvider{secret: []byte(cfg.JWTSecret), now: now},
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		admins:     admins,
	}
}

// VerifySignature checks that signature over message was produced by address.
func (g *gateway) VerifySignature(address, message, signature string) error {
	recovered, err := RecoverAddress(message, signature)
	if err != nil {
		log.Warn("Could not recover wallet signature", "address", address, "error", err)
		return err
	}
	if !strings.EqualFold(recovered, strings.TrimSpace(address)) {
		log.Warn("Wallet signature address mismatch", "address", address, "recovered", recovered)
		return ErrInvalidSignature
	}
	return nil
}

func (g *gateway) roleFor(address string) Role {
	if _, ok := g.admins[strings.ToLower(address)]; ok {
		return RoleAdmin
	}
	return RolePlayer
}

func (g *gateway) issue(s Session) (*Tokens, error) {
	access, err := g.tokens.generate(s, tokenAccess, g.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := g.tokens.generate(s, tokenRefresh, g.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (g *gateway) IssueSession(u *user.User) (*Tokens, error) {
	return g.issue(Session{UserID: u.ID, Address: u.Address, Role: g.roleFor(u.Address)})
}

func (g *gateway) ValidateAccessToken(token string) (*Session, error) {
	return g.tokens.validate(token, tokenAccess)
}

// Refresh exchanges a refresh token for a new pair. The role is recomputed so a
// revoked admin loses the role on the next refresh.
func (g *gateway) Refresh(refreshToken string) (*Tokens, error) {
	s, err := g.tokens.validate(refreshToken, tokenRefresh)
	if err != nil {
		return nil, err
	}
	return g.issue(Session{UserID: s.UserID, Address: s.Address, Role: g.roleFor(s.Address)})
}
