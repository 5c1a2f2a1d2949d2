package identity

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mauv0809/whack-a-blob/internal/user"
)

// Mock is a Gateway for tests. Access tokens have the form "token-<userID>" and
// are resolved through Sessions.
type Mock struct {
	mu sync.Mutex

	Sessions map[string]*Session

	VerifySignatureFunc func(address, message, signature string) error

	VerifySignatureCalls []string
	IssueSessionCalls    []*user.User
}

func NewMock() *Mock {
	return &Mock{Sessions: make(map[string]*Session)}
}

// AddSession registers a session and returns its access token.
func (m *Mock) AddSession(s Session) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := fmt.Sprintf("token-%d", s.UserID)
	m.Sessions[token] = &s
	return token
}

func (m *Mock) VerifySignature(address, message, signature string) error {
	m.mu.Lock()
	m.VerifySignatureCalls = append(m.VerifySignatureCalls, address)
	fn := m.VerifySignatureFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(address, message, signature)
	}
	return nil
}

func (m *Mock) IssueSession(u *user.User) (*Tokens, error) {
	m.mu.Lock()
	m.IssueSessionCalls = append(m.IssueSessionCalls, u)
	m.mu.Unlock()
	access := m.AddSession(Session{UserID: u.ID, Address: strings.ToLower(u.Address), Role: RolePlayer})
	return &Tokens{AccessToken: access, RefreshToken: "refresh-" + access}, nil
}

func (m *Mock) ValidateAccessToken(token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	copied := *s
	return &copied, nil
}

func (m *Mock) Refresh(refreshToken string) (*Tokens, error) {
	access, ok := strings.CutPrefix(refreshToken, "refresh-")
	if !ok {
		return nil, ErrInvalidToken
	}
	if _, err := m.ValidateAccessToken(access); err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refreshToken}, nil
}
