package identity

import (
	"context"
	"fmt"
	"os/user"
	"strings"
)

// LocalProvider identifies the user by their operating-system account.
type LocalProvider struct {
	current func() (*user.User, error)
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{current: user.Current}
}

func (p *LocalProvider) SignIn(_ context.Context) (Identity, error) {
	u, err := p.current()
	if err != nil {
		return Identity{}, fmt.Errorf("identity: current user: %w", err)
	}
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = u.Username
	}
	return Identity{UID: "local:" + u.Username, DisplayName: name}, nil
}

func (p *LocalProvider) SignOut(_ context.Context) error {
	return nil
}
