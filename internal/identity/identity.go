// Package identity signs a user in and reports who they are.
package identity

import (
	"context"
	"fmt"

	"github.com/sandeepkv93/streakd/internal/model"
)

// Identity is the opaque identity the rest of the program keys documents by.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

func (i Identity) Profile() model.Profile {
	return model.Profile{UID: i.UID, Email: i.Email, DisplayName: i.DisplayName, PhotoURL: i.PhotoURL}
}

type Provider interface {
	SignIn(ctx context.Context) (Identity, error)
	SignOut(ctx context.Context) error
}

// Options carries what New needs to build any provider.
type Options struct {
	Kind         string
	ClientID     string
	ClientSecret string
	TokenPath    string
	Prompt       DevicePrompt
}

func New(opts Options) (Provider, error) {
	switch opts.Kind {
	case "", "local":
		return NewLocalProvider(), nil
	case "google":
		return NewGoogleProvider(GoogleOptions{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenPath:    opts.TokenPath,
			Prompt:       opts.Prompt,
		})
	default:
		return nil, fmt.Errorf("identity: unknown provider %q", opts.Kind)
	}
}
