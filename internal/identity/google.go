package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// DevicePrompt shows the verification URL and code to the user while the
// device flow waits for approval.
type DevicePrompt func(resp *oauth2.DeviceAuthResponse)

type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	TokenPath    string
	Prompt       DevicePrompt
	// Endpoint and UserInfoURL default to Google's.
	Endpoint    *oauth2.Endpoint
	UserInfoURL string
}

// GoogleProvider signs in with the OAuth 2.0 device authorization grant and
// caches the token so later sessions skip the browser step.
type GoogleProvider struct {
	cfg         *oauth2.Config
	tokenPath   string
	prompt      DevicePrompt
	userInfoURL string
}

func NewGoogleProvider(opts GoogleOptions) (*GoogleProvider, error) {
	if opts.ClientID == "" {
		return nil, errors.New("identity: google client id is required")
	}
	if opts.TokenPath == "" {
		return nil, errors.New("identity: google token path is required")
	}
	endpoint := google.Endpoint
	if opts.Endpoint != nil {
		endpoint = *opts.Endpoint
	}
	prompt := opts.Prompt
	if prompt == nil {
		prompt = func(resp *oauth2.DeviceAuthResponse) {
			fmt.Fprintf(os.Stderr, "Open %s and enter code %s\n", resp.VerificationURI, resp.UserCode)
		}
	}
	userInfoURL := opts.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	return &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoint,
		},
		tokenPath:   opts.TokenPath,
		prompt:      prompt,
		userInfoURL: userInfoURL,
	}, nil
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (p *GoogleProvider) SignIn(ctx context.Context) (Identity, error) {
	tok, err := p.loadToken()
	if err != nil {
		return Identity{}, err
	}
	if tok == nil {
		tok, err = p.deviceFlow(ctx)
		if err != nil {
			return Identity{}, err
		}
	}

	src := p.cfg.TokenSource(ctx, tok)
	info, err := p.fetchUserInfo(ctx, src)
	if err != nil {
		return Identity{}, err
	}

	// The source may have refreshed the token; keep the newest one on disk.
	if fresh, err := src.Token(); err == nil && fresh.AccessToken != tok.AccessToken {
		if err := p.saveToken(fresh); err != nil {
			return Identity{}, err
		}
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return Identity{
		UID:         "google:" + info.ID,
		Email:       info.Email,
		DisplayName: name,
		PhotoURL:    info.Picture,
	}, nil
}

// SignOut forgets the cached token.
func (p *GoogleProvider) SignOut(_ context.Context) error {
	err := os.Remove(p.tokenPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("identity: remove token: %w", err)
	}
	return nil
}

func (p *GoogleProvider) deviceFlow(ctx context.Context) (*oauth2.Token, error) {
	resp, err := p.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity: device authorization: %w", err)
	}
	p.prompt(resp)
	tok, err := p.cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("identity: device token: %w", err)
	}
	if err := p.saveToken(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, src oauth2.TokenSource) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, src)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("identity: user info: unexpected status code: %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("identity: decode user info: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("identity: user info has no id")
	}
	return &info, nil
}

func (p *GoogleProvider) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(p.tokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity: read token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil || (tok.AccessToken == "" && tok.RefreshToken == "") {
		return nil, nil
	}
	return &tok, nil
}

func (p *GoogleProvider) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(p.tokenPath), 0o700); err != nil {
		return fmt.Errorf("identity: create token dir: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("identity: encode token: %w", err)
	}
	tmp := p.tokenPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("identity: write token: %w", err)
	}
	if err := os.Rename(tmp, p.tokenPath); err != nil {
		return fmt.Errorf("identity: replace token: %w", err)
	}
	return nil
}
