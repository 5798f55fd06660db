package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubConfig holds the OAuth app credentials.
type GitHubConfig struct {
	ClientID     string        `env:"GITHUB_ID,required"`
	ClientSecret string        `env:"GITHUB_SECRET,required"`
	RedirectURL  string        `env:"GITHUB_REDIRECT_URL" envDefault:"http://localhost:3000/api/auth/callback/github"`
	Scopes       []string      `env:"GITHUB_SCOPES" envSeparator:"," envDefault:"read:user"`
	StateTTL     time.Duration `env:"GITHUB_STATE_TTL" envDefault:"10m"`
}

const githubAPI = "https://api.github.com"

// GitHubOption adjusts the provider, mainly for tests.
type GitHubOption func(*GitHubProvider)

// WithGitHubEndpoints points the provider at alternative OAuth and REST endpoints.
func WithGitHubEndpoints(endpoint oauth2.Endpoint, apiBaseURL string) GitHubOption {
	return func(p *GitHubProvider) {
		p.conf.Endpoint = endpoint
		p.apiBaseURL = strings.TrimRight(apiBaseURL, "/")
	}
}

// WithHTTPClient sets the client used for token exchange and API calls.
func WithHTTPClient(c *http.Client) GitHubOption {
	return func(p *GitHubProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// GitHubProvider performs the authorization-code flow against GitHub.
type GitHubProvider struct {
	conf       *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

func NewGitHubProvider(cfg GitHubConfig, opts ...GitHubOption) *GitHubProvider {
	p := &GitHubProvider{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: githubAPI,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GitHubProvider) ProviderID() string {
	return OAuthProviderGithub
}

// AuthURL builds the authorization URL for the given state token.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.conf.AuthCodeURL(state)
}

// ResolveIdentity exchanges code for a token and fetches the profile.
// When the public profile has no email, the primary verified address from
// /user/emails is used if the granted scopes allow reading it.
func (p *GitHubProvider) ResolveIdentity(ctx context.Context, code string) (Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidCode, err)
	}

	var u ghUser
	if err := p.get(ctx, tok.AccessToken, "/user", &u); err != nil {
		return Identity{}, fmt.Errorf("fetch github user: %w", err)
	}

	identity := Identity{
		Provider:       OAuthProviderGithub,
		ProviderUserID: strconv.FormatInt(u.ID, 10),
		Email:          u.Email,
		Name:           u.Name,
		AvatarURL:      u.AvatarURL,
	}
	if identity.Name == "" {
		identity.Name = u.Login
	}

	if identity.Email == "" {
		var emails []ghEmail
		// read:user alone does not grant access; an empty email is left for the caller to reject
		if err := p.get(ctx, tok.AccessToken, "/user/emails", &emails); err == nil {
			identity.Email = primaryEmail(emails)
		}
	}

	return identity, nil
}

func (p *GitHubProvider) get(ctx context.Context, accessToken, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderAPI, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrProviderAPI, path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func primaryEmail(emails []ghEmail) string {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}

type ghUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type ghEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}
