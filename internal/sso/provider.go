// Package sso wraps the OAuth2 authorization-code handshake with Google,
// Facebook and GitHub and normalises the returned profile.
package sso

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"starter-api/pkg/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var ErrUnknownProvider = errors.New("unknown sso provider")

// Identity is the provider profile needed to find or create a user.
type Identity struct {
	ProviderID string
	Email      string
	FirstName  string
	LastName   string
}

type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// Registry maps provider names (google, facebook, github) to configured
// providers. Providers without credentials are left out.
type Registry map[string]Provider

func (r Registry) Get(name string) (Provider, error) {
	p, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

func NewRegistry(cfg utils.SSOConfig, apiPrefix string) Registry {
	reg := Registry{}

	callback := func(name string) string {
		return fmt.Sprintf("%s%s/auth/%s/callback", cfg.CallbackBaseURL, apiPrefix, name)
	}

	if cfg.Google.Enabled() {
		reg["google"] = NewOAuthProvider(&oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Endpoint:     endpoints.Google,
			RedirectURL:  callback("google"),
			Scopes:       []string{"openid", "email", "profile"},
		}, "https://www.googleapis.com/oauth2/v3/userinfo", decodeGoogle)
	}
	if cfg.Facebook.Enabled() {
		reg["facebook"] = NewOAuthProvider(&oauth2.Config{
			ClientID:     cfg.Facebook.ClientID,
			ClientSecret: cfg.Facebook.ClientSecret,
			Endpoint:     endpoints.Facebook,
			RedirectURL:  callback("facebook"),
			Scopes:       []string{"email", "public_profile"},
		}, "https://graph.facebook.com/me?fields=id,email,first_name,last_name", decodeFacebook)
	}
	if cfg.Github.Enabled() {
		reg["github"] = NewOAuthProvider(&oauth2.Config{
			ClientID:     cfg.Github.ClientID,
			ClientSecret: cfg.Github.ClientSecret,
			Endpoint:     endpoints.GitHub,
			RedirectURL:  callback("github"),
			Scopes:       []string{"read:user", "user:email"},
		}, "https://api.github.com/user", decodeGithub).
			WithEmailLookup(githubPrimaryEmail("https://api.github.com/user/emails"))
	}

	return reg
}

type decodeFunc func(io.Reader) (*Identity, error)

// emailLookupFunc fetches the address separately when the profile hides it.
type emailLookupFunc func(ctx context.Context, client *http.Client) (string, error)

type OAuthProvider struct {
	config      *oauth2.Config
	userInfoURL string
	decode      decodeFunc
	lookupEmail emailLookupFunc
}

func NewOAuthProvider(cfg *oauth2.Config, userInfoURL string, decode decodeFunc) *OAuthProvider {
	return &OAuthProvider{config: cfg, userInfoURL: userInfoURL, decode: decode}
}

// WithEmailLookup sets a fallback used when the profile has no email.
func (p *OAuthProvider) WithEmailLookup(fn emailLookupFunc) *OAuthProvider {
	p.lookupEmail = fn
	return p
}

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token and fetches the
// profile with it.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := p.config.Client(ctx, tok)

	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("user info request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info status: %s", resp.Status)
	}

	identity, err := p.decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if identity.Email == "" && p.lookupEmail != nil {
		email, err := p.lookupEmail(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("lookup email: %w", err)
		}
		identity.Email = email
	}
	if identity.ProviderID == "" || identity.Email == "" {
		return nil, errors.New("provider did not return an id and email")
	}

	identity.Email = utils.NormalizeEmail(identity.Email)
	return identity, nil
}

func decodeGoogle(r io.Reader) (*Identity, error) {
	var body struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, err
	}
	return &Identity{ProviderID: body.Sub, Email: body.Email, FirstName: body.GivenName, LastName: body.FamilyName}, nil
}

func decodeFacebook(r io.Reader) (*Identity, error) {
	var body struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, err
	}
	return &Identity{ProviderID: body.ID, Email: body.Email, FirstName: body.FirstName, LastName: body.LastName}, nil
}

func decodeGithub(r io.Reader) (*Identity, error) {
	var body struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, err
	}

	first, last, _ := strings.Cut(strings.TrimSpace(body.Name), " ")
	id := ""
	if body.ID != 0 {
		id = strconv.FormatInt(body.ID, 10)
	}
	return &Identity{ProviderID: id, Email: body.Email, FirstName: first, LastName: last}, nil
}

// githubPrimaryEmail reads /user/emails, which lists private addresses too,
// and returns the primary verified one.
func githubPrimaryEmail(emailsURL string) emailLookupFunc {
	return func(ctx context.Context, client *http.Client) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, emailsURL, nil)
		if err != nil {
			return "", err
		}

		resp, err := client.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("emails status: %s", resp.Status)
		}

		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
			return "", err
		}

		for _, e := range emails {
			if e.Primary && e.Verified {
				return e.Email, nil
			}
		}
		return "", nil
	}
}
