// Package token manages the identity token issued by the hosted
// identity provider: durable local storage, claims extraction, and the
// hosted UI login/logout URLs.
//
// The token is treated as opaque proof of identity for the remote
// services, which verify it server-side. The client only decodes the
// embedded claims payload; it never validates the signature.
package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"storefront/internal/model"
)

// storageKey is the fixed file name the token is persisted under,
// mirroring the browser localStorage key it replaces.
const storageKey = "userToken"

// Store persists the identity token in a directory on disk.
// Cleared on logout.
type Store struct {
	dir string
}

// NewStore creates a token store rooted at dir. The directory is
// created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, storageKey)
}

// Save writes the token to durable storage.
func (s *Store) Save(tok string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	if err := os.WriteFile(s.path(), []byte(tok), 0o600); err != nil {
		return fmt.Errorf("writing token: %w", err)
	}
	return nil
}

// Load returns the stored token, or "" if none is stored.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes the stored token. Missing token is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

// claims is the subset of token claims the client reads.
type claims struct {
	Sub      string `json:"sub"`
	Username string `json:"cognito:username"`
	Email    string `json:"email"`
}

// DecodeIdentity extracts the buyer identity from the token's claims
// payload. An empty or undecodable token fails closed: dependent
// operations must be rejected, never run as an anonymous guest.
func DecodeIdentity(tok string) (model.Identity, error) {
	if tok == "" {
		return model.Identity{}, model.NewAuthMissingError("no identity token, sign in first")
	}

	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return model.Identity{}, model.NewAuthMissingError("identity token is malformed")
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return model.Identity{}, model.NewAuthMissingError("identity token payload is not decodable")
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return model.Identity{}, model.NewAuthMissingError("identity token claims are not decodable")
	}
	if c.Sub == "" {
		return model.Identity{}, model.NewAuthMissingError("identity token has no subject")
	}

	name := c.Username
	if name == "" {
		name = "Valued Customer"
	}

	return model.Identity{
		UserID:   c.Sub,
		UserName: name,
		Email:    c.Email,
	}, nil
}

// decodeSegment decodes one base64url token segment, tolerating both
// padded and unpadded encodings.
func decodeSegment(seg string) ([]byte, error) {
	if b, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return b, nil
	}
	return base64.URLEncoding.DecodeString(seg)
}

// Endpoint describes the hosted identity provider's UI endpoints.
type Endpoint struct {
	Domain      string // e.g. https://auth.example.com
	ClientID    string
	RedirectURI string // post-login landing page
	LogoutURI   string // post-logout landing page, RedirectURI if empty
}

// LoginURL builds the hosted UI login URL for the implicit flow. The
// provider redirects back with the token in the URL fragment.
func (e Endpoint) LoginURL() string {
	q := url.Values{}
	q.Set("client_id", e.ClientID)
	q.Set("response_type", "token")
	q.Set("redirect_uri", e.RedirectURI)
	return strings.TrimSuffix(e.Domain, "/") + "/login?" + q.Encode()
}

// LogoutURL builds the hosted UI logout URL.
func (e Endpoint) LogoutURL() string {
	landing := e.LogoutURI
	if landing == "" {
		landing = e.RedirectURI
	}
	q := url.Values{}
	q.Set("client_id", e.ClientID)
	q.Set("logout_uri", landing)
	return strings.TrimSuffix(e.Domain, "/") + "/logout?" + q.Encode()
}

// ParseCallbackFragment extracts the identity token from the URL
// fragment the provider redirects back with (#id_token=...&...).
// Accepts the fragment with or without the leading "#", or a full
// callback URL.
func ParseCallbackFragment(fragment string) (string, error) {
	if i := strings.IndexByte(fragment, '#'); i >= 0 {
		fragment = fragment[i+1:]
	}
	params, err := url.ParseQuery(fragment)
	if err != nil {
		return "", fmt.Errorf("parsing callback fragment: %w", err)
	}
	tok := params.Get("id_token")
	if tok == "" {
		return "", fmt.Errorf("callback fragment has no id_token")
	}
	return tok, nil
}
