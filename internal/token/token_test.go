package token

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"storefront/internal/model"
)

// makeToken builds an unsigned token with the given JSON claims payload.
func makeToken(t *testing.T, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return header + "." + body + ".sig"
}

func TestDecodeIdentity(t *testing.T) {
	tok := makeToken(t, `{"sub":"user-123","cognito:username":"alice","email":"alice@example.com"}`)

	id, err := DecodeIdentity(tok)
	if err != nil {
		t.Fatalf("DecodeIdentity() error = %v", err)
	}
	if id.UserID != "user-123" {
		t.Errorf("UserID = %q, want user-123", id.UserID)
	}
	if id.UserName != "alice" {
		t.Errorf("UserName = %q, want alice", id.UserName)
	}
	if id.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", id.Email)
	}
}

func TestDecodeIdentity_UsernameFallback(t *testing.T) {
	tok := makeToken(t, `{"sub":"user-123","email":"a@b.c"}`)

	id, err := DecodeIdentity(tok)
	if err != nil {
		t.Fatalf("DecodeIdentity() error = %v", err)
	}
	if id.UserName != "Valued Customer" {
		t.Errorf("UserName = %q, want fallback display name", id.UserName)
	}
}

func TestDecodeIdentity_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		tok  string
	}{
		{"empty token", ""},
		{"not a jwt", "garbage"},
		{"two segments", "aa.bb"},
		{"payload not base64", "aa.!!!.cc"},
		{"payload not json", "aa." + base64.RawURLEncoding.EncodeToString([]byte("nope")) + ".cc"},
		{"missing sub", "aa." + base64.RawURLEncoding.EncodeToString([]byte(`{"email":"a@b.c"}`)) + ".cc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeIdentity(tt.tok)
			if err == nil {
				t.Fatal("DecodeIdentity() should fail, not fall back to a guest identity")
			}
			if !errors.Is(err, model.ErrAuthMissing) {
				t.Errorf("error = %v, want ErrAuthMissing", err)
			}
		})
	}
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	// Empty store loads as absent, not an error
	tok, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on empty store error = %v", err)
	}
	if tok != "" {
		t.Errorf("Load() = %q, want empty", tok)
	}

	if err := store.Save("tok-abc"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tok, err = store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if tok != "tok-abc" {
		t.Errorf("Load() = %q, want tok-abc", tok)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	tok, _ = store.Load()
	if tok != "" {
		t.Errorf("Load() after Clear() = %q, want empty", tok)
	}

	// Clearing twice is fine
	if err := store.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestEndpointURLs(t *testing.T) {
	e := Endpoint{
		Domain:      "https://auth.example.com/",
		ClientID:    "client-1",
		RedirectURI: "https://shop.example.com/index.html",
	}

	login := e.LoginURL()
	if !strings.HasPrefix(login, "https://auth.example.com/login?") {
		t.Errorf("LoginURL() = %q, want /login path", login)
	}
	if !strings.Contains(login, "client_id=client-1") || !strings.Contains(login, "response_type=token") {
		t.Errorf("LoginURL() missing params: %q", login)
	}

	logout := e.LogoutURL()
	if !strings.HasPrefix(logout, "https://auth.example.com/logout?") {
		t.Errorf("LogoutURL() = %q, want /logout path", logout)
	}
	if !strings.Contains(logout, "logout_uri=") {
		t.Errorf("LogoutURL() missing logout_uri: %q", logout)
	}
}

func TestParseCallbackFragment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare fragment", "id_token=abc&token_type=Bearer", "abc", false},
		{"with hash", "#id_token=abc", "abc", false},
		{"full url", "https://shop.example.com/index.html#id_token=xyz&x=1", "xyz", false},
		{"no token", "token_type=Bearer", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCallbackFragment(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}
