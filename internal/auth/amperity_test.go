package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestAuth points the authenticator at a test server. Interval -1 makes
// polling immediate so tests do not sleep.
func newTestAuth(t *testing.T, handler http.HandlerFunc) *Amperity {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	a := NewAmperity()
	a.BaseURL = server.URL
	return a
}

func deviceCode() *DeviceCodeResponse {
	return &DeviceCodeResponse{
		DeviceCode: "dev-123",
		UserCode:   "WXYZ-ABCD",
		ExpiresIn:  60,
		Interval:   -1,
	}
}

func TestStartDeviceFlow(t *testing.T) {
	a := newTestAuth(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/device" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["client_id"] != "lake-cli" {
			t.Errorf("client_id = %q, want lake-cli", body["client_id"])
		}
		json.NewEncoder(w).Encode(DeviceCodeResponse{
			DeviceCode:      "dev-123",
			UserCode:        "WXYZ-ABCD",
			VerificationURI: "https://id.amperity.com/activate",
			ExpiresIn:       600,
			Interval:        5,
		})
	})

	code, err := a.StartDeviceFlow(context.Background())
	if err != nil {
		t.Fatalf("StartDeviceFlow() error = %v", err)
	}
	if code.UserCode != "WXYZ-ABCD" || code.VerificationURI == "" {
		t.Errorf("code = %+v", code)
	}
}

func TestPollTokenApproved(t *testing.T) {
	polls := 0
	a := newTestAuth(t, func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			json.NewEncoder(w).Encode(TokenResponse{Error: "authorization_pending"})
			return
		}
		json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok-999", TokenType: "Bearer"})
	})

	token, err := a.PollToken(context.Background(), deviceCode())
	if err != nil {
		t.Fatalf("PollToken() error = %v", err)
	}
	if token != "tok-999" {
		t.Errorf("token = %q, want tok-999", token)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
}

func TestPollTokenDenied(t *testing.T) {
	a := newTestAuth(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TokenResponse{Error: "access_denied"})
	})

	if _, err := a.PollToken(context.Background(), deviceCode()); err == nil || !strings.Contains(err.Error(), "denied") {
		t.Errorf("PollToken() error = %v, want access denied", err)
	}
}

func TestPollTokenExpired(t *testing.T) {
	a := newTestAuth(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TokenResponse{Error: "expired_token"})
	})

	if _, err := a.PollToken(context.Background(), deviceCode()); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Errorf("PollToken() error = %v, want expiry", err)
	}
}

func TestPollTokenCancelled(t *testing.T) {
	a := newTestAuth(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TokenResponse{Error: "authorization_pending"})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	code := deviceCode()
	code.Interval = 1 // keep polling slow enough for the timeout to win
	if _, err := a.PollToken(ctx, code); err == nil {
		t.Error("PollToken() should fail when the context ends")
	}
}

func TestTokenStorageRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if IsLoggedIn() {
		t.Fatal("IsLoggedIn() = true before any token is saved")
	}
	if err := SaveToken("tok-abc"); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	token, err := LoadToken()
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token != "tok-abc" {
		t.Errorf("token = %q, want tok-abc", token)
	}
	if !IsLoggedIn() {
		t.Error("IsLoggedIn() = false with a saved token")
	}

	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}
	if IsLoggedIn() {
		t.Error("IsLoggedIn() = true after logout")
	}
	if err := DeleteToken(); err != nil {
		t.Errorf("DeleteToken() error = %v, deleting twice must be fine", err)
	}
}
