// Package auth implements the Amperity OAuth device flow used by /login and
// the token storage behind it.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/quocvuong92/lake-cli/internal/constants"
)

const (
	DefaultBaseURL = "https://id.amperity.com"
	clientID       = "lake-cli"
)

// DeviceCodeResponse is the reply from the device authorization endpoint.
type DeviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// TokenResponse is the reply from the token endpoint while polling.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// Amperity performs the device flow against one identity host. BaseURL is
// a field so tests can point it at an httptest server.
type Amperity struct {
	BaseURL    string
	httpClient *http.Client
}

// NewAmperity creates an authenticator against the production host.
func NewAmperity() *Amperity {
	return &Amperity{
		BaseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: constants.DefaultOAuthTimeout},
	}
}

func (a *Amperity) post(ctx context.Context, path string, body map[string]string, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth request failed: status %d, body: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// StartDeviceFlow requests a device code the user confirms in a browser.
func (a *Amperity) StartDeviceFlow(ctx context.Context) (*DeviceCodeResponse, error) {
	var out DeviceCodeResponse
	err := a.post(ctx, "/oauth/device", map[string]string{"client_id": clientID}, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to start device flow: %w", err)
	}
	return &out, nil
}

// PollToken polls the token endpoint until the user approves, the code
// expires, or ctx is cancelled.
func (a *Amperity) PollToken(ctx context.Context, code *DeviceCodeResponse) (string, error) {
	interval := time.Duration(code.Interval+1) * time.Second
	deadline := time.Now().Add(time.Duration(code.ExpiresIn) * time.Second)

	body := map[string]string{
		"client_id":   clientID,
		"device_code": code.DeviceCode,
		"grant_type":  "urn:ietf:params:oauth:grant-type:device_code",
	}

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("device code expired, please log in again")
		}

		var token TokenResponse
		err := a.post(ctx, "/oauth/token", body, &token)
		switch {
		case err != nil && ctx.Err() != nil:
			return "", ctx.Err()
		case err == nil && token.AccessToken != "":
			return token.AccessToken, nil
		case err == nil && token.Error == "slow_down":
			interval += 5 * time.Second
		case err == nil && token.Error == "expired_token":
			return "", fmt.Errorf("device code expired, please log in again")
		case err == nil && token.Error == "access_denied":
			return "", fmt.Errorf("access denied")
		case err == nil && token.Error != "" && token.Error != "authorization_pending":
			return "", fmt.Errorf("OAuth error: %s - %s", token.Error, token.ErrorDesc)
		}
		// Transport errors and authorization_pending both mean wait and retry.

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}

// TokenPath returns where the Amperity token lives on disk.
func TokenPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "lake-cli", "amperity-token"), nil
}

// SaveToken persists the token with owner-only permissions.
func SaveToken(token string) error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

// LoadToken reads the stored token.
func LoadToken() (string, error) {
	path, err := TokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("not logged in, run 'lake login' first")
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("token file is empty, run 'lake login' again")
	}
	return string(data), nil
}

// DeleteToken removes the stored token; missing is not an error.
func DeleteToken() error {
	path, err := TokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// IsLoggedIn reports whether a usable token exists.
func IsLoggedIn() bool {
	token, err := LoadToken()
	return err == nil && token != ""
}
