package pia

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Penguin-Guru/manual-connections/src/internal/errors"
	"github.com/Penguin-Guru/manual-connections/src/internal/log"
	"github.com/Penguin-Guru/manual-connections/src/internal/utils"
)

// Provider tokens are valid for 24 hours.
const tokenLifetime = 24 * time.Hour

// CachedToken is the on-disk representation of an authentication token.
type CachedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the cached token can still be used.
func (t *CachedToken) Valid() bool {
	return t.Token != "" && time.Now().Before(t.ExpiresAt)
}

// GetToken authenticates against the provider API and returns a fresh token.
func (c *Client) GetToken(username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequest(http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.NewAPIError("failed to create token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAPIError("token request failed", err)
	}
	defer utils.CloseOrWarn(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", errors.NewAuthError("invalid credentials", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewAPIError(
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewAPIError("failed to read token response", err)
	}

	var reply TokenReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", errors.NewAPIError("failed to parse token response", err)
	}
	if reply.Token == "" {
		return "", errors.NewAuthError("token endpoint returned an empty token", nil)
	}

	return reply.Token, nil
}

// CachedTokenFor returns a valid token for the given credentials, reusing
// the cache file when it still holds an unexpired token and refreshing it
// otherwise.
func (c *Client) CachedTokenFor(username, password, cacheFile string) (string, error) {
	if cached, err := LoadCachedToken(cacheFile); err == nil && cached.Valid() {
		log.Debugf("using cached token from %s (expires %s)",
			cacheFile, cached.ExpiresAt.Format(time.RFC3339))
		return cached.Token, nil
	}

	token, err := c.GetToken(username, password)
	if err != nil {
		return "", err
	}

	if err := SaveCachedToken(cacheFile, token); err != nil {
		log.Warnf("failed to cache token: %v", err)
	}
	return token, nil
}

// LoadCachedToken reads a cached token from disk.
func LoadCachedToken(path string) (*CachedToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token CachedToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, errors.NewInternalError("failed to parse token cache", err)
	}
	return &token, nil
}

// SaveCachedToken writes a token to disk with its expiry time.
// The file is written with 0600 permissions since the token grants
// access to the provider account.
func SaveCachedToken(path, token string) error {
	cached := CachedToken{
		Token:     token,
		ExpiresAt: time.Now().Add(tokenLifetime),
	}
	data, err := json.Marshal(&cached)
	if err != nil {
		return errors.NewInternalError("failed to serialize token cache", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewInternalError("failed to create token cache directory", err)
	}
	return os.WriteFile(path, data, 0600)
}
