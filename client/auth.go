package client

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
)

const refreshTokenPath = "/auth/users/refresh_token"

// accessToken exchanges the configured refresh token for a short-lived
// access token once and caches it until the platform rejects it.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authToken != "" {
		return c.authToken, nil
	}

	refresh, err := c.refreshToken()
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+refreshTokenPath, nil)
	if err != nil {
		return "", NewError(ErrTransport, "indico.auth", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+refresh)

	raw, statusCode, err := c.send(ctx, req)
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return "", NewError(ErrUnauthorized, "indico.auth", "refresh token rejected", nil)
	}
	if err != nil {
		return "", err
	}

	var out struct {
		AuthToken string `json:"auth_token"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", NewError(ErrTransport, "indico.auth", "decode token response", err)
	}
	if out.AuthToken == "" {
		return "", NewError(ErrUnauthorized, "indico.auth", "empty auth_token in response", nil)
	}

	c.logger.Info("indico.auth.ok", "host", c.cfg.Host)
	c.authToken = out.AuthToken
	return c.authToken, nil
}

func (c *Client) refreshToken() (string, error) {
	if t := strings.TrimSpace(c.cfg.APIToken); t != "" {
		return t, nil
	}
	if c.cfg.APITokenPath == "" {
		return "", NewError(ErrUnauthorized, "indico.auth", "no api token configured", nil)
	}
	b, err := os.ReadFile(c.cfg.APITokenPath)
	if err != nil {
		return "", NewError(ErrUnauthorized, "indico.auth", "read api token file", err)
	}
	t := strings.TrimSpace(string(b))
	if t == "" {
		return "", NewError(ErrUnauthorized, "indico.auth", "api token file is empty", nil)
	}
	return t, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.authToken = ""
	c.mu.Unlock()
}
