package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"fleetsync-backend/internal/models"
)

// HTTPProvider signs in against the backend's /api/auth endpoints and keeps
// the bearer token for later calls. It is the device-side provider.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
	Error string               `json:"error,omitempty"`
}

// NewHTTPProvider creates a provider for the backend at baseURL. token may
// carry a previously issued bearer token to restore.
func NewHTTPProvider(baseURL, token string) *HTTPProvider {
	return &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		token:      token,
	}
}

// Token returns the current bearer token.
func (p *HTTPProvider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	return p.authenticate(ctx, "/api/auth/signup", email, password)
}

func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	return p.authenticate(ctx, "/api/auth/login", email, password)
}

func (p *HTTPProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.token = ""
	p.mu.Unlock()
	return nil
}

// Restore checks the stored token against /api/auth/status.
func (p *HTTPProvider) Restore(ctx context.Context) (*models.Identity, error) {
	token := p.Token()
	if token == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/auth/status", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		p.SignOut(ctx)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth status returned %d", resp.StatusCode)
	}

	var body struct {
		User models.Identity `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode auth status: %w", err)
	}
	return &body.User, nil
}

func (p *HTTPProvider) authenticate(ctx context.Context, endpoint, email, password string) (*models.Identity, error) {
	payload, err := json.Marshal(credentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach auth service: %w", err)
	}
	defer resp.Body.Close()

	var body authResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode auth response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case resp.StatusCode == http.StatusConflict:
		return nil, ErrEmailTaken
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return nil, fmt.Errorf("auth service returned %d: %s", resp.StatusCode, body.Error)
	case !body.OK || body.User == nil || body.Token == "":
		return nil, fmt.Errorf("auth service returned an empty session")
	}

	p.mu.Lock()
	p.token = body.Token
	p.mu.Unlock()

	return &models.Identity{UID: body.User.ID, Email: body.User.Email, Role: body.User.Role}, nil
}
