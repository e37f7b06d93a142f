package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPVerifier verifies tokens by calling the provider's userinfo endpoint
// with the bearer token. A 200 response proves the token; anything in the
// 4xx range means the token is invalid.
type HTTPVerifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPVerifier creates a verifier for the given userinfo endpoint.
// client may be nil, in which case a client with a 5s timeout is used.
func NewHTTPVerifier(endpoint string, client *http.Client) *HTTPVerifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPVerifier{endpoint: endpoint, client: client}
}

var _ Verifier = (*HTTPVerifier)(nil)

func (v *HTTPVerifier) Verify(ctx context.Context, token string) (Claims, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		return Claims{}, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return Claims{}, fmt.Errorf("identity: call provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return Claims{}, ErrInvalidToken
	default:
		return Claims{}, fmt.Errorf("identity: provider returned %d", resp.StatusCode)
	}

	var body struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Role  string `json:"custom:role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Claims{}, fmt.Errorf("identity: decode claims: %w", err)
	}
	if body.Sub == "" {
		return Claims{}, ErrInvalidToken
	}

	role := Role(body.Role)
	if role == "" {
		role = RoleCustomer
	}
	return Claims{Subject: body.Sub, Email: body.Email, Role: role}, nil
}
