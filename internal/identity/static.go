package identity

import "context"

// StaticVerifier maps fixed tokens to claims. Intended for local development
// and tests only.
type StaticVerifier map[string]Claims

var _ Verifier = (StaticVerifier)(nil)

func (v StaticVerifier) Verify(_ context.Context, token string) (Claims, error) {
	claims, ok := v[token]
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
