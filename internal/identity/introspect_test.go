package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPVerifier_ValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"user-1","email":"u1@livekart.local","custom:role":"vendor"}`))
	}))
	defer srv.Close()

	v := NewHTTPVerifier(srv.URL, nil)
	claims, err := v.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "u1@livekart.local", claims.Email)
	assert.Equal(t, RoleVendor, claims.Role)
}

func TestHTTPVerifier_MissingRoleDefaultsToCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sub":"user-2","email":"u2@livekart.local"}`))
	}))
	defer srv.Close()

	claims, err := NewHTTPVerifier(srv.URL, nil).Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, claims.Role)
}

func TestHTTPVerifier_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewHTTPVerifier(srv.URL, nil).Verify(context.Background(), "expired")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHTTPVerifier_EmptySubjectIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"email":"no-sub@livekart.local"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPVerifier(srv.URL, nil).Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHTTPVerifier_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPVerifier(srv.URL, nil).Verify(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestStaticVerifier(t *testing.T) {
	v := StaticVerifier{"tok": {Subject: "dev", Role: RoleAdmin}}

	claims, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "dev", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = v.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
