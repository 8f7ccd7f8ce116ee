// internal/identity/token_test.go
package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTokenDeterministic(t *testing.T) {
	a := DeriveToken("203.0.113.7", "Mozilla/5.0")
	b := DeriveToken("203.0.113.7", "Mozilla/5.0")
	assert.Equal(t, a, b, "same inputs must derive the same token")
	assert.Len(t, a, 64, "token is hex sha256")
}

func TestDeriveTokenDistinguishesInputs(t *testing.T) {
	base := DeriveToken("203.0.113.7", "Mozilla/5.0")
	assert.NotEqual(t, base, DeriveToken("203.0.113.8", "Mozilla/5.0"))
	assert.NotEqual(t, base, DeriveToken("203.0.113.7", "curl/8.0"))
}

func TestDeriveTokenEmptyAgent(t *testing.T) {
	// Missing agent strings hash as empty, not as an error.
	a := DeriveToken("203.0.113.7", "")
	b := DeriveToken("203.0.113.7", "")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:54321"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:54321"
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

func TestResolveIgnoresClientSuppliedToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:1000"
	r.Header.Set("User-Agent", "Mozilla/5.0")
	r.Header.Set("X-ANON-TOKEN", "attacker-chosen-value")

	assert.Equal(t, DeriveToken("203.0.113.7", "Mozilla/5.0"), Resolve(r),
		"identity is always server-derived, never trusted from a header")
}
