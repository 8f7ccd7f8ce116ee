// internal/identity/token.go
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"os"
	"strings"
)

// defaultSalt matches the salt the original deployment shipped with.
// Override with ANON_TOKEN_SALT; rotating the salt rotates every
// derived identity.
const defaultSalt = "LetsQueue_2025"

// Salt returns the token salt from the environment, or the default.
func Salt() string {
	if s := os.Getenv("ANON_TOKEN_SALT"); s != "" {
		return s
	}
	return defaultSalt
}

// DeriveToken produces the anonymous identity for a client: hex
// SHA-256 of "addr:agent:salt". Deterministic and pure; an empty agent
// string is allowed and simply hashes as empty.
func DeriveToken(addr, agent string) string {
	sum := sha256.Sum256([]byte(addr + ":" + agent + ":" + Salt()))
	return hex.EncodeToString(sum[:])
}

// ClientIP extracts the real client address: first X-Forwarded-For
// entry when present, else the RemoteAddr host.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserAgent returns the client agent string, empty if absent.
func UserAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

// Resolve is the canonical identity resolution for every endpoint:
// always server-derived from connection metadata. Client-supplied
// identity headers are never trusted.
func Resolve(r *http.Request) string {
	return DeriveToken(ClientIP(r), UserAgent(r))
}
