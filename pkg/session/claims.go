package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when no access token is stored.
var ErrNoToken = errors.New("no access token stored")

// Claims is the decoded, unverified content of an access token. It is informational only:
// the token is sent as stored regardless of what it contains.
type Claims struct {
	UserID      int64     `json:"user_id"`
	Subject     string    `json:"subject"`
	FullName    string    `json:"full_name"`
	Authorities []string  `json:"authorities"`
	Issuer      string    `json:"issuer"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the token carries an expiry before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !c.ExpiresAt.After(now)
}

type tokenClaims struct {
	UserID      int64  `json:"id"`
	FullName    string `json:"fullName"`
	Authorities string `json:"authorities"`
	jwt.RegisteredClaims
}

// DecodeClaims parses token without verifying its signature.
func DecodeClaims(token string) (Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return Claims{}, fmt.Errorf("decode access token: %w", err)
	}

	out := Claims{
		UserID:   tc.UserID,
		Subject:  tc.Subject,
		FullName: tc.FullName,
		Issuer:   tc.Issuer,
	}
	if tc.ExpiresAt != nil {
		out.ExpiresAt = tc.ExpiresAt.Time
	}
	for _, a := range strings.Split(tc.Authorities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out.Authorities = append(out.Authorities, a)
		}
	}
	return out, nil
}
