// Package session issues and verifies the signed tokens that identify a
// logged-in user across requests.
package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"quill/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the cookie carrying the session token.
const CookieName = "quill_session"

// TTL is the session lifetime.
const TTL = 7 * 24 * time.Hour

const (
	issuer   = "quill"
	audience = "quill-web"
)

// Manager signs, verifies, and revokes session tokens. Tokens are HS256 JWTs;
// revocation is a Redis blacklist keyed by the token's JTI, expiring with the
// token itself. A nil Redis client degrades revocation to best-effort.
type Manager struct {
	secret []byte
	rdb    *redis.Client
}

// NewManager creates a session Manager with the given signing secret.
func NewManager(secret string, rdb *redis.Client) *Manager {
	return &Manager{secret: []byte(secret), rdb: rdb}
}

// Issue creates a signed session token bound to the user ID.
func (m *Manager) Issue(userID uint, name string) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(userID), 10),
		"name": name,
		"iss":  issuer,
		"aud":  audience,
		"exp":  now.Add(TTL).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  newJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the token signature, issuer, audience, and revocation state,
// and returns the user ID it is bound to.
func (m *Manager) Parse(ctx context.Context, tokenString string) (uint, error) {
	userID, jti, _, err := m.parseClaims(tokenString)
	if err != nil {
		return 0, err
	}

	if jti != "" && m.rdb != nil {
		revoked, err := m.rdb.Exists(ctx, "blacklist:"+jti).Result()
		if err == nil && revoked > 0 {
			return 0, fmt.Errorf("session has been revoked")
		}
	}

	return userID, nil
}

// Revoke blacklists the token's JTI until its natural expiry. Revoking an
// invalid or expired token is a no-op, which makes logout idempotent.
func (m *Manager) Revoke(ctx context.Context, tokenString string) error {
	_, jti, exp, err := m.parseClaims(tokenString)
	if err != nil || jti == "" {
		return nil
	}
	if m.rdb == nil {
		middleware.Logger.WarnContext(ctx, "session revocation skipped: no revocation store")
		return nil
	}

	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, "blacklist:"+jti, "1", ttl).Err()
}

func (m *Manager) parseClaims(tokenString string) (userID uint, jti string, exp time.Time, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
	)
	if err != nil || !token.Valid {
		return 0, "", time.Time{}, fmt.Errorf("invalid or expired session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", time.Time{}, fmt.Errorf("invalid session claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", time.Time{}, fmt.Errorf("invalid subject claim")
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "", time.Time{}, fmt.Errorf("invalid user ID in session token")
	}

	jti, _ = claims["jti"].(string)
	if expClaim, err := claims.GetExpirationTime(); err == nil && expClaim != nil {
		exp = expClaim.Time
	}

	return uint(id), jti, exp, nil
}

// newJTI creates a unique token ID so individual sessions can be revoked.
func newJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
