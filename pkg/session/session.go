package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried inside the signed session cookie.
type Claims struct {
	AdminID string `json:"admin_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewCodec builds a codec from the configured secret and TTL.
func NewCodec(secret string, ttl time.Duration, issuer string) *Codec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Codec{secret: []byte(secret), ttl: ttl, issuer: issuer}
}

// TTL exposes the configured session lifetime (used for cookie max-age).
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a new session token for the given identity.
func (c *Codec) Issue(adminID, email, name, role string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		AdminID: adminID,
		Email:   email,
		Name:    name,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   adminID,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify decodes a session token. It fails closed: any parse, signature,
// algorithm, or expiry problem yields (nil, false) rather than an error.
func (c *Codec) Verify(token string) (*Claims, bool) {
	if token == "" {
		return nil, false
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, false
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, false
	}
	return claims, true
}
