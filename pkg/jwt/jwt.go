package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the application fields the auth
// middleware needs to rebuild the caller without a database read.
type Claims struct {
	jwt.RegisteredClaims
	Kind           string `json:"kind"`
	Role           string `json:"role,omitempty"`
	OrganizationId string `json:"organizationId,omitempty"`
}

// Manager signs and verifies HS256 tokens with a single shared secret.
type Manager struct {
	secret     string
	issuer     string
	expiration time.Duration
}

func NewManager(secret, issuer string, expirationMinutes int) *Manager {
	return &Manager{
		secret:     secret,
		issuer:     issuer,
		expiration: time.Duration(expirationMinutes) * time.Minute,
	}
}

func (m *Manager) Generate(subject, kind, role, organizationId string) (string, error) {
	if m.secret == "" {
		return "", fmt.Errorf("jwt: empty secret")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
		Kind:           kind,
		Role:           role,
		OrganizationId: organizationId,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(m.secret))
}

// Parse verifies the signature and expiry and returns the claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("jwt: invalid claims")
	}

	return claims, nil
}
