package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HectorRP3/PhysioCareApi/internal/platform/apperr"
)

// Role is the closed set of identities the API recognises. Roles are
// validated at the boundary; no handler compares raw strings.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePhysio  Role = "physio"
	RolePatient Role = "patient"
)

// ParseRole validates a raw role string against the closed enum.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RolePhysio, RolePatient:
		return Role(s), nil
	}
	return "", apperr.Ef(apperr.ErrValidation, "invalid role: %q", s)
}

// Identity is the decoded content of a verified token.
type Identity struct {
	Login     string    `json:"login"`
	Role      Role      `json:"rol"`
	SubjectID uuid.UUID `json:"id"`
}

// Claims is the JWT payload. Claim names match the mobile clients' existing
// token contract.
type Claims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
	Rol   string `json:"rol"`
}

// tokenTTL is the fixed validity window. There is no refresh mechanism;
// clients re-login after expiry.
const tokenTTL = 2 * time.Hour

// TokenService issues and verifies signed identity tokens. Verification is
// stateless: there is no server-side session or revocation list.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue produces an HS256 token carrying login, role, and the subject's
// profile id, valid for two hours.
func (ts *TokenService) Issue(login string, role Role, subjectID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Login: login,
		Rol:   string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Any failure (bad signature, malformed
// input, expiry) is reported as ErrUnauthenticated so callers treat it as
// "not logged in" rather than an internal error.
func (ts *TokenService) Verify(tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Identity{}, apperr.E(apperr.ErrUnauthenticated, "invalid token")
	}

	role, err := ParseRole(claims.Rol)
	if err != nil {
		return Identity{}, apperr.E(apperr.ErrUnauthenticated, "invalid token")
	}

	// Subject may be absent for admin tokens with no profile linkage.
	subjectID := uuid.Nil
	if claims.Subject != "" {
		if id, err := uuid.Parse(claims.Subject); err == nil {
			subjectID = id
		}
	}

	return Identity{Login: claims.Login, Role: role, SubjectID: subjectID}, nil
}
