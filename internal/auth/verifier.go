package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/smallbiznis/agrichar/internal/config"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
)

var (
	ErrMissingToken = errors.New("missing_token")
	ErrInvalidToken = errors.New("invalid_token")
	ErrNoSecret     = errors.New("auth jwt secret is not configured")
)

// Claims is the subset of the identity provider's access token the service
// reads. The role may sit at the top level or under app_metadata.
type Claims struct {
	Role        string      `json:"role,omitempty"`
	AppMetadata appMetadata `json:"app_metadata,omitempty"`
	jwt.RegisteredClaims
}

type appMetadata struct {
	Role string `json:"role,omitempty"`
}

// Verifier checks HS256 bearer tokens issued by the external auth provider.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	parser   *jwt.Parser
}

func NewVerifier(cfg config.Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.AuthJWTSecret)
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Verifier{
		secret:   []byte(secret),
		issuer:   strings.TrimSpace(cfg.AuthJWTIssuer),
		audience: strings.TrimSpace(cfg.AuthJWTAudience),
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Verify parses raw and returns the owner it was issued for.
func (v *Verifier) Verify(raw string) (ownercontext.Owner, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ownercontext.Owner{}, ErrMissingToken
	}

	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return ownercontext.Owner{}, ErrInvalidToken
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return ownercontext.Owner{}, ErrInvalidToken
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return ownercontext.Owner{}, ErrInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return ownercontext.Owner{}, ErrInvalidToken
	}

	role := strings.TrimSpace(claims.AppMetadata.Role)
	if role == "" {
		role = strings.TrimSpace(claims.Role)
	}
	// provider-level roles such as "authenticated" carry no capability
	if !strings.EqualFold(role, ownercontext.RoleAdmin) {
		role = ownercontext.RoleFarmer
	}

	return ownercontext.Owner{ID: subject, Role: strings.ToLower(role)}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}
