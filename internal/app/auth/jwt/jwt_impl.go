package jwt

import (
	"crypto/rsa"
	"errors"
	"os"
	"slices"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/errors"
	claims "github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/gamefi-auth/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const leeway = 2 * time.Minute

type JwtUtilImpl struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
	now        func() time.Time
}

func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	privPem, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse private key")
	}

	pubPem, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse public key")
	}

	return &JwtUtilImpl{
		privateKey: privKey,
		publicKey:  pubKey,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		now:        time.Now,
	}, nil
}

func (j *JwtUtilImpl) registered(userID uuid.UUID, ttl time.Duration) jwt.RegisteredClaims {
	now := j.now()
	return jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    j.issuer,
		Audience:  jwt.ClaimStrings{j.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (j *JwtUtilImpl) GenerateAccessToken(userID uuid.UUID, telegramID string, roles []string) (string, time.Time, string, error) {
	c := claims.AccessClaims{
		RegisteredClaims: j.registered(userID, j.accessTTL),
		Type:             claims.TypeAccess,
		Roles:            roles,
		TelegramID:       telegramID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, c).SignedString(j.privateKey)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign access token")
	}
	return signed, c.ExpiresAt.Time, c.ID, nil
}

func (j *JwtUtilImpl) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, string, error) {
	c := claims.RefreshClaims{
		RegisteredClaims: j.registered(userID, j.refreshTTL),
		Type:             claims.TypeRefresh,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, c).SignedString(j.privateKey)
	if err != nil {
		return "", time.Time{}, "", customErrors.WrapInternal(err, "sign refresh token")
	}
	return signed, c.ExpiresAt.Time, c.ID, nil
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (claims.AccessClaims, error) {
	var c claims.AccessClaims
	if err := j.parse(raw, &c); err != nil {
		return claims.AccessClaims{}, err
	}
	if c.Type != claims.TypeAccess {
		return claims.AccessClaims{}, customErrors.ErrInvalidToken
	}
	return c, nil
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (claims.RefreshClaims, error) {
	var c claims.RefreshClaims
	if err := j.parse(raw, &c); err != nil {
		return claims.RefreshClaims{}, err
	}
	if c.Type != claims.TypeRefresh {
		return claims.RefreshClaims{}, customErrors.ErrInvalidToken
	}
	return c, nil
}

// parse verifies signature, algorithm, time claims, issuer and audience.
func (j *JwtUtilImpl) parse(raw string, into jwt.Claims) error {
	token, err := jwt.ParseWithClaims(raw, into, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return j.publicKey, nil
	}, jwt.WithIssuedAt(), jwt.WithLeeway(leeway), jwt.WithTimeFunc(j.now))
	if err != nil || !token.Valid {
		return customErrors.ErrInvalidToken
	}

	if j.issuer != "" {
		iss, err := into.GetIssuer()
		if err != nil || iss != j.issuer {
			return customErrors.ErrInvalidToken
		}
	}
	if j.audience != "" {
		aud, err := into.GetAudience()
		if err != nil {
			return customErrors.WrapInternal(errors.New("unreadable audience"), "parse token")
		}
		if !slices.Contains(aud, j.audience) {
			return customErrors.ErrInvalidToken
		}
	}
	return nil
}
