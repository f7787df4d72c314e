package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/projecthub/pkg/errors"
	"github.com/yanqian/projecthub/pkg/util"
)

// MinSecretLength is the shortest signing secret accepted at startup.
const MinSecretLength = 16

// TokenConfig configures the bearer token codec.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// TokenCodec signs identity claims into HS256 JWTs and verifies them back.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    util.Clock
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// NewTokenCodec validates cfg and returns a codec. There is no default secret.
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token signing secret is required")
	}
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("token signing secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenCodec{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    util.NowUTC,
	}, nil
}

// Issue signs a fresh token for user and returns it with the embedded claims.
func (c *TokenCodec) Issue(user UserView) (string, Claims, error) {
	if user.ID <= 0 {
		return "", Claims{}, apperrors.Wrap(CodeInternal, "cannot issue token without user id", nil)
	}
	issued := c.now().UTC().Truncate(time.Second)
	claims := Claims{
		TokenID:   uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(c.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(claims.UserID, 10),
			Issuer:    c.issuer,
			ID:        claims.TokenID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", Claims{}, apperrors.Wrap(CodeInternal, "failed to sign token", err)
	}
	return signed, claims, nil
}

// Verify decodes token. Forged, expired and malformed tokens all yield the same invalid_token error.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, errInvalidToken()
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return Claims{}, errInvalidToken()
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Claims{}, errInvalidToken()
	}
	issued := claims.IssuedAt.Time.UTC()
	expires := claims.ExpiresAt.Time.UTC()
	if !expires.After(issued) || !c.now().Before(expires) {
		return Claims{}, errInvalidToken()
	}
	if claims.UserID <= 0 || claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return Claims{}, errInvalidToken()
	}
	return Claims{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		IssuedAt:  issued,
		ExpiresAt: expires,
	}, nil
}
