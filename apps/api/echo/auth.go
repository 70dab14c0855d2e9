package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/kmr-srbh/paper-desktop/core"
)

const tokenSubject = "class"

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64 `json:"oriat,omitempty"`
}

type auth struct {
	appName      string
	key          []byte
	ttl          time.Duration
	refreshLimit time.Duration
	config       middleware.JWTConfig
}

func newAuth(conf *core.Config) *auth {
	a := &auth{
		appName:      conf.AppName,
		key:          []byte(conf.SecretKey),
		ttl:          conf.JWTExpirationDelta,
		refreshLimit: conf.JWTRefreshExpirationDelta,
	}
	a.config = middleware.JWTConfig{
		SigningKey:    a.key,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "unlockToken",
		Claims:        new(Claims),
	}
	return a
}

// claims returns the claims of an unlocked session. origIat carries the first unlock over refreshes.
func (a *auth) claims(origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.appName,
			Subject:   tokenSubject,
			ExpiresAt: now.Add(a.ttl).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (a *auth) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.config.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (a *auth) getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(a.config.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok && claims.Subject == tokenSubject {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func (a *auth) refreshToken(ctx echo.Context) (string, error) {
	claims, err := a.getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.refreshLimit)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	token, err := a.generateToken(a.claims(claims.OrigIssuedAt))
	return token, errors.Wrap(err, "generating token")
}
