// Package token implements the session token contract shared by the issuer
// and the webhook: an HS256 JWT carrying sub, role, iat and exp.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Lifetime is fixed for every issued token.
const Lifetime = 8 * time.Hour

// ErrEmptySecret is returned when an issuer or verifier is built without a key.
var ErrEmptySecret = errors.New("token secret is empty")

// Claims представляет payload токена: sub, role, iat, exp
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Option настраивает Issuer или Verifier
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Issuer подписывает токены общим секретом
type Issuer struct {
	now    func() time.Time
	secret []byte
}

// NewIssuer создает Issuer. Пустой секрет недопустим.
func NewIssuer(secret []byte, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	o := buildOptions(opts)
	return &Issuer{secret: secret, now: o.now}, nil
}

// Issue создает подписанный токен для subject с ролью role
func (i *Issuer) Issue(subject, role string) (string, *Claims, error) {
	now := i.now()

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims, nil
}

// Reason tags why a token was rejected.
type Reason int

const (
	// ReasonNone means the token verified.
	ReasonNone Reason = iota
	// ReasonMalformed means the token could not be decoded at all.
	ReasonMalformed
	// ReasonInvalidSignature covers a bad signature and an unexpected algorithm.
	ReasonInvalidSignature
	// ReasonExpired means the signature is good but exp has passed.
	ReasonExpired
	// ReasonMissingClaims means a required registered claim (exp) is absent.
	ReasonMissingClaims
	// ReasonInvalidClaims covers any other claim validation failure (nbf in the future).
	ReasonInvalidClaims
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonMalformed:
		return "malformed"
	case ReasonInvalidSignature:
		return "invalid_signature"
	case ReasonExpired:
		return "expired"
	case ReasonMissingClaims:
		return "missing_claims"
	case ReasonInvalidClaims:
		return "invalid_claims"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Result is the outcome of Verify: Claims on success, Reason and Err otherwise.
type Result struct {
	Claims *Claims
	Err    error
	Reason Reason
}

// OK reports whether the token verified.
func (r Result) OK() bool {
	return r.Reason == ReasonNone && r.Claims != nil
}

// Verifier проверяет подпись и срок действия токенов
type Verifier struct {
	parser *jwt.Parser
	secret []byte
}

// NewVerifier создает Verifier. Пустой секрет недопустим.
func NewVerifier(secret []byte, opts ...Option) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	o := buildOptions(opts)

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(o.now),
	)

	return &Verifier{parser: parser, secret: secret}, nil
}

// Verify never panics on malformed input; every failure is reported through Result.
func (v *Verifier) Verify(tokenString string) Result {
	claims := &Claims{}

	// Подпись проверяется раньше claims, поэтому токен с чужой подписью
	// никогда не будет отнесен к истекшим
	tok, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Result{Reason: classify(err), Err: err}
	}
	if !tok.Valid {
		return Result{Reason: ReasonInvalidSignature, Err: errors.New("token is not valid")}
	}

	return Result{Claims: claims}
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ReasonMissingClaims
	default:
		return ReasonInvalidClaims
	}
}
