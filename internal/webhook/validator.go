// Package webhook validates session tokens presented by the sync backend and
// derives the permission document for the token's role.
package webhook

import (
	"fmt"
	"net/http"
	"time"

	"github.com/iudanet/posauth/internal/permissions"
	"github.com/iudanet/posauth/internal/token"
	"github.com/iudanet/posauth/pkg/api"
)

// ExpirationSeconds is reported to the sync backend for every accepted token.
const ExpirationSeconds = int64(token.Lifetime / time.Second)

// Failure tags why a request was not authenticated.
type Failure int

const (
	// None means the token was accepted.
	None Failure = iota
	// MissingToken: the token field was absent or empty.
	MissingToken
	// Misconfigured: this instance has no verification secret.
	Misconfigured
	// InvalidToken: bad signature, unexpected algorithm or undecodable token.
	InvalidToken
	// Expired: good signature, exp in the past.
	Expired
	// MissingClaims: sub, role or exp absent from a verified token.
	MissingClaims
	// Internal: anything unexpected, including a recovered panic.
	Internal
)

// String is the tag used in logs and traces. Misconfigured is distinct here
// even though clients only see internal_error.
func (f Failure) String() string {
	switch f {
	case None:
		return "none"
	case MissingToken:
		return "missing_token"
	case Misconfigured:
		return "server_misconfigured"
	case InvalidToken:
		return "invalid_token"
	case Expired:
		return "token_expired"
	case MissingClaims:
		return "missing_claims"
	default:
		return "internal_error"
	}
}

// Status returns the HTTP status for the failure.
func (f Failure) Status() int {
	switch f {
	case None:
		return http.StatusOK
	case MissingToken, MissingClaims:
		return http.StatusBadRequest
	case InvalidToken, Expired:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine-stable reason sent to the client.
func (f Failure) Code() string {
	switch f {
	case MissingToken:
		return api.CodeMissingToken
	case InvalidToken:
		return api.CodeInvalidToken
	case Expired:
		return api.CodeTokenExpired
	case MissingClaims:
		return api.CodeMissingClaims
	default:
		return api.CodeInternalError
	}
}

// ClientInfo returns the human-readable reason sent to the client.
func (f Failure) ClientInfo() string {
	switch f {
	case MissingToken:
		return "Token not provided"
	case InvalidToken:
		return "Invalid token"
	case Expired:
		return "Token has expired"
	case MissingClaims:
		return "Token is missing user id or role"
	default:
		return "Internal error"
	}
}

// Outcome is the single result of Validate.
type Outcome struct {
	Permissions api.Permissions
	Err         error // cause, for logs only
	Subject     string
	Role        string
	Failure     Failure
}

// Authenticated reports whether the token was accepted.
func (o Outcome) Authenticated() bool {
	return o.Failure == None
}

// Validator checks tokens and maps roles to permissions.
type Validator struct {
	verifier *token.Verifier
	policy   func(role, subject string) api.Permissions
}

// NewValidator creates a Validator. A nil verifier means the shared secret is
// not configured; every non-empty token then fails with Misconfigured.
func NewValidator(verifier *token.Verifier) *Validator {
	return &Validator{
		verifier: verifier,
		policy:   permissions.For,
	}
}

// Configured reports whether a verification secret is present.
func (v *Validator) Configured() bool {
	return v.verifier != nil
}

// Validate runs the checks in order and never panics.
func (v *Validator) Validate(tokenString string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Failure: Internal, Err: fmt.Errorf("panic during validation: %v", r)}
		}
	}()

	if tokenString == "" {
		return Outcome{Failure: MissingToken}
	}

	if v.verifier == nil {
		return Outcome{Failure: Misconfigured, Err: token.ErrEmptySecret}
	}

	res := v.verifier.Verify(tokenString)
	if !res.OK() {
		return Outcome{Failure: fromReason(res.Reason), Err: res.Err}
	}

	subject, role := res.Claims.Subject, res.Claims.Role
	if subject == "" || role == "" {
		return Outcome{Failure: MissingClaims, Err: fmt.Errorf("sub=%t role=%t", subject != "", role != "")}
	}

	return Outcome{
		Subject:     subject,
		Role:        role,
		Permissions: v.policy(role, subject),
	}
}

func fromReason(r token.Reason) Failure {
	switch r {
	case token.ReasonMalformed, token.ReasonInvalidSignature, token.ReasonInvalidClaims:
		return InvalidToken
	case token.ReasonExpired:
		return Expired
	case token.ReasonMissingClaims:
		return MissingClaims
	default:
		return Internal
	}
}
