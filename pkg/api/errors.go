package api

// Machine-stable error codes carried in ErrorResponse.Code and
// AuthFailureResponse.Reason. Clients may switch on these values.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeMissingFields      = "missing_fields"
	CodeInvalidField       = "invalid_field"
	CodeUsernameTaken      = "username_taken"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInternalError      = "internal_error"

	CodeMissingToken  = "missing_token"
	CodeInvalidToken  = "invalid_token"
	CodeTokenExpired  = "token_expired"
	CodeMissingClaims = "missing_claims"
)
