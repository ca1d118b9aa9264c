package api

// AuthRequest is the body the sync backend posts to the auth webhook.
// Unknown fields (provider, clientInfo) are ignored.
type AuthRequest struct {
	Token string `json:"token"`
}

// Rules describes one direction (read or write) of a permission document.
type Rules struct {
	QueriesByCollection map[string][]string `json:"queriesByCollection"`
	Everything          bool                `json:"everything"`
}

// Permissions is the document the sync backend enforces for a device.
type Permissions struct {
	Read  Rules `json:"read"`
	Write Rules `json:"write"`
}

// IdentityMetadata is echoed back to the sync backend alongside the permissions.
type IdentityMetadata struct {
	UserRole string `json:"userRole"`
}

// AuthSuccessResponse is returned with 200 when the token is accepted.
type AuthSuccessResponse struct {
	Permissions             Permissions      `json:"permissions"`
	IdentityServiceMetadata IdentityMetadata `json:"identityServiceMetadata"`
	UserID                  string           `json:"userID"`
	ExpirationSeconds       int64            `json:"expirationSeconds"`
	Authenticated           bool             `json:"authenticated"`
}

// AuthFailureResponse is returned for every rejected request.
type AuthFailureResponse struct {
	ClientInfo    string `json:"clientInfo"`
	Reason        string `json:"reason"`
	Authenticated bool   `json:"authenticated"`
}
