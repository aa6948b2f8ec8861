package session

// IdentityProjection is one federated identity in the account projection.
type IdentityProjection struct {
	ProviderName string `json:"providerName"`
	UserID       string `json:"userId"`
}

// AccountProjection is the non-sensitive view of the account returned by the
// exchange endpoint. It never carries credentials.
type AccountProjection struct {
	UserID        string               `json:"userId"`
	Email         string               `json:"email"`
	EmailVerified bool                 `json:"emailVerified"`
	Identities    []IdentityProjection `json:"identities,omitempty"`
}

// ExchangeResponse is the 200 body of POST /v2/session.
type ExchangeResponse struct {
	AccessToken string            `json:"accessToken"`
	ExpiresIn   int32             `json:"expiresIn"`
	Account     AccountProjection `json:"account"`
}
