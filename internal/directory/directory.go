// Package directory wraps the external Identity Directory (a Cognito user
// pool) behind a narrow client interface. The rest of the service never
// touches the AWS SDK directly: orchestrators and session services depend on
// Client, and tests inject a fake.
package directory

import (
	"context"
	"errors"
)

// AccountStatus is the directory-assigned lifecycle status of an account.
type AccountStatus string

const (
	StatusConfirmed        AccountStatus = "CONFIRMED"
	StatusUnconfirmed      AccountStatus = "UNCONFIRMED"
	StatusExternalProvider AccountStatus = "EXTERNAL_PROVIDER"
)

// Identity is one federated identity attached to an account.
type Identity struct {
	ProviderName   string `json:"providerName"`
	ProviderUserID string `json:"userId"`
}

// Account is the directory's view of a user. The service only reads accounts
// and conditionally patches the email-verified flag; it never creates or
// deletes them.
type Account struct {
	UserID        string
	Email         string
	EmailVerified bool
	Status        AccountStatus
	Identities    []Identity
}

// AuthResult is the outcome of a refresh-token exchange.
// RefreshToken is empty when the directory did not rotate the credential.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
}

// Client define las operaciones consumidas contra el Identity Directory.
// El user pool y el app client quedan fijados en la construcción.
type Client interface {
	// ListAccountsByEmail busca cuentas cuyo email coincide exactamente.
	ListAccountsByEmail(ctx context.Context, email string) ([]Account, error)

	// AdminLinkProvider vincula una identidad federada (provider + sourceID)
	// a la cuenta destino. Re-vincular un provider ya vinculado retorna un
	// error que satisface IsAlreadyLinked.
	AdminLinkProvider(ctx context.Context, provider, sourceID, destinationUserID string) error

	// AdminUpdateAttribute parchea un atributo de la cuenta.
	AdminUpdateAttribute(ctx context.Context, userID, name, value string) error

	// RefreshAuth intercambia un refresh token por credenciales de corta vida.
	RefreshAuth(ctx context.Context, refreshToken string) (*AuthResult, error)

	// GetAccount resuelve la cuenta dueña de un access token.
	GetAccount(ctx context.Context, accessToken string) (*Account, error)

	// GlobalSignOut invalida todas las sesiones del access token.
	GlobalSignOut(ctx context.Context, accessToken string) error
}

// ErrUnavailable marca fallas transitorias del directorio. Los callers
// deciden la política: pre-sign-up niega, post-auth ignora, session degrada
// a no-autenticado.
var ErrUnavailable = errors.New("identity directory unavailable")

// ErrNotAuthorized marca credenciales rechazadas por el directorio
// (refresh token inválido, expirado o revocado).
var ErrNotAuthorized = errors.New("not authorized by identity directory")
