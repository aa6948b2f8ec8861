package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	idp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoAPI is the slice of the Cognito IdP client the directory uses.
// It exists so tests can inject a mock instead of the real SDK client.
type CognitoAPI interface {
	ListUsers(ctx context.Context, params *idp.ListUsersInput, optFns ...func(*idp.Options)) (*idp.ListUsersOutput, error)
	AdminLinkProviderForUser(ctx context.Context, params *idp.AdminLinkProviderForUserInput, optFns ...func(*idp.Options)) (*idp.AdminLinkProviderForUserOutput, error)
	AdminUpdateUserAttributes(ctx context.Context, params *idp.AdminUpdateUserAttributesInput, optFns ...func(*idp.Options)) (*idp.AdminUpdateUserAttributesOutput, error)
	InitiateAuth(ctx context.Context, params *idp.InitiateAuthInput, optFns ...func(*idp.Options)) (*idp.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *idp.GetUserInput, optFns ...func(*idp.Options)) (*idp.GetUserOutput, error)
	GlobalSignOut(ctx context.Context, params *idp.GlobalSignOutInput, optFns ...func(*idp.Options)) (*idp.GlobalSignOutOutput, error)
}

// CognitoConfig configures the Cognito-backed Client.
type CognitoConfig struct {
	Region     string
	UserPoolID string
	ClientID   string

	// Endpoint overrides the service endpoint (LocalStack / cognito-local).
	Endpoint string

	// Static credentials for local endpoints. Empty means the default
	// AWS credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// CognitoOption is a functional option for NewCognito.
type CognitoOption func(*CognitoClient)

// WithAPI sets a custom Cognito API client (for testing).
func WithAPI(api CognitoAPI) CognitoOption {
	return func(c *CognitoClient) {
		c.api = api
	}
}

// CognitoClient implements Client against a Cognito user pool.
type CognitoClient struct {
	api      CognitoAPI
	poolID   string
	clientID string
}

var _ Client = (*CognitoClient)(nil)

// NewCognito creates the Cognito-backed directory client. Unless an API is
// injected via options, it loads the default AWS config for the region.
func NewCognito(ctx context.Context, cfg CognitoConfig, opts ...CognitoOption) (*CognitoClient, error) {
	c := &CognitoClient{
		poolID:   cfg.UserPoolID,
		clientID: cfg.ClientID,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.api == nil {
		var configOpts []func(*awsconfig.LoadOptions) error
		configOpts = append(configOpts, awsconfig.WithRegion(cfg.Region))
		if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
			configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		var clientOpts []func(*idp.Options)
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			clientOpts = append(clientOpts, func(o *idp.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		c.api = idp.NewFromConfig(awsCfg, clientOpts...)
	}

	return c, nil
}

// ListAccountsByEmail implements Client using the pool's ListUsers filter.
func (c *CognitoClient) ListAccountsByEmail(ctx context.Context, email string) ([]Account, error) {
	out, err := c.api.ListUsers(ctx, &idp.ListUsersInput{
		UserPoolId: aws.String(c.poolID),
		Filter:     aws.String(fmt.Sprintf("email = %q", email)),
	})
	if err != nil {
		return nil, wrapDirectoryErr("ListUsers", err)
	}

	accounts := make([]Account, 0, len(out.Users))
	for _, u := range out.Users {
		accounts = append(accounts, accountFromUser(u))
	}
	return accounts, nil
}

// AdminLinkProvider implements Client. sourceID is the attribute value the
// external provider will present on its first sign-in (subject for already
// federated identities, email for link-ahead bookkeeping).
func (c *CognitoClient) AdminLinkProvider(ctx context.Context, provider, sourceID, destinationUserID string) error {
	_, err := c.api.AdminLinkProviderForUser(ctx, &idp.AdminLinkProviderForUserInput{
		UserPoolId: aws.String(c.poolID),
		DestinationUser: &types.ProviderUserIdentifierType{
			ProviderName:           aws.String("Cognito"),
			ProviderAttributeValue: aws.String(destinationUserID),
		},
		SourceUser: &types.ProviderUserIdentifierType{
			ProviderName:           aws.String(provider),
			ProviderAttributeName:  aws.String("Cognito_Subject"),
			ProviderAttributeValue: aws.String(sourceID),
		},
	})
	if err != nil {
		return wrapDirectoryErr("AdminLinkProviderForUser", err)
	}
	return nil
}

// AdminUpdateAttribute implements Client.
func (c *CognitoClient) AdminUpdateAttribute(ctx context.Context, userID, name, value string) error {
	_, err := c.api.AdminUpdateUserAttributes(ctx, &idp.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(c.poolID),
		Username:   aws.String(userID),
		UserAttributes: []types.AttributeType{
			{Name: aws.String(name), Value: aws.String(value)},
		},
	})
	if err != nil {
		return wrapDirectoryErr("AdminUpdateUserAttributes", err)
	}
	return nil
}

// RefreshAuth implements Client via the REFRESH_TOKEN_AUTH flow.
func (c *CognitoClient) RefreshAuth(ctx context.Context, refreshToken string) (*AuthResult, error) {
	out, err := c.api.InitiateAuth(ctx, &idp.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, wrapDirectoryErr("InitiateAuth", err)
	}

	res := &AuthResult{}
	if ar := out.AuthenticationResult; ar != nil {
		res.AccessToken = aws.ToString(ar.AccessToken)
		// El directorio puede no rotar el refresh token; queda vacío.
		res.RefreshToken = aws.ToString(ar.RefreshToken)
		res.ExpiresIn = ar.ExpiresIn
	}
	return res, nil
}

// GetAccount implements Client.
func (c *CognitoClient) GetAccount(ctx context.Context, accessToken string) (*Account, error) {
	out, err := c.api.GetUser(ctx, &idp.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, wrapDirectoryErr("GetUser", err)
	}

	acc := Account{UserID: aws.ToString(out.Username)}
	applyAttributes(&acc, out.UserAttributes)
	return &acc, nil
}

// GlobalSignOut implements Client.
func (c *CognitoClient) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &idp.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return wrapDirectoryErr("GlobalSignOut", err)
	}
	return nil
}

// IsAlreadyLinked reporta si un AdminLinkProvider falló porque la identidad
// ya estaba vinculada. Post-authentication lo trata como no-op.
func IsAlreadyLinked(err error) bool {
	var alias *types.AliasExistsException
	if errors.As(err, &alias) {
		return true
	}
	var invalid *types.InvalidParameterException
	return errors.As(err, &invalid)
}

// accountFromUser mapea un UserType del pool a Account.
func accountFromUser(u types.UserType) Account {
	acc := Account{
		UserID: aws.ToString(u.Username),
		Status: AccountStatus(u.UserStatus),
	}
	applyAttributes(&acc, u.Attributes)
	return acc
}

func applyAttributes(acc *Account, attrs []types.AttributeType) {
	for _, a := range attrs {
		switch aws.ToString(a.Name) {
		case "email":
			acc.Email = aws.ToString(a.Value)
		case "email_verified":
			acc.EmailVerified = aws.ToString(a.Value) == "true"
		case "identities":
			// JSON inválido en el atributo se trata como sin identidades.
			ids, err := ParseIdentities(aws.ToString(a.Value))
			if err == nil {
				acc.Identities = ids
			}
		}
	}
}

// wrapDirectoryErr clasifica errores del SDK en la taxonomía del servicio.
func wrapDirectoryErr(op string, err error) error {
	var notAuth *types.NotAuthorizedException
	if errors.As(err, &notAuth) {
		return fmt.Errorf("%s: %w: %v", op, ErrNotAuthorized, err)
	}
	var alias *types.AliasExistsException
	if errors.As(err, &alias) {
		// Conservar el tipo concreto para IsAlreadyLinked.
		return err
	}
	var invalid *types.InvalidParameterException
	if errors.As(err, &invalid) {
		return err
	}
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}
