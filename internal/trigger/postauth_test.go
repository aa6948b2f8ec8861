package trigger

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/require"

	"github.com/poad/poollink/internal/directory/directorytest"
)

func postAuthEvent(userName, email, identities string) *Event {
	attrs := map[string]string{"email": email}
	if identities != "" {
		attrs["identities"] = identities
	}
	return &Event{
		UserPoolID:    "pool-1",
		UserName:      userName,
		TriggerSource: SourcePostAuthentication,
		Request:       Request{UserAttributes: attrs},
	}
}

func TestPostAuth_LinksMissingProviders(t *testing.T) {
	fake := directorytest.NewFake()
	o := NewPostAuth(PostAuthDeps{
		Directory: fake,
		Providers: []string{"Google", "LoginWithAmazon"},
	})

	evt := postAuthEvent("ada", "ada@example.com",
		`[{"providerName":"Google","userId":"123"}]`)
	out, err := o.Handle(context.Background(), evt)
	require.NoError(t, err)
	require.Same(t, evt, out)

	o.Wait()
	require.Len(t, fake.LinkCalls, 1)
	require.Equal(t, "LoginWithAmazon", fake.LinkCalls[0].Provider)
	require.Equal(t, "ada@example.com", fake.LinkCalls[0].SourceID)
	require.Equal(t, "ada", fake.LinkCalls[0].DestinationUserID)
}

func TestPostAuth_SkipsAuthenticatingProvider(t *testing.T) {
	fake := directorytest.NewFake()
	o := NewPostAuth(PostAuthDeps{
		Directory: fake,
		Providers: []string{"Google", "LoginWithAmazon"},
	})

	// Usuario federado de Google: su propio provider no se re-vincula.
	evt := postAuthEvent("Google_123", "ada@example.com", "")
	_, err := o.Handle(context.Background(), evt)
	require.NoError(t, err)

	o.Wait()
	require.Len(t, fake.LinkCalls, 1)
	require.Equal(t, "LoginWithAmazon", fake.LinkCalls[0].Provider)
}

func TestPostAuth_IdempotentWhenDirectoryRejectsDuplicates(t *testing.T) {
	fake := directorytest.NewFake()
	fake.LinkErr = &types.AliasExistsException{}
	o := NewPostAuth(PostAuthDeps{
		Directory: fake,
		Providers: []string{"Google"},
	})

	evt := postAuthEvent("ada", "ada@example.com", "")
	for i := 0; i < 2; i++ {
		_, err := o.Handle(context.Background(), evt)
		require.NoError(t, err, "invocation %d must not surface duplicate-link errors", i)
	}
	o.Wait()
	require.Len(t, fake.LinkCalls, 2)
}

func TestPostAuth_LinkFailuresNeverBlockCompletion(t *testing.T) {
	fake := directorytest.NewFake()
	fake.LinkErr = context.DeadlineExceeded
	o := NewPostAuth(PostAuthDeps{
		Directory: fake,
		Providers: []string{"Google", "LoginWithAmazon"},
	})

	_, err := o.Handle(context.Background(), postAuthEvent("ada", "ada@example.com", ""))
	require.NoError(t, err)
	o.Wait()
}

func TestPostAuth_PassThroughForOtherSources(t *testing.T) {
	fake := directorytest.NewFake()
	o := NewPostAuth(PostAuthDeps{Directory: fake, Providers: []string{"Google"}})

	evt := &Event{UserName: "ada", TriggerSource: "PostAuthentication_Other"}
	out, err := o.Handle(context.Background(), evt)
	require.NoError(t, err)
	require.Same(t, evt, out)
	o.Wait()
	require.Empty(t, fake.LinkCalls)
}

func TestPostAuth_NoopWhenAllProvidersPresent(t *testing.T) {
	fake := directorytest.NewFake()
	o := NewPostAuth(PostAuthDeps{
		Directory: fake,
		Providers: []string{"Google"},
	})

	evt := postAuthEvent("ada", "ada@example.com",
		`[{"providerName":"Google","userId":"123"}]`)
	_, err := o.Handle(context.Background(), evt)
	require.NoError(t, err)
	o.Wait()
	require.Empty(t, fake.LinkCalls)
}
