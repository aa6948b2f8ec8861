package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/directory/directorytest"
)

func externalSignUpEvent(userName, email string) *Event {
	return &Event{
		UserPoolID:    "pool-1",
		UserName:      userName,
		TriggerSource: SourcePreSignUpExternal,
		Request: Request{
			UserAttributes: map[string]string{"email": email},
		},
	}
}

func TestPreSignUp_PassThroughForNativeSignUp(t *testing.T) {
	fake := directorytest.NewFake()
	o := NewPreSignUp(PreSignUpDeps{Directory: fake})

	evt := &Event{
		UserName:      "ada",
		TriggerSource: "PreSignUp_SignUp",
		Request:       Request{UserAttributes: map[string]string{"email": "ada@example.com"}},
	}
	out, err := o.Handle(context.Background(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != evt {
		t.Fatal("pass-through must echo the same event")
	}
	if out.Response.AutoVerifyEmail {
		t.Fatal("pass-through must not mutate the response")
	}
	if len(fake.ListCalls) != 0 {
		t.Fatal("pass-through must not hit the directory")
	}
}

func TestPreSignUp_RejectsWhenNoCandidate(t *testing.T) {
	fake := directorytest.NewFake()
	o := NewPreSignUp(PreSignUpDeps{Directory: fake})

	evt := externalSignUpEvent("Google_123", "nobody@example.com")
	out, err := o.Handle(context.Background(), evt)
	if !errors.Is(err, ErrNoLinkCandidate) {
		t.Fatalf("expected ErrNoLinkCandidate, got %v", err)
	}
	if out == nil {
		t.Fatal("rejection must still return the event for the continuation")
	}
	if out.Response.AutoVerifyEmail {
		t.Fatal("rejected event must not be mutated")
	}
}

func TestPreSignUp_LinksOnDifferingProvider(t *testing.T) {
	fake := directorytest.NewFake().WithAccount("ada@example.com", directory.Account{
		UserID: "u1",
		Email:  "ada@example.com",
		Status: directory.StatusConfirmed,
		Identities: []directory.Identity{
			{ProviderName: "LoginWithAmazon", ProviderUserID: "amzn1.abc"},
		},
	})
	o := NewPreSignUp(PreSignUpDeps{Directory: fake})

	evt := externalSignUpEvent("Google_123", "ada@example.com")
	out, err := o.Handle(context.Background(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Response.AutoVerifyEmail {
		t.Fatal("link path must auto-verify the email")
	}
}

func TestPreSignUp_RejectsWhenOnlySelfMatches(t *testing.T) {
	// La única cuenta con ese email es la sombra EXTERNAL_PROVIDER del
	// propio sign-up: excluida, decide NO_CANDIDATE... en rigor
	// PROVIDER_MISMATCH no aplica porque no quedan candidatos.
	fake := directorytest.NewFake().WithAccount("ada@example.com", directory.Account{
		UserID: "google_123",
		Status: directory.StatusExternalProvider,
		Identities: []directory.Identity{
			{ProviderName: "Google", ProviderUserID: "123"},
		},
	})
	o := NewPreSignUp(PreSignUpDeps{Directory: fake})

	_, err := o.Handle(context.Background(), externalSignUpEvent("Google_123", "ada@example.com"))
	if !errors.Is(err, ErrNoLinkCandidate) {
		t.Fatalf("expected ErrNoLinkCandidate, got %v", err)
	}
}

func TestPreSignUp_DirectoryFailureFailsClosed(t *testing.T) {
	fake := directorytest.NewFake()
	fake.ListErr = directory.ErrUnavailable
	o := NewPreSignUp(PreSignUpDeps{Directory: fake})

	_, err := o.Handle(context.Background(), externalSignUpEvent("Google_123", "ada@example.com"))
	if !errors.Is(err, directory.ErrUnavailable) {
		t.Fatalf("expected directory error to propagate, got %v", err)
	}
}

func TestPreSignUp_RejectsExternalSignUpWithoutEmail(t *testing.T) {
	fake := directorytest.NewFake()
	o := NewPreSignUp(PreSignUpDeps{Directory: fake})

	evt := externalSignUpEvent("Google_123", "")
	_, err := o.Handle(context.Background(), evt)
	if !errors.Is(err, ErrNoLinkCandidate) {
		t.Fatalf("expected ErrNoLinkCandidate, got %v", err)
	}
	if len(fake.ListCalls) != 0 {
		t.Fatal("no email means no lookup")
	}
}
