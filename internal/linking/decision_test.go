package linking

import (
	"testing"

	"github.com/poad/poollink/internal/directory"
)

func TestProviderTag(t *testing.T) {
	cases := map[string]string{
		"Google_109876543210987654321": "Google",
		"LoginWithAmazon_amzn1.abc":    "LoginWithAmazon",
		"plainuser":                    "plainuser",
		"_leading":                     "_leading",
		"Provider_with_many_parts":     "Provider",
	}
	for in, want := range cases {
		if got := ProviderTag(in); got != want {
			t.Fatalf("ProviderTag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCandidates_ExcludesExternalProvider(t *testing.T) {
	accounts := []directory.Account{
		{UserID: "u1", Status: directory.StatusConfirmed},
		{UserID: "u2", Status: directory.StatusExternalProvider},
		{UserID: "u3", Status: directory.StatusUnconfirmed},
	}
	got := Candidates(accounts)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	for _, a := range got {
		if a.Status == directory.StatusExternalProvider {
			t.Fatalf("external-provider account %s not excluded", a.UserID)
		}
	}
}

func TestDecide_NoCandidate(t *testing.T) {
	d := Decide("Google", nil)
	if d.ShouldLink || d.Reason != ReasonNoCandidate {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestDecide_MatchedOnDifferingProvider(t *testing.T) {
	candidates := []directory.Account{
		{
			UserID: "u1",
			Status: directory.StatusConfirmed,
			Identities: []directory.Identity{
				{ProviderName: "LoginWithAmazon", ProviderUserID: "amzn1.abc"},
			},
		},
	}
	d := Decide("Google", candidates)
	if !d.ShouldLink || d.Reason != ReasonMatched {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestDecide_MismatchWhenOnlySameProvider(t *testing.T) {
	// Una identidad bajo el mismo provider no habilita el link.
	candidates := []directory.Account{
		{
			UserID: "u1",
			Status: directory.StatusConfirmed,
			Identities: []directory.Identity{
				{ProviderName: "Google", ProviderUserID: "123"},
			},
		},
	}
	d := Decide("Google", candidates)
	if d.ShouldLink || d.Reason != ReasonProviderMismatch {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestDecide_MismatchWhenNoIdentities(t *testing.T) {
	candidates := []directory.Account{
		{UserID: "u1", Status: directory.StatusConfirmed},
	}
	d := Decide("Google", candidates)
	if d.ShouldLink || d.Reason != ReasonProviderMismatch {
		t.Fatalf("unexpected decision: %+v", d)
	}
}

func TestDecide_CaseInsensitiveProviderComparison(t *testing.T) {
	candidates := []directory.Account{
		{
			UserID: "u1",
			Status: directory.StatusConfirmed,
			Identities: []directory.Identity{
				{ProviderName: "google", ProviderUserID: "123"},
			},
		},
	}
	d := Decide("Google", candidates)
	if d.ShouldLink {
		t.Fatalf("same provider with different case must not link: %+v", d)
	}
}

func TestDecide_IsPure(t *testing.T) {
	candidates := []directory.Account{
		{
			UserID: "u1",
			Status: directory.StatusConfirmed,
			Identities: []directory.Identity{
				{ProviderName: "LoginWithAmazon", ProviderUserID: "a"},
			},
		},
	}
	first := Decide("Google", candidates)
	second := Decide("Google", candidates)
	if first != second {
		t.Fatalf("decision not deterministic: %+v vs %+v", first, second)
	}
}
