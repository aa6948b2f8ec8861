// Package linking contains the provider-linking decision engine: pure logic
// that decides whether a freshly federated sign-up should be silently merged
// into an existing account.
package linking

import (
	"strings"

	"github.com/poad/poollink/internal/directory"
)

// Reason explains a Decision.
type Reason string

const (
	// ReasonMatched: al menos un candidato tiene una identidad bajo un
	// provider distinto al del sign-up entrante.
	ReasonMatched Reason = "MATCHED"

	// ReasonNoCandidate: ninguna cuenta comparte el email del sign-up.
	ReasonNoCandidate Reason = "NO_CANDIDATE"

	// ReasonProviderMismatch: hay candidatos pero ninguno satisface la
	// condición de identidad.
	ReasonProviderMismatch Reason = "PROVIDER_MISMATCH"
)

// Decision is the ephemeral outcome of one evaluation. Never persisted.
type Decision struct {
	ShouldLink bool
	Reason     Reason
}

// ProviderTag derives the provider component from a federated username.
// The directory injects the provider before the first underscore
// ("Google_1234567890" -> "Google"). A username without delimiter is its own
// tag.
func ProviderTag(username string) string {
	if i := strings.Index(username, "_"); i > 0 {
		return username[:i]
	}
	return username
}

// Candidates filters accounts eligible as link targets: accounts whose
// status is itself EXTERNAL_PROVIDER are excluded so a provider never
// matches against itself.
func Candidates(accounts []directory.Account) []directory.Account {
	out := make([]directory.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Status == directory.StatusExternalProvider {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Decide evaluates whether the new federated identity should be linked.
//
// Link eligibility requires an existing identity under a provider that
// DIFFERS from the incoming tag: the account already trusts some other
// provider for this email, so the new provider is merged instead of creating
// a duplicate. An identity under the same tag means the directory already
// knows this pairing and nothing should be auto-verified.
//
// Pure function: no side effects, computed fresh per invocation.
func Decide(newProviderTag string, candidates []directory.Account) Decision {
	if len(candidates) == 0 {
		return Decision{ShouldLink: false, Reason: ReasonNoCandidate}
	}
	for _, acc := range candidates {
		for _, id := range acc.Identities {
			if !strings.EqualFold(id.ProviderName, newProviderTag) {
				return Decision{ShouldLink: true, Reason: ReasonMatched}
			}
		}
	}
	return Decision{ShouldLink: false, Reason: ReasonProviderMismatch}
}
