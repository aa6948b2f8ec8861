// Package directorytest provides a manual fake of directory.Client for
// testing orchestrators and session services without a real user pool.
package directorytest

import (
	"context"
	"sync"

	"github.com/poad/poollink/internal/directory"
)

// LinkCall records one AdminLinkProvider invocation.
type LinkCall struct {
	Provider          string
	SourceID          string
	DestinationUserID string
}

// AttrCall records one AdminUpdateAttribute invocation.
type AttrCall struct {
	UserID string
	Name   string
	Value  string
}

// Fake is an in-memory directory.Client. Accounts are indexed by email;
// sessions by refresh token. Behavior control fields let tests force errors
// per operation.
//
// Example usage:
//
//	fake := directorytest.NewFake().
//	    WithAccount("a@example.com", directory.Account{UserID: "u1", Status: directory.StatusConfirmed})
type Fake struct {
	mu sync.Mutex

	accountsByEmail map[string][]directory.Account
	sessions        map[string]directory.AuthResult // refresh token -> result
	accountsByToken map[string]directory.Account    // access token -> account

	// Behavior control
	ListErr    error
	LinkErr    error
	UpdateErr  error
	RefreshErr error
	GetErr     error
	SignOutErr error

	// Call tracking
	ListCalls    []string
	LinkCalls    []LinkCall
	AttrCalls    []AttrCall
	RefreshCalls []string
	SignOutCalls []string
}

var _ directory.Client = (*Fake)(nil)

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{
		accountsByEmail: make(map[string][]directory.Account),
		sessions:        make(map[string]directory.AuthResult),
		accountsByToken: make(map[string]directory.Account),
	}
}

// WithAccount registers an account under the given email.
func (f *Fake) WithAccount(email string, acc directory.Account) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountsByEmail[email] = append(f.accountsByEmail[email], acc)
	return f
}

// WithSession makes RefreshAuth succeed for the given refresh token and
// GetAccount resolve the access token to acc.
func (f *Fake) WithSession(refreshToken string, result directory.AuthResult, acc directory.Account) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[refreshToken] = result
	if result.AccessToken != "" {
		f.accountsByToken[result.AccessToken] = acc
	}
	return f
}

func (f *Fake) ListAccountsByEmail(_ context.Context, email string) ([]directory.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls = append(f.ListCalls, email)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return f.accountsByEmail[email], nil
}

func (f *Fake) AdminLinkProvider(_ context.Context, provider, sourceID, destinationUserID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LinkCalls = append(f.LinkCalls, LinkCall{
		Provider:          provider,
		SourceID:          sourceID,
		DestinationUserID: destinationUserID,
	})
	return f.LinkErr
}

func (f *Fake) AdminUpdateAttribute(_ context.Context, userID, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AttrCalls = append(f.AttrCalls, AttrCall{UserID: userID, Name: name, Value: value})
	return f.UpdateErr
}

func (f *Fake) RefreshAuth(_ context.Context, refreshToken string) (*directory.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RefreshCalls = append(f.RefreshCalls, refreshToken)
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	res, ok := f.sessions[refreshToken]
	if !ok {
		return nil, directory.ErrNotAuthorized
	}
	return &res, nil
}

func (f *Fake) GetAccount(_ context.Context, accessToken string) (*directory.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	acc, ok := f.accountsByToken[accessToken]
	if !ok {
		return nil, directory.ErrNotAuthorized
	}
	return &acc, nil
}

func (f *Fake) GlobalSignOut(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SignOutCalls = append(f.SignOutCalls, accessToken)
	return f.SignOutErr
}
