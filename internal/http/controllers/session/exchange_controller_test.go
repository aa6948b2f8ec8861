package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/directory/directorytest"
	dto "github.com/poad/poollink/internal/http/dto/session"
	svc "github.com/poad/poollink/internal/http/services/session"
)

var testCookie = dto.CookieConfig{
	Name:     "plsess",
	SameSite: "lax",
	Secure:   true,
	TTL:      time.Hour,
}

func newControllers(fake *directorytest.Fake) *Controllers {
	services := svc.NewServices(svc.Deps{Directory: fake})
	return NewControllers(services, ControllerDeps{Cookie: testCookie})
}

func sessionCookie(refreshToken string) *http.Cookie {
	return &http.Cookie{
		Name:  testCookie.Name,
		Value: dto.Token{RefreshToken: refreshToken}.Encode(),
	}
}

func TestExchange_MissingCookieIs401WithoutDirectoryCall(t *testing.T) {
	fake := directorytest.NewFake()
	ctrl := newControllers(fake)

	req := httptest.NewRequest(http.MethodPost, "/v2/session", nil)
	rec := httptest.NewRecorder()
	ctrl.Exchange.Exchange(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Result().Cookies())
	require.Empty(t, fake.RefreshCalls, "the directory must not be consulted without a session")
}

func TestExchange_MalformedCookieTreatedAsAbsent(t *testing.T) {
	fake := directorytest.NewFake()
	ctrl := newControllers(fake)

	req := httptest.NewRequest(http.MethodPost, "/v2/session", nil)
	req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: "not-base64-json!!"})
	rec := httptest.NewRecorder()
	ctrl.Exchange.Exchange(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, fake.RefreshCalls)
}

func TestExchange_ValidSessionReturnsProjectionAndRotatedCookie(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-old",
		directory.AuthResult{AccessToken: "at-1", RefreshToken: "rt-new", ExpiresIn: 3600},
		directory.Account{
			UserID:        "u1",
			Email:         "ada@example.com",
			EmailVerified: true,
			Status:        directory.StatusConfirmed,
			Identities:    []directory.Identity{{ProviderName: "Google", ProviderUserID: "123"}},
		},
	)
	ctrl := newControllers(fake)

	req := httptest.NewRequest(http.MethodPost, "/v2/session", nil)
	req.AddCookie(sessionCookie("rt-old"))
	rec := httptest.NewRecorder()
	ctrl.Exchange.Exchange(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ExchangeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "at-1", resp.AccessToken)
	require.Equal(t, int32(3600), resp.ExpiresIn)
	require.Equal(t, "u1", resp.Account.UserID)
	require.Equal(t, "ada@example.com", resp.Account.Email)
	require.Len(t, resp.Account.Identities, 1)
	require.Equal(t, "Google", resp.Account.Identities[0].ProviderName)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, testCookie.Name, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	token, ok := dto.DecodeToken(cookies[0].Value)
	require.True(t, ok)
	require.Equal(t, "rt-new", token.RefreshToken)
}

func TestExchange_CookieKeepsOriginalTokenWithoutRotation(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-old",
		directory.AuthResult{AccessToken: "at-1", ExpiresIn: 3600},
		directory.Account{UserID: "u1", Email: "ada@example.com"},
	)
	ctrl := newControllers(fake)

	req := httptest.NewRequest(http.MethodPost, "/v2/session", nil)
	req.AddCookie(sessionCookie("rt-old"))
	rec := httptest.NewRecorder()
	ctrl.Exchange.Exchange(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	token, ok := dto.DecodeToken(cookies[0].Value)
	require.True(t, ok)
	require.Equal(t, "rt-old", token.RefreshToken)
}

func TestExchange_DirectoryOutageIs401NotServerError(t *testing.T) {
	fake := directorytest.NewFake()
	fake.RefreshErr = directory.ErrUnavailable
	ctrl := newControllers(fake)

	req := httptest.NewRequest(http.MethodPost, "/v2/session", nil)
	req.AddCookie(sessionCookie("rt-1"))
	rec := httptest.NewRecorder()
	ctrl.Exchange.Exchange(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, rec.Result().Cookies())
}

func TestSignOut_Always204WithoutCookies(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-1",
		directory.AuthResult{AccessToken: "at-1"},
		directory.Account{UserID: "u1"},
	)
	fake.SignOutErr = directory.ErrUnavailable
	ctrl := newControllers(fake)

	req := httptest.NewRequest(http.MethodPost, "/v2/session/signout", nil)
	req.AddCookie(sessionCookie("rt-1"))
	rec := httptest.NewRecorder()
	ctrl.SignOut.SignOut(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Result().Cookies())
	require.Len(t, fake.SignOutCalls, 1)
}

func TestSignOut_WithoutSessionStill204(t *testing.T) {
	fake := directorytest.NewFake()
	ctrl := newControllers(fake)

	req := httptest.NewRequest(http.MethodPost, "/v2/session/signout", nil)
	rec := httptest.NewRecorder()
	ctrl.SignOut.SignOut(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, fake.RefreshCalls)
}
