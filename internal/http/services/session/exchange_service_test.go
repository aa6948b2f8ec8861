package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/directory/directorytest"
	"github.com/poad/poollink/internal/metrics"
)

func sampleAccount() directory.Account {
	return directory.Account{
		UserID:        "u1",
		Email:         "ada@example.com",
		EmailVerified: true,
		Status:        directory.StatusConfirmed,
	}
}

func TestExchange_ReturnsRotatedRefreshToken(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-old",
		directory.AuthResult{AccessToken: "at-1", RefreshToken: "rt-new", ExpiresIn: 3600},
		sampleAccount(),
	)
	svc := NewExchangeService(ExchangeDeps{Directory: fake})

	res, err := svc.Exchange(context.Background(), "rt-old")
	require.NoError(t, err)
	require.Equal(t, "at-1", res.AccessToken)
	require.Equal(t, int32(3600), res.ExpiresIn)
	require.Equal(t, "rt-new", res.RefreshToken)
	require.Equal(t, "u1", res.Account.UserID)
}

func TestExchange_KeepsOriginalTokenWhenNotRotated(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-old",
		directory.AuthResult{AccessToken: "at-1", ExpiresIn: 3600},
		sampleAccount(),
	)
	svc := NewExchangeService(ExchangeDeps{Directory: fake})

	res, err := svc.Exchange(context.Background(), "rt-old")
	require.NoError(t, err)
	// El directorio no rotó: se devuelve la credencial que el caller ya tenía.
	require.Equal(t, "rt-old", res.RefreshToken)
}

func TestExchange_InvalidTokenDegradesToUnauthenticated(t *testing.T) {
	svc := NewExchangeService(ExchangeDeps{Directory: directorytest.NewFake()})

	_, err := svc.Exchange(context.Background(), "rt-unknown")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestExchange_DirectoryOutageDegradesToUnauthenticated(t *testing.T) {
	fake := directorytest.NewFake()
	fake.RefreshErr = directory.ErrUnavailable
	svc := NewExchangeService(ExchangeDeps{Directory: fake})

	_, err := svc.Exchange(context.Background(), "rt-1")
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.NotErrorIs(t, err, directory.ErrUnavailable, "outage must not leak past the service")
}

func TestExchange_AccountFetchFailureDegradesToUnauthenticated(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-1",
		directory.AuthResult{AccessToken: "at-1"},
		sampleAccount(),
	)
	fake.GetErr = directory.ErrUnavailable
	svc := NewExchangeService(ExchangeDeps{Directory: fake})

	_, err := svc.Exchange(context.Background(), "rt-1")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSignOut_InvalidatesSessionsBestEffort(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-1",
		directory.AuthResult{AccessToken: "at-1"},
		sampleAccount(),
	)
	svc := NewSignOutService(SignOutDeps{Directory: fake})

	svc.SignOut(context.Background(), "rt-1")
	require.Equal(t, []string{"at-1"}, fake.SignOutCalls)
}

func TestSignOut_SwallowsDirectoryFailures(t *testing.T) {
	fake := directorytest.NewFake().WithSession("rt-1",
		directory.AuthResult{AccessToken: "at-1"},
		sampleAccount(),
	)
	fake.SignOutErr = directory.ErrUnavailable
	svc := NewSignOutService(SignOutDeps{Directory: fake})

	// No retorna error: el caller siempre queda deslogueado.
	svc.SignOut(context.Background(), "rt-1")
	require.Len(t, fake.SignOutCalls, 1)
}

func TestSignOut_MetricSeparatesEffectiveFromNoop(t *testing.T) {
	m := metrics.New()

	// Refresh inválido: la revocación nunca llega a ejecutarse.
	svc := NewSignOutService(SignOutDeps{Directory: directorytest.NewFake(), Metrics: m})
	svc.SignOut(context.Background(), "rt-unknown")

	// Sesión válida: sign-out efectivo.
	fake := directorytest.NewFake().WithSession("rt-1",
		directory.AuthResult{AccessToken: "at-1"},
		sampleAccount(),
	)
	svc = NewSignOutService(SignOutDeps{Directory: fake, Metrics: m})
	svc.SignOut(context.Background(), "rt-1")

	body := scrapeMetrics(t, m)
	require.Contains(t, body, `session_exchanges_total{outcome="signout_noop"} 1`)
	require.Contains(t, body, `session_exchanges_total{outcome="signout"} 1`)
}

func scrapeMetrics(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}
