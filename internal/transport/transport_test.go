package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	apperrors "github.com/deskware/portal-client/internal/errors"
	"github.com/deskware/portal-client/internal/mocks/authmocks"
	"github.com/deskware/portal-client/internal/session"
	"github.com/deskware/portal-client/internal/testutil"
)

type fixture struct {
	backend   *authmocks.MemoryBackend
	store     *session.Store
	navigator *authmocks.RecordingNavigator
	client    *Client
}

func newFixture(t *testing.T, serverURL string) *fixture {
	t.Helper()
	backend := authmocks.NewMemoryBackend()
	store := session.NewStore(backend, nil)
	navigator := &authmocks.RecordingNavigator{}
	client, err := NewClient(Options{
		BaseURL:   serverURL,
		Sessions:  store,
		Navigator: navigator,
	})
	require.NoError(t, err)
	return &fixture{backend: backend, store: store, navigator: navigator, client: client}
}

func TestClient_InjectsBearerWhenSessionPresent(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	fx := newFixture(t, srv.URL)
	require.NoError(t, fx.store.Establish(context.Background(), testutil.NewIdentity().Build(), "token-1"))

	require.NoError(t, fx.client.GetJSON(context.Background(), "/timecards", nil))
	assert.Equal(t, "Bearer token-1", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestClient_SendsUnauthenticatedWhenAbsent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	fx := newFixture(t, srv.URL)
	var out []string
	require.NoError(t, fx.client.GetJSON(context.Background(), "/auth/departments", &out))
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedTearsDownSessionAndForcesLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}))
	defer srv.Close()

	fx := newFixture(t, srv.URL)
	ctx := context.Background()
	require.NoError(t, fx.store.Establish(ctx, testutil.NewIdentity().Build(), "stale-token"))

	err := fx.client.GetJSON(ctx, "/timecards", nil)

	// The caller's error path still fires.
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))

	// Session cleared, durable storage emptied, navigation forced to login.
	assert.False(t, fx.store.Current().Present())
	assert.Equal(t, 0, fx.backend.Len())
	last, ok := fx.navigator.Last()
	require.True(t, ok, "expected a forced navigation")
	assert.Equal(t, LoginDest, last.Dest)
}

func TestClient_UnauthorizedWithoutSessionStillFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	fx := newFixture(t, srv.URL)
	err := fx.client.GetJSON(context.Background(), "/timecards", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))
	// Clearing an absent session stayed a no-op.
	assert.Zero(t, fx.backend.Deletes)
}

func TestClient_OtherStatusesPassThrough(t *testing.T) {
	cases := []struct {
		status int
		pred   func(error) bool
	}{
		{http.StatusForbidden, apperrors.IsForbidden},
		{http.StatusNotFound, apperrors.IsNotFound},
		{http.StatusConflict, apperrors.IsConflict},
		{http.StatusInternalServerError, apperrors.IsInternal},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		fx := newFixture(t, srv.URL)
		ctx := context.Background()
		require.NoError(t, fx.store.Establish(ctx, testutil.NewIdentity().Build(), "token-1"))

		err := fx.client.GetJSON(ctx, "/whatever", nil)
		require.Error(t, err)
		assert.True(t, tc.pred(err), "status %d mapped wrong: %v", tc.status, err)

		// No teardown for non-401 statuses.
		assert.True(t, fx.store.Current().Present(), "status %d must not clear the session", tc.status)
		_, navigated := fx.navigator.Last()
		assert.False(t, navigated, "status %d must not navigate", tc.status)
		srv.Close()
	}
}

func TestClient_TransportFailureIsValueLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	fx := newFixture(t, srv.URL)
	err := fx.client.GetJSON(context.Background(), "/timecards", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsTransport(err))
}

func TestClient_DecodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"username":"sales1","roles":[{"authority":"ROLE_SALES"}]}`))
	}))
	defer srv.Close()

	fx := newFixture(t, srv.URL)
	var out domainauth.Identity
	require.NoError(t, fx.client.GetJSON(context.Background(), "/admin/getuser/sales1", &out))
	assert.Equal(t, "sales1", out.Username)
	assert.True(t, out.HasRole(domainauth.RoleSales))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)
	_, err = NewClient(Options{BaseURL: "http://localhost:8080"})
	assert.Error(t, err)
}
