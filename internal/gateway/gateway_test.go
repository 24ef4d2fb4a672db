package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	"github.com/deskware/portal-client/internal/mocks/authmocks"
	"github.com/deskware/portal-client/internal/session"
	"github.com/deskware/portal-client/internal/transport"
)

type fixture struct {
	backend  *authmocks.MemoryBackend
	store    *session.Store
	gateway  *Gateway
	requests *atomic.Int64
}

func newFixture(t *testing.T, handler http.Handler) (*fixture, *httptest.Server) {
	t.Helper()
	requests := &atomic.Int64{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	backend := authmocks.NewMemoryBackend()
	store := session.NewStore(backend, nil)
	client, err := transport.NewClient(transport.Options{
		BaseURL:  srv.URL,
		Sessions: store,
	})
	require.NoError(t, err)
	return &fixture{
		backend:  backend,
		store:    store,
		gateway:  New(client, store, nil),
		requests: requests,
	}, srv
}

func loginHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Username != "sales1" || req.Password != "password" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"401 UNAUTHORIZED \"Invalid credentials!\""}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jwt":            "signed-token",
			"username":       "sales1",
			"departmentName": "SALES",
			"roles":          []map[string]string{{"authority": "ROLE_SALES"}, {"authority": "GENERAL"}},
		})
	})
}

func TestLogin_SuccessEstablishesSession(t *testing.T) {
	fx, _ := newFixture(t, loginHandler(t))

	res := fx.gateway.Login(context.Background(), "sales1", "password")
	require.True(t, res.OK, "reason: %s", res.Reason)
	assert.Equal(t, "sales1", res.Identity.Username)
	assert.Equal(t, "SALES", res.Identity.Department)

	sess := fx.store.Current()
	require.True(t, sess.Present())
	assert.Equal(t, "signed-token", sess.Credential)
	assert.True(t, fx.store.HasRole(domainauth.RoleSales))
	assert.False(t, fx.store.HasRole(domainauth.RoleFinance))
}

func TestLogin_RejectionCleansReasonAndLeavesStoreAbsent(t *testing.T) {
	fx, _ := newFixture(t, loginHandler(t))

	res := fx.gateway.Login(context.Background(), "sales1", "wrong")
	require.False(t, res.OK)
	assert.Equal(t, "Invalid credentials!", res.Reason)
	assert.False(t, fx.store.Current().Present())
	assert.Equal(t, 0, fx.backend.Len())
}

func TestLogin_BareStatusLineBodyIsCleaned(t *testing.T) {
	fx, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`401 UNAUTHORIZED "Bad credentials"`))
	}))

	res := fx.gateway.Login(context.Background(), "u", "p")
	require.False(t, res.OK)
	assert.Equal(t, "Bad credentials", res.Reason)
}

func TestLogin_TransportFailureGetsGenericReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	backend := authmocks.NewMemoryBackend()
	store := session.NewStore(backend, nil)
	client, err := transport.NewClient(transport.Options{BaseURL: srv.URL, Sessions: store})
	require.NoError(t, err)
	g := New(client, store, nil)

	res := g.Login(context.Background(), "sales1", "password")
	require.False(t, res.OK)
	assert.Equal(t, genericLoginFailure, res.Reason)
}

func TestRegister_MalformedEmailShortCircuitsWithoutNetworkCall(t *testing.T) {
	fx, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("no network call expected for a local validation failure")
		w.WriteHeader(http.StatusInternalServerError)
	}))

	res := fx.gateway.Register(context.Background(), RegisterInput{
		Username:        "newbie",
		Email:           "not-an-email",
		Password:        "password",
		ConfirmPassword: "password",
	})
	require.False(t, res.OK)
	assert.Equal(t, "email", res.Field)
	assert.Equal(t, "Please enter a valid email address", res.Reason)
	assert.Zero(t, fx.requests.Load())
}

func TestRegister_LocalPreconditions(t *testing.T) {
	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Email: "a@b.co", Password: "pass", ConfirmPassword: "pass"}, "username"},
		{"missing email", RegisterInput{Username: "u", Password: "pass", ConfirmPassword: "pass"}, "email"},
		{"short password", RegisterInput{Username: "u", Email: "a@b.co", Password: "abc", ConfirmPassword: "abc"}, "password"},
		{"mismatched confirmation", RegisterInput{Username: "u", Email: "a@b.co", Password: "pass", ConfirmPassword: "pas"}, "confirmPassword"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			res := fx.gateway.Register(context.Background(), tc.in)
			require.False(t, res.OK)
			assert.Equal(t, tc.field, res.Field)
			assert.Zero(t, fx.requests.Load())
		})
	}
}

func TestRegister_SuccessIsPendingAndNeverAuthenticates(t *testing.T) {
	fx, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/register", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"username":       "newbie",
			"departmentName": "SALES",
			"roles":          []map[string]string{{"authority": "USER"}, {"authority": "GENERAL"}},
		})
	}))

	res := fx.gateway.Register(context.Background(), RegisterInput{
		Username:        "newbie",
		Email:           "newbie@email.com",
		Password:        "password",
		ConfirmPassword: "password",
		Department:      "SALES",
	})
	require.True(t, res.OK, "reason: %s", res.Reason)
	assert.Equal(t, domainauth.StatusPending, res.Status)
	assert.Equal(t, "newbie", res.Identity.Username)
	assert.False(t, fx.store.Current().Present(), "registration must not establish a session")
	assert.Equal(t, 0, fx.backend.Len())
}

func TestRegister_ConflictReasonSurfaces(t *testing.T) {
	fx, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"UserName Already Taken,"}`))
	}))

	res := fx.gateway.Register(context.Background(), RegisterInput{
		Username:        "taken",
		Email:           "taken@email.com",
		Password:        "password",
		ConfirmPassword: "password",
	})
	require.False(t, res.OK)
	assert.Equal(t, "UserName Already Taken,", res.Reason)
}

func TestLogout_ClearsSessionLocally(t *testing.T) {
	fx, _ := newFixture(t, loginHandler(t))
	ctx := context.Background()
	res := fx.gateway.Login(ctx, "sales1", "password")
	require.True(t, res.OK)

	require.NoError(t, fx.gateway.Logout(ctx))
	assert.False(t, fx.store.Current().Present())
	assert.Equal(t, 0, fx.backend.Len())

	// Idempotent; no remote reachability required.
	require.NoError(t, fx.gateway.Logout(ctx))
}

func TestDepartments_FetchesUnauthenticated(t *testing.T) {
	fx, _ := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/departments", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]string{"ADMIN", "HR", "PAYROLL", "FINANCE", "SALES", "IT"})
	}))

	departments, err := fx.gateway.Departments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ADMIN", "HR", "PAYROLL", "FINANCE", "SALES", "IT"}, departments)
}
