package gateway

// Package gateway is the only component permitted to perform the login and
// registration exchange with the remote identity service. All remote-call
// failures are converted to value-level results at this boundary; nothing
// escapes as an unhandled fault.

import (
	"context"
	"errors"
	"log/slog"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	apperrors "github.com/deskware/portal-client/internal/errors"
	"github.com/deskware/portal-client/internal/session"
	"github.com/deskware/portal-client/internal/transport"
)

// Generic display messages used when the service gives no usable reason.
const (
	genericLoginFailure    = "Login failed. Please check your credentials."
	genericRegisterFailure = "Registration failed. Please try again."
)

// Gateway drives the authentication exchange and writes outcomes into the
// session store.
type Gateway struct {
	client *transport.Client
	store  *session.Store
	logger *slog.Logger
}

// New constructs a Gateway.
func New(client *transport.Client, store *session.Store, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{client: client, store: store, logger: logger}
}

// Result is the value-level outcome shared by gateway operations. Failures
// carry a display-ready reason and, for local validation, the form field at
// fault.
type Result struct {
	OK     bool
	Reason string
	Field  string
}

// LoginResult is the outcome of a login attempt.
type LoginResult struct {
	Result
	Identity domainauth.Identity
}

// RegisterResult is the outcome of a registration attempt. Registration
// never authenticates: a successful outcome is a pending account with no
// session and no roles until an external approval occurs.
type RegisterResult struct {
	Result
	Identity domainauth.Identity
	Status   domainauth.AccountStatus
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	Department      string
}

// loginResponse is the wire shape of a successful login. The service has
// emitted the credential under both names over time.
type loginResponse struct {
	Credential string                 `json:"credential"`
	JWT        string                 `json:"jwt"`
	Username   string                 `json:"username"`
	Email      string                 `json:"email"`
	Department string                 `json:"departmentName"`
	Roles      []domainauth.Authority `json:"roles"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// registerResponse is the identity record echoed back for a pending account.
type registerResponse struct {
	Username   string                 `json:"username"`
	Email      string                 `json:"email"`
	Department string                 `json:"departmentName"`
	Roles      []domainauth.Authority `json:"roles"`
	Status     string                 `json:"status"`
}

// Login exchanges credentials for a session. On success the session store is
// updated before the result is returned; on rejection the store is left
// untouched and the result carries a display-ready reason. Concurrent logins
// are independent; the last to establish wins.
func (g *Gateway) Login(ctx context.Context, username, password string) LoginResult {
	var resp loginResponse
	err := g.client.PostJSON(ctx, "/auth/login", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return LoginResult{Result: failureResult(err, genericLoginFailure)}
	}

	credential := resp.Credential
	if credential == "" {
		credential = resp.JWT
	}
	identity := domainauth.Identity{
		Username:   resp.Username,
		Email:      resp.Email,
		Department: resp.Department,
		Roles:      resp.Roles,
	}

	if establishErr := g.store.Establish(ctx, identity, credential); establishErr != nil {
		g.logger.Error("establish session failed", "error", establishErr, "username", username)
		return LoginResult{Result: Result{Reason: genericLoginFailure}}
	}

	g.logger.Info("login succeeded", "username", identity.Username, "department", identity.Department)
	return LoginResult{Result: Result{OK: true}, Identity: identity}
}

// Register submits a registration request after the local precondition
// checks pass. A successful registration leaves the account pending
// approval and establishes no session.
func (g *Gateway) Register(ctx context.Context, in RegisterInput) RegisterResult {
	if vErr := validateRegistration(in); vErr != nil {
		return RegisterResult{Result: Result{Reason: vErr.Message, Field: vErr.Field}}
	}

	var resp registerResponse
	req := registerRequest{
		Username:   in.Username,
		Password:   in.Password,
		Email:      in.Email,
		Department: in.Department,
	}
	if err := g.client.PostJSON(ctx, "/auth/register", req, &resp); err != nil {
		return RegisterResult{Result: failureResult(err, genericRegisterFailure)}
	}

	status := domainauth.AccountStatus(resp.Status)
	if status == "" {
		status = domainauth.StatusPending
	}
	identity := domainauth.Identity{
		Username:   resp.Username,
		Email:      resp.Email,
		Department: resp.Department,
		Roles:      resp.Roles,
	}

	g.logger.Info("registration submitted", "username", identity.Username, "status", status)
	return RegisterResult{Result: Result{OK: true}, Identity: identity, Status: status}
}

// Logout clears the session. It always succeeds locally; the remote service
// is never consulted.
func (g *Gateway) Logout(ctx context.Context) error {
	return g.store.Clear(ctx)
}

// Departments fetches the ordered department names used to populate
// registration choices. The call goes out unauthenticated when no session is
// present.
func (g *Gateway) Departments(ctx context.Context) ([]string, error) {
	var departments []string
	if err := g.client.GetJSON(ctx, "/auth/departments", &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// failureResult maps a transport-layer error to a display-ready failure.
// Remote reasons are extracted from the error payload and cleaned of the
// service's status-line prefix; transport failures get the generic message.
func failureResult(err error, generic string) Result {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrCodeTransport, apperrors.ErrCodeInternal:
			return Result{Reason: generic}
		default:
			if reason := extractReason(appErr.Message); reason != "" {
				return Result{Reason: reason}
			}
		}
	}
	return Result{Reason: generic}
}
