package transport

// Package transport is the single HTTP wrapper shared by every outbound
// portal call. It injects the current bearer credential on the way out and
// reacts to the service's unauthenticated status on the way back by tearing
// the session down and forcing navigation to the login destination. The
// triggering call's own error path still runs.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/deskware/portal-client/internal/errors"
	"github.com/deskware/portal-client/internal/ports"
	"github.com/deskware/portal-client/internal/session"
)

// maxErrorBodyBytes caps how much of an error payload is read back.
const maxErrorBodyBytes = 64 << 10

const defaultTimeout = 15 * time.Second

// LoginDest is the destination forced on credential rejection.
const LoginDest = "/login"

// Options groups dependencies for Client.
type Options struct {
	// BaseURL is the identity/portal service root, e.g. http://localhost:8080.
	BaseURL string

	// Sessions supplies the credential and absorbs the teardown on rejection.
	Sessions *session.Store

	// Navigator receives the forced navigation to the login destination.
	Navigator ports.Navigator

	// HTTPClient overrides the underlying client (optional).
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client performs JSON calls against the portal service.
type Client struct {
	baseURL   string
	http      *http.Client
	sessions  *session.Store
	navigator ports.Navigator
	logger    *slog.Logger
}

// NewClient constructs a transport client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("transport: BaseURL is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("transport: Sessions is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	navigator := opts.Navigator
	if navigator == nil {
		navigator = ports.NavigatorFunc(func(string, string) {})
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		http:      httpClient,
		sessions:  opts.Sessions,
		navigator: navigator,
		logger:    logger,
	}, nil
}

// GetJSON issues a GET and decodes a 2xx response into out (when non-nil).
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes a 2xx response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// PutJSON issues a PUT with a JSON body and decodes a 2xx response into out.
func (c *Client) PutJSON(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// DeleteJSON issues a DELETE and decodes a 2xx response into out.
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.injectCredential(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeTransport, "portal service unreachable")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close response body failed", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorStatus(ctx, req, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode response body")
	}
	return nil
}

// injectCredential attaches the bearer credential when a session is present,
// plus a per-request correlation ID. Absent sessions go out unauthenticated.
func (c *Client) injectCredential(req *http.Request) {
	req.Header.Set("X-Request-ID", uuid.NewString())
	sess := c.sessions.Current()
	if sess.Present() {
		req.Header.Set("Authorization", "Bearer "+sess.Credential)
	}
}

// handleErrorStatus converts a non-2xx response to a value-level failure.
// The unauthenticated status additionally tears the session down and forces
// navigation to login; it is the only automatic teardown path.
func (c *Client) handleErrorStatus(ctx context.Context, req *http.Request, resp *http.Response) error {
	reason := readErrorBody(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.sessions.Clear(ctx); err != nil {
			c.logger.Warn("clear session after rejection failed", "error", err)
		}
		c.logger.Info("credential rejected, forcing navigation to login",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
		)
		c.navigator.NavigateTo(LoginDest, "")
		if reason == "" {
			reason = http.StatusText(http.StatusUnauthorized)
		}
		return apperrors.Unauthenticated(reason)
	}

	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	switch resp.StatusCode {
	case http.StatusForbidden:
		return apperrors.Forbidden(reason)
	case http.StatusNotFound:
		return apperrors.NotFound(reason)
	case http.StatusConflict:
		return apperrors.Conflict(reason)
	default:
		return apperrors.Internal(fmt.Sprintf("%s (status %d)", reason, resp.StatusCode))
	}
}

// readErrorBody returns the raw error payload, trimmed, for the caller to
// interpret. Reasons are extracted downstream at the gateway boundary.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
