package portalapi

// Package portalapi wraps the portal's data endpoints. Every call goes
// through the shared transport client, so credential injection and the
// rejection teardown apply uniformly. Authorization is enforced server-side;
// this client only shapes requests and responses.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	"github.com/deskware/portal-client/internal/transport"
)

// Client calls the portal's admin and department-record endpoints.
type Client struct {
	http *transport.Client
}

// New constructs a portal API client over the shared transport.
func New(http *transport.Client) *Client {
	return &Client{http: http}
}

// Employee is the display record the service returns for active users.
type Employee struct {
	Username   string                 `json:"username"`
	Department string                 `json:"departmentName"`
	Roles      []domainauth.Authority `json:"roles"`
}

// PendingUser is an account awaiting the external approval workflow.
type PendingUser struct {
	Username   string                   `json:"username"`
	Email      string                   `json:"email"`
	Department string                   `json:"department"`
	Status     domainauth.AccountStatus `json:"status"`
}

// ActionResult is the generic acknowledgement for approval actions.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ApprovalInput carries the roles and optional department assigned when
// approving a pending account.
type ApprovalInput struct {
	Roles      []string
	Department string
}

// Overview aggregates the admin landing data.
type Overview struct {
	Users       []Employee
	Pending     []PendingUser
	Departments []string
}

// Users lists active accounts.
func (c *Client) Users(ctx context.Context) ([]Employee, error) {
	var users []Employee
	if err := c.http.GetJSON(ctx, "/admin/getusers", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// PendingUsers lists accounts awaiting approval.
func (c *Client) PendingUsers(ctx context.Context) ([]PendingUser, error) {
	var pending []PendingUser
	if err := c.http.GetJSON(ctx, "/admin/getpendingusers", &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// ApproveUser activates a pending account, assigning roles and, when given,
// a department. The service expects list-valued fields for both.
func (c *Client) ApproveUser(ctx context.Context, username string, in ApprovalInput) (ActionResult, error) {
	body := map[string][]string{"roles": in.Roles}
	if in.Department != "" {
		body["department"] = []string{in.Department}
	}
	var res ActionResult
	if err := c.http.PostJSON(ctx, "/admin/approve/"+url.PathEscape(username), body, &res); err != nil {
		return ActionResult{}, err
	}
	return res, nil
}

// RejectUser marks a pending account rejected.
func (c *Client) RejectUser(ctx context.Context, username string) (ActionResult, error) {
	var res ActionResult
	if err := c.http.PostJSON(ctx, "/admin/reject/"+url.PathEscape(username), nil, &res); err != nil {
		return ActionResult{}, err
	}
	return res, nil
}

// Roles lists every authority known to the service.
func (c *Client) Roles(ctx context.Context) ([]string, error) {
	var roles []string
	if err := c.http.GetJSON(ctx, "/admin/getroles", &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Departments lists department names from the admin endpoint.
func (c *Client) Departments(ctx context.Context) ([]string, error) {
	var departments []string
	if err := c.http.GetJSON(ctx, "/admin/getdepartments", &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

// User fetches a single account by username.
func (c *Client) User(ctx context.Context, username string) (Employee, error) {
	var user Employee
	if err := c.http.GetJSON(ctx, "/admin/getuser/"+url.PathEscape(username), &user); err != nil {
		return Employee{}, err
	}
	return user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, username string) error {
	return c.http.DeleteJSON(ctx, "/admin/delete/"+url.PathEscape(username), nil)
}

// UpdateUser renames an account and returns the updated record.
func (c *Client) UpdateUser(ctx context.Context, username string, updated Employee) (Employee, error) {
	var user Employee
	if err := c.http.PutJSON(ctx, "/admin/update/"+url.PathEscape(username), updated, &user); err != nil {
		return Employee{}, err
	}
	return user, nil
}

// AdminOverview fetches users, pending accounts, and departments
// concurrently, the way the admin landing view loads.
func (c *Client) AdminOverview(ctx context.Context) (Overview, error) {
	var overview Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := c.Users(gctx)
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		overview.Users = users
		return nil
	})
	g.Go(func() error {
		pending, err := c.PendingUsers(gctx)
		if err != nil {
			return fmt.Errorf("fetch pending users: %w", err)
		}
		overview.Pending = pending
		return nil
	})
	g.Go(func() error {
		departments, err := c.Departments(gctx)
		if err != nil {
			return fmt.Errorf("fetch departments: %w", err)
		}
		overview.Departments = departments
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

// Department record endpoints. Each panel renders whatever its endpoint
// returns, so the payloads stay opaque JSON.
const (
	pathEmployeeRecords = "/getemployeerecords"
	pathCustomerRecords = "/getcustomerrecords"
	pathDatacenter      = "/datacenter"
	pathTimecards       = "/timecards"
)

// panelPaths maps a panel destination to its record endpoint. The dashboard
// and admin panel have dedicated loaders.
var panelPaths = map[string]string{
	"/hr":      pathEmployeeRecords,
	"/sales":   pathCustomerRecords,
	"/finance": pathCustomerRecords,
	"/it":      pathDatacenter,
	"/payroll": pathTimecards,
}

// PanelRecords fetches the record payload backing a panel destination.
// Destinations without a record endpoint yield nil.
func (c *Client) PanelRecords(ctx context.Context, panelPath string) (json.RawMessage, error) {
	endpoint, ok := panelPaths[panelPath]
	if !ok {
		return nil, nil
	}
	var payload json.RawMessage
	if err := c.http.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
