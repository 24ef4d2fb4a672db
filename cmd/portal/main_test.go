package main

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/deskware/portal-client/internal/domain/auth"
	"github.com/deskware/portal-client/internal/portalapi"
	"github.com/deskware/portal-client/internal/routeguard"
)

func TestParseOpenFlags(t *testing.T) {
	opts, err := parseOpenFlags([]string{"-json", "/payroll"})
	require.NoError(t, err)
	assert.Equal(t, "/payroll", opts.Path)
	assert.True(t, opts.RawJSON)

	_, err = parseOpenFlags(nil)
	require.Error(t, err)

	_, err = parseOpenFlags([]string{"/hr", "/sales"})
	require.Error(t, err)
}

func TestParseApproveFlags(t *testing.T) {
	opts, err := parseApproveFlags([]string{"-roles", "HR, GENERAL", "-department", "HR", "newhire"})
	require.NoError(t, err)
	assert.Equal(t, "newhire", opts.Username)
	assert.Equal(t, []string{"HR", "GENERAL"}, opts.Roles)
	assert.Equal(t, "HR", opts.Department)

	_, err = parseApproveFlags([]string{"newhire"})
	require.Error(t, err, "roles are required")

	_, err = parseApproveFlags([]string{"-roles", "HR"})
	require.Error(t, err, "username is required")
}

func TestPrintDecision(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, printDecision(routeguard.Decision{
			State: routeguard.StateDeniedWrongRole,
			Route: routeguard.RouteAdmin,
		}))
		require.NoError(t, printDecision(routeguard.Decision{
			State: routeguard.StateDeniedNoSession,
			Route: routeguard.RoutePayroll,
		}))
	})
	assert.Contains(t, out, "/admin: access denied (requires ADMIN role)")
	assert.Contains(t, out, "/payroll: sign in required")
}

func TestPrintEmployeesListsNormalizedRoles(t *testing.T) {
	out := captureStdout(t, func() {
		require.NoError(t, printEmployees([]portalapi.Employee{
			{Username: "hr1", Department: "HR", Roles: []domainauth.Authority{"ROLE_HR", "GENERAL"}},
		}))
	})
	assert.Contains(t, out, "hr1")
	assert.Contains(t, out, "HR,GENERAL")
}

func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer func() {
		os.Stdout = oldStdout
	}()

	os.Stdout = w
	f()
	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	output, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return string(output)
}
