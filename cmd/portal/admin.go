package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/deskware/portal-client/internal/portalapi"
)

type approveOptions struct {
	Username   string
	Roles      []string
	Department string
	Timeout    time.Duration
}

func runAdmin(cmdCtx *commandContext, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: portal admin <users|pending|approve|reject|roles> [flags]")
	}

	action := args[0]
	rest := args[1:]
	switch action {
	case "users":
		return runAdminUsers(cmdCtx)
	case "pending":
		return runAdminPending(cmdCtx)
	case "approve":
		return runAdminApprove(cmdCtx, rest)
	case "reject":
		return runAdminReject(cmdCtx, rest)
	case "roles":
		return runAdminRoles(cmdCtx)
	default:
		return fmt.Errorf("unknown admin action %q", action)
	}
}

func runAdminUsers(cmdCtx *commandContext) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	overview, err := app.Portal.AdminOverview(ctx)
	if err != nil {
		return fmt.Errorf("fetch admin overview: %w", err)
	}

	if err := printEmployees(overview.Users); err != nil {
		return err
	}
	if err := writef(
		os.Stdout,
		"\n%d active, %d pending, %d departments\n",
		len(overview.Users),
		len(overview.Pending),
		len(overview.Departments),
	); err != nil {
		return fmt.Errorf("print overview totals: %w", err)
	}
	return nil
}

func runAdminPending(cmdCtx *commandContext) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	pending, err := app.Portal.PendingUsers(ctx)
	if err != nil {
		return fmt.Errorf("fetch pending users: %w", err)
	}

	if len(pending) == 0 {
		return writeln(os.Stdout, "No accounts awaiting approval.")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Username\tEmail\tDepartment\tStatus"); err != nil {
		return fmt.Errorf("write pending header: %w", err)
	}
	for _, p := range pending {
		if err := writef(w, "%s\t%s\t%s\t%s\n", p.Username, p.Email, p.Department, p.Status); err != nil {
			return fmt.Errorf("write pending row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush pending listing: %w", err)
	}
	return nil
}

func runAdminApprove(cmdCtx *commandContext, args []string) error {
	opts, err := parseApproveFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	res, err := app.Portal.ApproveUser(ctx, opts.Username, portalapi.ApprovalInput{
		Roles:      opts.Roles,
		Department: opts.Department,
	})
	if err != nil {
		return fmt.Errorf("approve %s: %w", opts.Username, err)
	}

	return printActionResult("Approved", opts.Username, res)
}

func runAdminReject(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("admin reject", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
		return errors.New("usage: portal admin reject <username>")
	}
	username := strings.TrimSpace(rest[0])

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	res, err := app.Portal.RejectUser(ctx, username)
	if err != nil {
		return fmt.Errorf("reject %s: %w", username, err)
	}

	return printActionResult("Rejected", username, res)
}

func runAdminRoles(cmdCtx *commandContext) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	roles, err := app.Portal.Roles(ctx)
	if err != nil {
		return fmt.Errorf("fetch roles: %w", err)
	}

	for _, r := range roles {
		if err := writef(os.Stdout, "  %s\n", r); err != nil {
			return fmt.Errorf("print role: %w", err)
		}
	}
	return nil
}

func printEmployees(users []portalapi.Employee) error {
	if len(users) == 0 {
		return writeln(os.Stdout, "No active accounts.")
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Username\tDepartment\tRoles"); err != nil {
		return fmt.Errorf("write user header: %w", err)
	}
	for _, u := range users {
		names := make([]string, len(u.Roles))
		for i, r := range u.Roles {
			names[i] = r.Normalized()
		}
		if err := writef(w, "%s\t%s\t%s\n", u.Username, u.Department, strings.Join(names, ",")); err != nil {
			return fmt.Errorf("write user row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush user listing: %w", err)
	}
	return nil
}

func printActionResult(verb, username string, res portalapi.ActionResult) error {
	if res.Message != "" {
		return writef(os.Stdout, "%s %s: %s\n", verb, username, res.Message)
	}
	return writef(os.Stdout, "%s %s\n", verb, username)
}

func parseApproveFlags(args []string) (approveOptions, error) {
	fs := flag.NewFlagSet("admin approve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := approveOptions{Timeout: defaultCommandTimeout}
	var roles string
	fs.StringVar(&roles, "roles", "", "Comma-separated roles to assign (required)")
	fs.StringVar(&opts.Department, "department", "", "Department to assign")
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Timeout for the approval call")

	if err := fs.Parse(args); err != nil {
		return approveOptions{}, err
	}

	rest := fs.Args()
	if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
		return approveOptions{}, errors.New("usage: portal admin approve [flags] <username>")
	}
	opts.Username = strings.TrimSpace(rest[0])

	for _, r := range strings.Split(roles, ",") {
		if trimmed := strings.TrimSpace(r); trimmed != "" {
			opts.Roles = append(opts.Roles, trimmed)
		}
	}
	if len(opts.Roles) == 0 {
		return approveOptions{}, errors.New("--roles is required")
	}
	if opts.Timeout <= 0 {
		return approveOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}
