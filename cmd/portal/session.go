package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/deskware/portal-client/internal/gateway"
)

type loginOptions struct {
	Username string
	Password string
	Timeout  time.Duration
}

type registerOptions struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	Department      string
	Timeout         time.Duration
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
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

	result := app.Gateway.Login(ctx, opts.Username, opts.Password)
	if !result.OK {
		return fmt.Errorf("login rejected: %s", result.Reason)
	}

	if err := writef(os.Stdout, "Signed in as %s (%s)\n", result.Identity.Username, result.Identity.Department); err != nil {
		return fmt.Errorf("print login summary: %w", err)
	}
	return printRoles(result.Identity.RoleNames())
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	hadSession := app.Sessions.Current().Present()
	if err := app.Gateway.Logout(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	if !hadSession {
		return writeln(os.Stdout, "No session to clear.")
	}
	return writeln(os.Stdout, "Signed out.")
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	sess := app.Sessions.Current()
	if !sess.Present() {
		return writeln(os.Stdout, "Not signed in.")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "Username\t%s\n", sess.Identity.Username); err != nil {
		return fmt.Errorf("write whoami username: %w", err)
	}
	if err := writef(w, "Email\t%s\n", sess.Identity.Email); err != nil {
		return fmt.Errorf("write whoami email: %w", err)
	}
	if err := writef(w, "Department\t%s\n", sess.Identity.Department); err != nil {
		return fmt.Errorf("write whoami department: %w", err)
	}
	if err := writef(w, "Roles\t%s\n", strings.Join(sess.Identity.RoleNames(), ", ")); err != nil {
		return fmt.Errorf("write whoami roles: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush whoami: %w", err)
	}
	return nil
}

func runRegister(cmdCtx *commandContext, args []string) error {
	opts, err := parseRegisterFlags(args)
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

	result := app.Gateway.Register(ctx, gatewayRegisterInput(opts))
	if !result.OK {
		if result.Field != "" {
			return fmt.Errorf("registration rejected (%s): %s", result.Field, result.Reason)
		}
		return fmt.Errorf("registration rejected: %s", result.Reason)
	}

	if err := writef(
		os.Stdout,
		"Registration submitted for %s; account status is %s pending approval.\n",
		result.Identity.Username,
		result.Status,
	); err != nil {
		return fmt.Errorf("print registration summary: %w", err)
	}
	return nil
}

func runDepartments(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	app, err := openApp(cmdCtx)
	if err != nil {
		return err
	}
	defer closeApp(cmdCtx, app)

	departments, err := app.Gateway.Departments(ctx)
	if err != nil {
		return fmt.Errorf("fetch departments: %w", err)
	}

	if len(departments) == 0 {
		return writeln(os.Stdout, "(no departments)")
	}
	for _, d := range departments {
		if err := writef(os.Stdout, "  %s\n", d); err != nil {
			return fmt.Errorf("print department: %w", err)
		}
	}
	return nil
}

func printRoles(roles []string) error {
	if len(roles) == 0 {
		return nil
	}
	if err := writef(os.Stdout, "  Roles: %s\n", strings.Join(roles, ", ")); err != nil {
		return fmt.Errorf("print roles: %w", err)
	}
	return nil
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := loginOptions{Timeout: defaultCommandTimeout}
	fs.StringVar(&opts.Username, "username", "", "Account username (required)")
	fs.StringVar(&opts.Password, "password", "", "Account password (prompted when omitted)")
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Timeout for the login exchange")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}

	opts.Username = strings.TrimSpace(opts.Username)
	if opts.Username == "" {
		return loginOptions{}, errors.New("--username is required")
	}
	if opts.Timeout <= 0 {
		return loginOptions{}, errors.New("--timeout must be greater than zero")
	}

	if opts.Password == "" {
		pw, err := promptSecret("Password: ")
		if err != nil {
			return loginOptions{}, err
		}
		opts.Password = pw
	}

	return opts, nil
}

func parseRegisterFlags(args []string) (registerOptions, error) {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := registerOptions{Timeout: defaultCommandTimeout}
	fs.StringVar(&opts.Username, "username", "", "Desired username (required)")
	fs.StringVar(&opts.Password, "password", "", "Password (prompted when omitted)")
	fs.StringVar(&opts.Email, "email", "", "Contact email (required)")
	fs.StringVar(&opts.Department, "department", "", "Department to register under")
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Timeout for the registration exchange")

	if err := fs.Parse(args); err != nil {
		return registerOptions{}, err
	}

	opts.Username = strings.TrimSpace(opts.Username)
	opts.Email = strings.TrimSpace(opts.Email)
	opts.Department = strings.TrimSpace(opts.Department)
	if opts.Timeout <= 0 {
		return registerOptions{}, errors.New("--timeout must be greater than zero")
	}

	if opts.Password == "" {
		pw, err := promptSecret("Password: ")
		if err != nil {
			return registerOptions{}, err
		}
		confirm, err := promptSecret("Confirm password: ")
		if err != nil {
			return registerOptions{}, err
		}
		opts.Password = pw
		opts.ConfirmPassword = confirm
	} else {
		opts.ConfirmPassword = opts.Password
	}

	return opts, nil
}

func gatewayRegisterInput(opts registerOptions) gateway.RegisterInput {
	return gateway.RegisterInput{
		Username:        opts.Username,
		Password:        opts.Password,
		ConfirmPassword: opts.ConfirmPassword,
		Email:           opts.Email,
		Department:      opts.Department,
	}
}

// promptSecret reads a line from stdin. Field-level validation happens in the
// gateway so the prompt stays dumb.
func promptSecret(label string) (string, error) {
	if err := writef(os.Stderr, "%s", label); err != nil {
		return "", fmt.Errorf("print prompt: %w", err)
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
