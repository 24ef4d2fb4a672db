package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/deskware/portal-client/internal/routeguard"
)

type openOptions struct {
	Path    string
	RawJSON bool
	Timeout time.Duration
}

func runOpen(cmdCtx *commandContext, args []string) error {
	opts, err := parseOpenFlags(args)
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

	decision := app.Guard.Navigate(opts.Path)
	if err := printDecision(decision); err != nil {
		return err
	}
	if decision.State != routeguard.StateAllowed {
		return nil
	}

	records, err := app.Portal.PanelRecords(ctx, decision.Route.Path)
	if err != nil {
		return fmt.Errorf("fetch records for %s: %w", decision.Route.Path, err)
	}
	if records == nil {
		return nil
	}

	if opts.RawJSON {
		return writef(os.Stdout, "%s\n", records)
	}
	return writef(os.Stdout, "%s\n", indentJSON(records))
}

func printDecision(d routeguard.Decision) error {
	switch d.State {
	case routeguard.StateAllowed:
		return writef(os.Stdout, "%s: allowed\n", d.Route.Path)
	case routeguard.StateDeniedWrongRole:
		return writef(
			os.Stdout,
			"%s: access denied (requires %s role)\n",
			d.Route.Path,
			d.Route.RequiredRole,
		)
	case routeguard.StateDeniedNoSession:
		return writef(os.Stdout, "%s: sign in required\n", d.Route.Path)
	case routeguard.StateLoading:
		return writef(os.Stdout, "%s: session still restoring\n", d.Route.Path)
	default:
		return fmt.Errorf("unexpected guard state %q", d.State)
	}
}

func parseOpenFlags(args []string) (openOptions, error) {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := openOptions{Timeout: defaultCommandTimeout}
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the raw record payload without indenting")
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Timeout for record fetches")

	if err := fs.Parse(args); err != nil {
		return openOptions{}, err
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return openOptions{}, errors.New("usage: portal open [flags] <path>")
	}
	opts.Path = strings.TrimSpace(rest[0])
	if opts.Path == "" {
		return openOptions{}, errors.New("path is required")
	}
	if opts.Timeout <= 0 {
		return openOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func indentJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
