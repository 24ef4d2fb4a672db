package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/deskware/portal-client/config"
	"github.com/deskware/portal-client/internal/bootstrap"
	"github.com/deskware/portal-client/internal/ports"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultCommandTimeout = 30 * time.Second

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Authenticate against the portal and persist the session",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Clear the persisted session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the current session identity and roles",
			run:         runWhoami,
		},
		"register": {
			name:        "register",
			description: "Submit a registration request for a new account",
			run:         runRegister,
		},
		"departments": {
			name:        "departments",
			description: "List the departments open for registration",
			run:         runDepartments,
		},
		"open": {
			name:        "open",
			description: "Evaluate route access for a portal path and fetch its records",
			run:         runOpen,
		},
		"admin": {
			name:        "admin",
			description: "Administer user accounts (users|pending|approve|reject|roles)",
			run:         runAdmin,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: portal <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-14s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

// consoleNavigator surfaces forced navigations on the terminal. The only
// forced navigation the client performs is the kick to the login route when
// the server rejects a credential.
type consoleNavigator struct {
	logger *slog.Logger
}

func (n *consoleNavigator) NavigateTo(dest, from string) {
	if from != "" {
		if err := writef(os.Stderr, "redirected to %s (from %s)\n", dest, from); err != nil && n.logger != nil {
			n.logger.Error("print navigation failed", "error", err)
		}
		return
	}
	if err := writef(os.Stderr, "redirected to %s; sign in again with `portal login`\n", dest); err != nil && n.logger != nil {
		n.logger.Error("print navigation failed", "error", err)
	}
}

// openApp wires the client and loads the persisted session so commands start
// from whatever state the last run left behind.
func openApp(cmdCtx *commandContext) (*bootstrap.App, error) {
	app, err := bootstrap.NewApp(bootstrap.Deps{
		Config:    cmdCtx.Config,
		Navigator: &consoleNavigator{logger: cmdCtx.Logger},
		Logger:    cmdCtx.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire client: %w", err)
	}

	if loadErr := app.Sessions.Load(cmdCtx.Ctx); loadErr != nil {
		cmdCtx.Logger.Warn("restore session failed", "error", loadErr)
	}
	return app, nil
}

func closeApp(cmdCtx *commandContext, app *bootstrap.App) {
	if err := app.Close(); err != nil {
		cmdCtx.Logger.Warn("close client failed", "error", err)
	}
}

var _ ports.Navigator = (*consoleNavigator)(nil)

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
