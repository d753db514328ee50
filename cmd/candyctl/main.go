package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/inthon2025/candy-session-go/config"
	"github.com/inthon2025/candy-session-go/internal/adapters/nav"
	"github.com/inthon2025/candy-session-go/internal/adapters/notify"
	"github.com/inthon2025/candy-session-go/internal/bootstrap"
	"github.com/inthon2025/candy-session-go/internal/client"
	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
	"github.com/inthon2025/candy-session-go/internal/guard"
	"github.com/inthon2025/candy-session-go/internal/service"
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

	Client *client.Client
	Roles  *service.RoleService
	Guards bootstrap.Guards
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2)
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
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1)
	}

	cmdCtx, err := buildCommandContext(logger, cfg)
	if err != nil {
		logger.ErrorContext(context.Background(), "bootstrap", "error", err)
		os.Exit(1)
	}

	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1)
	}
}

func buildCommandContext(logger *slog.Logger, cfg config.AppConfig) (*commandContext, error) {
	ctx := context.Background()

	identity := bootstrap.BuildIdentitySource(ctx, bootstrap.IdentityConfig{
		Auth:   cfg.Auth,
		Logger: logger,
	})
	if identity == nil {
		return nil, errors.New("identity source not configured; set AUTH_MODE and provider settings")
	}

	apiClient, err := bootstrap.BuildClient(bootstrap.ClientConfig{
		API:       cfg.API,
		Identity:  identity,
		Navigator: nav.NewLogNavigator(logger),
		Notifier:  notify.NewLogNotifier(logger),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	roles, err := bootstrap.BuildRoleService(cfg.Cache, identity, apiClient, logger)
	if err != nil {
		return nil, err
	}

	return &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Client: apiClient,
		Roles:  roles,
		Guards: bootstrap.BuildGuards(identity, roles, logger),
	}, nil
}

func commands() map[string]command {
	return map[string]command{
		"whoami": {
			name:        "whoami",
			description: "Fetch and print the signed-in user's profile",
			run:         runWhoami,
		},
		"role": {
			name:        "role",
			description: "Resolve and print the session's authorization role",
			run:         runRole,
		},
		"switch-role": {
			name:        "switch-role",
			description: "Switch the session's role (parent|child|mentor|admin)",
			run:         runSwitchRole,
		},
		"candy": {
			name:        "candy",
			description: "Print the session's candy balance",
			run:         runCandy,
		},
		"guard": {
			name:        "guard",
			description: "Evaluate a route guard decision for a path",
			run:         runGuard,
		},
	}
}

func runWhoami(ctx *commandContext, _ []string) error {
	profile, err := ctx.Client.FetchProfile(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	return writef(os.Stdout, "%s <%s> (verified=%t)\n", profile.DisplayName, profile.Email, profile.EmailVerified)
}

func runRole(ctx *commandContext, _ []string) error {
	state := ctx.Roles.Resolve(ctx.Ctx)
	return writef(os.Stdout, "role=%s resolved=%t\n", state.Role, state.Resolved)
}

func runSwitchRole(ctx *commandContext, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: candyctl switch-role <parent|child|mentor|admin>")
	}
	role := domainauth.ParseRole(args[0])
	if !role.Known() {
		return fmt.Errorf("unknown role %q", args[0])
	}
	if err := ctx.Roles.Switch(ctx.Ctx, role); err != nil {
		return err
	}
	return writef(os.Stdout, "switched to %s\n", role)
}

func runCandy(ctx *commandContext, _ []string) error {
	candy, err := ctx.Client.FetchCandyBalance(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("fetch candy balance: %w", err)
	}
	return writef(os.Stdout, "candy=%d\n", candy)
}

func runGuard(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("guard", flag.ContinueOnError)
	variant := fs.String("variant", "protected", "guard variant: public|protected|admin|child")
	path := fs.String("path", domainauth.PathDashboard, "current route path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := guardByName(ctx.Guards, *variant)
	if err != nil {
		return err
	}

	decision, err := g.Mount(ctx.Ctx, *path)
	if err != nil {
		return fmt.Errorf("guard mount: %w", err)
	}
	return writef(os.Stdout, "%s\n", decision)
}

func guardByName(guards bootstrap.Guards, name string) (*guard.Guard, error) {
	switch name {
	case "public":
		return guards.Public, nil
	case "protected":
		return guards.Protected, nil
	case "admin":
		return guards.Admin, nil
	case "child":
		return guards.Child, nil
	default:
		return nil, fmt.Errorf("unknown guard variant %q", name)
	}
}

func printUsage() error {
	if err := writef(os.Stderr, "usage: candyctl <command> [flags]\n\ncommands:\n"); err != nil {
		return err
	}

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(os.Stderr, 0, 0, 2, ' ', 0)
	for _, name := range names {
		if err := writef(tw, "  %s\t%s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
