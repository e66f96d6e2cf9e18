// ABOUTME: Entry point for promptmesh-gateway
// ABOUTME: Serves the MCP endpoint and seeds organizations, prompts, and API keys

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/promptmesh-gateway/internal/config"
	"github.com/2389/promptmesh-gateway/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                                       _
  _ __  _ __ ___  _ __ ___  _ __ | |_ _ __ ___   ___  ___| |__
 | '_ \| '__/ _ \| '_ ' _ \| '_ \| __| '_ ' _ \ / _ \/ __| '_ \
 | |_) | | | (_) | | | | | | |_) | |_| | | | | |  __/\__ \ | | |
 | .__/|_|  \___/|_| |_| |_| .__/ \__|_| |_| |_|\___||___/_| |_|
 |_|                       |_|
`

const usage = `Usage: promptmesh-gateway <command>

Commands:
  serve                                   Start the gateway server
  init                                    Write a starter config file
  migrate                                 Apply store migrations and exit
  org create --name NAME [--id ID]        Create an organization
  member add --org ORG --user USER --role ROLE
                                          Add a member (owner, admin, viewer)
  prompt create --org ORG --name NAME --content TEXT --creator USER
                [--description TEXT] [--notes TEXT]
                [--arg name[:required|optional[:description]]]...
                                          Create a prompt with its default variant
  key create --user USER --org ORG --name NAME
                                          Issue an API key (printed once)
  key revoke --id KEY                     Revoke an API key
  key list --user USER                    List a user's active API keys
  health                                  Check gateway health
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches a command line (without the program name).
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return runServe(ctx)
	case "init":
		return runInit(out)
	case "migrate":
		return runMigrate(ctx, out)
	case "health":
		return runHealth(ctx, out)
	case "org", "member", "prompt", "key":
		if len(rest) == 0 {
			return fmt.Errorf("%s requires a subcommand", cmd)
		}
		return runAdmin(ctx, cmd, rest[0], rest[1:], out)
	case "help", "-h", "--help":
		_, _ = fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func runServe(ctx context.Context) error {
	configPath := config.ResolvePath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("MCP:       %s\n", cfg.Server.BasePath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", describeDatabase(cfg.Database))
	if cfg.Metrics.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Metrics:   %s\n", cfg.Metrics.Path)
	}
	fmt.Println()

	logger.Info("starting promptmesh-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"driver", cfg.Database.Driver,
	)

	gw, err := gateway.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

// describeDatabase names the store without exposing DSN credentials.
func describeDatabase(cfg config.DatabaseConfig) string {
	if cfg.Driver == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite " + cfg.Path
}

func runInit(out io.Writer) error {
	configPath := config.ResolvePath()
	if err := config.WriteStarter(configPath); err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "  ✓ Created config: %s\n", configPath)
	return nil
}

func runMigrate(ctx context.Context, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, _, err := gateway.OpenStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	_, _ = color.New(color.FgGreen).Fprintf(out, "  ✓ Migrations applied: %s\n", describeDatabase(cfg.Database))
	return nil
}

func runHealth(ctx context.Context, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	_, _ = fmt.Fprintln(out, "healthy")
	return nil
}

// loadConfig loads the resolved config file and installs its logger as the
// default, so store and migration logs follow the configured level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.ResolvePath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setDefaultLogger(cfg.Logging)
	return cfg, nil
}
