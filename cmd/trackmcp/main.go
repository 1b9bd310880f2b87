package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/trackmcp/internal/activation"
	"git.home.luguber.info/inful/trackmcp/internal/config"
	"git.home.luguber.info/inful/trackmcp/internal/launch"
	"git.home.luguber.info/inful/trackmcp/internal/probe"
	"git.home.luguber.info/inful/trackmcp/internal/storage"
	"git.home.luguber.info/inful/trackmcp/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Server struct {
		Port  int    `short:"p" help:"Port for MCP server (default: 7861)"`
		Host  string `help:"Host for MCP server (default: 127.0.0.1)"`
		Share bool   `help:"Listen on all interfaces instead of loopback"`
	} `cmd:"" help:"Launch the standalone trackio MCP tool server"`

	Status struct{} `cmd:"" help:"Check trackmcp status and configuration"`

	Test struct {
		URL string `help:"MCP server URL to test" default:"http://localhost:7860"`
	} `cmd:"" help:"Test MCP server functionality"`
}

func main() {
	ctx := kong.Parse(&CLI)

	// Set up logging
	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "server":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", "error", err)
			os.Exit(1)
		}
		if CLI.Server.Port != 0 {
			cfg.Server.Port = CLI.Server.Port
		}
		if CLI.Server.Host != "" {
			cfg.Server.Host = CLI.Server.Host
		}
		if CLI.Server.Share {
			cfg.Server.Share = true
		}
		if err := runServer(cfg); err != nil {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case "status":
		// Status always exits 0; a broken config file is reported and the
		// defaults are used instead.
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			fmt.Printf("Warning: could not load %s (%v), using defaults\n", CLI.Config, err)
			cfg = config.Default()
		}
		runStatus(cfg)
	case "test":
		if err := runTest(CLI.Test.URL); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}

func runServer(cfg *config.Config) error {
	// Create main context for the server
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := newServerApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	// The server boots through the launcher registry so the MCP launch
	// defaults are injected exactly the way an embedding application would
	// get them.
	activation.Default.Register(activation.TargetComponent, app)
	activation.Setup(activation.Default, launch.NewController(nil), nil)

	resolved, err := activation.Default.Resolve(activation.TargetComponent)
	if err != nil {
		return fmt.Errorf("resolve launcher: %w", err)
	}
	if resolved.Original() == nil {
		slog.Info("MCP launch defaults disabled", "toggle", config.EnvEnableMCP)
	}

	if _, err := resolved.Launcher().Launch(ctx, launch.Options{
		Host:  cfg.Server.Host,
		Port:  cfg.Server.Port,
		Share: cfg.Server.Share,
	}); err != nil {
		return err
	}

	slog.Info("Server started, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping server...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	slog.Info("Server stopped successfully")
	return nil
}

func runStatus(cfg *config.Config) {
	fmt.Println("trackmcp status")
	fmt.Println("==================================================")

	fmt.Println("\nEnvironment variables:")
	fmt.Printf("  %s: %s\n", config.EnvEnableMCP, getenvDefault(config.EnvEnableMCP, "true"))
	fmt.Printf("  %s: %s\n", config.EnvMCPActive, getenvDefault(config.EnvMCPActive, "false"))
	fmt.Printf("  %s: %s\n", config.EnvGradioMCP, getenvDefault(config.EnvGradioMCP, "false"))

	fmt.Println("\nPackage status:")
	fmt.Printf("  trackmcp: %s (built %s, commit %s)\n",
		version.Version, version.BuildTime, version.GitCommit)
	if config.MCPEnabled() {
		fmt.Println("  MCP launch defaults: enabled")
	} else {
		fmt.Println("  MCP launch defaults: disabled")
	}

	fmt.Println("\nTrackio projects:")
	printProjects(cfg.Storage.Path)

	fmt.Println("\nUsage:")
	base := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	fmt.Printf("  Local MCP URL: %s%s\n", base, launch.SSEPath)
	fmt.Printf("  Tools schema: %s%s\n", base, launch.SchemaPath)
	fmt.Println("  Start server: trackmcp server")
}

func printProjects(dbPath string) {
	if _, err := os.Stat(dbPath); err != nil {
		fmt.Printf("  No database at %s\n", dbPath)
		return
	}
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Printf("  Error opening database: %v\n", err)
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	projects, err := store.Projects(ctx)
	if err != nil {
		fmt.Printf("  Error checking projects: %v\n", err)
		return
	}
	if len(projects) == 0 {
		fmt.Println("  No projects found")
		return
	}
	fmt.Printf("  Found %d projects:\n", len(projects))
	for i, project := range projects {
		if i == 5 {
			fmt.Printf("    ... and %d more\n", len(projects)-5)
			break
		}
		runs, err := store.Runs(ctx, project)
		if err != nil {
			fmt.Printf("    - %s (error: %v)\n", project, err)
			continue
		}
		fmt.Printf("    - %s (%d runs)\n", project, len(runs))
	}
}

func runTest(url string) error {
	report := probe.New(5*time.Second).Run(context.Background(), url)
	for _, line := range report.Summary() {
		fmt.Println(line)
	}
	// A non-200 status is reported in the summary but is not a failure;
	// only a connection error makes the command exit non-zero.
	if !report.Connected() {
		return fmt.Errorf("server at %s is not reachable", report.BaseURL)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
