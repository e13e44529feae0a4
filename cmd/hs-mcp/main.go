// Package main provides the entry point for the hs-mcp server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/homeseer-mcp/hs-mcp/configs"
	"github.com/homeseer-mcp/hs-mcp/internal/config"
	"github.com/homeseer-mcp/hs-mcp/internal/handlers"
	"github.com/homeseer-mcp/hs-mcp/internal/homeseer"
	"github.com/homeseer-mcp/hs-mcp/internal/logging"
	"github.com/homeseer-mcp/hs-mcp/internal/mcp"
)

// defaultPort is the port the MCP HTTP server listens on.
const defaultPort = 8080

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 10 * time.Second

// App holds the CLI application state and dependencies.
type App struct {
	cfgFile  string
	hsURL    string
	hsToken  string
	port     int
	logLevel string
	rootCmd  *cobra.Command
}

// NewApp creates a new CLI application instance with all dependencies.
func NewApp() *App {
	app := &App{}
	app.rootCmd = app.buildRootCmd()
	app.setupFlags()
	app.addCommands()
	return app
}

// buildRootCmd creates the root cobra command.
func (a *App) buildRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hs-mcp",
		Short: "MCP Server for HomeSeer",
		Long: `hs-mcp is a Model Context Protocol (MCP) server that provides
AI agents with access to a HomeSeer home-automation hub.

It exposes HomeSeer devices, device controls, and automation events
as callable tools through the MCP protocol over HTTP.`,
		RunE: a.run,
	}
}

// setupFlags configures CLI flags and binds them to viper.
func (a *App) setupFlags() {
	a.rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: searched config.json)")
	a.rootCmd.PersistentFlags().StringVar(&a.hsURL, "hs-url", "", "HomeSeer JSON API endpoint URL")
	a.rootCmd.PersistentFlags().StringVar(&a.hsToken, "hs-token", "", "HomeSeer API token")
	a.rootCmd.PersistentFlags().IntVar(&a.port, "port", 0, "MCP server port")
	a.rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (TRACE, DEBUG, INFO, WARN, ERROR)")

	viper.SetDefault("server.port", defaultPort)
	viper.SetDefault("logging.level", "INFO")
	mustBindEnv("server.port", "MCP_PORT")
	mustBindEnv("logging.level", "HOMESEER_LOG_LEVEL")
	bindPFlag("server.port", a.rootCmd.PersistentFlags().Lookup("port"))
	bindPFlag("logging.level", a.rootCmd.PersistentFlags().Lookup("log-level"))
}

// addCommands adds subcommands to the root command.
func (a *App) addCommands() {
	a.rootCmd.AddCommand(a.buildConfigCmd())
	a.rootCmd.AddCommand(a.buildInitCmd())
}

// buildConfigCmd creates the config subcommand that displays the effective configuration.
func (a *App) buildConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration with sensitive data masked.

This command shows the configuration that would be used if the server were
started, merged from the config file, environment variables, and CLI flags.`,
		RunE: a.runConfig,
	}
}

// buildInitCmd creates the init subcommand that creates configuration files.
func (a *App) buildInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration files",
		Long: `Create configuration files in the current directory.

This command creates:
  - config.json: JSON configuration file
  - .env: Environment variables file

Existing files are not overwritten.`,
		RunE: a.runInit,
	}
}

// runInit creates configuration files from embedded templates.
func (a *App) runInit(_ *cobra.Command, _ []string) error {
	created := 0

	wasCreated, err := a.writeConfigFile(config.ConfigFileName, configs.ConfigJSON)
	if err != nil {
		return err
	}
	if wasCreated {
		created++
	}

	wasCreated, err = a.writeConfigFile(".env", configs.EnvExample)
	if err != nil {
		return err
	}
	if wasCreated {
		created++
	}

	if created == 0 {
		fmt.Println("All configuration files already exist. Nothing to do.")
		return nil
	}

	fmt.Printf("Created %d configuration file(s) in current directory.\n", created)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit config.json or .env with your HomeSeer settings")
	fmt.Println("  2. Run 'hs-mcp config' to verify your configuration")
	fmt.Println("  3. Run 'hs-mcp' to start the server")

	return nil
}

// writeConfigFile writes content to a file if it doesn't already exist.
// Returns true if the file was created, false if it was skipped.
func (a *App) writeConfigFile(filename string, content []byte) (bool, error) {
	if _, err := os.Stat(filename); err == nil {
		fmt.Printf("Skipping %s (already exists)\n", filename)
		return false, nil
	}

	if err := os.WriteFile(filename, content, 0600); err != nil {
		return false, fmt.Errorf("writing %s: %w", filename, err)
	}

	fmt.Printf("Created %s\n", filename)
	return true, nil
}

// runConfig loads and displays the effective configuration with masked sensitive data.
func (a *App) runConfig(_ *cobra.Command, _ []string) error {
	logger := logging.New(logging.LevelError)
	masked := a.resolveConfig(logger).Masked()

	fmt.Println("Effective Configuration")
	fmt.Println("=======================")
	fmt.Println()
	fmt.Println("HomeSeer:")
	fmt.Printf("  URL:        %s\n", masked.URL)
	fmt.Printf("  Username:   %s\n", masked.Username)
	fmt.Printf("  Password:   %s\n", masked.Password)
	fmt.Printf("  Token:      %s\n", masked.Token)
	fmt.Printf("  Source:     %s\n", masked.Source)
	fmt.Printf("  Timeout:    %ds\n", masked.Timeout)
	fmt.Printf("  Verify SSL: %t\n", masked.VerifySSL)
	fmt.Println()
	fmt.Println("Server:")
	fmt.Printf("  Port:  %d\n", viper.GetInt("server.port"))
	fmt.Println()
	fmt.Println("Logging:")
	fmt.Printf("  Level: %s\n", viper.GetString("logging.level"))

	return nil
}

// applyFlagOverrides layers the CLI flag values over a resolved record.
// Flags sit above the env layer; both the root command and the config
// subcommand go through here.
func (a *App) applyFlagOverrides(cfg config.Config) config.Config {
	if a.hsURL != "" {
		cfg.URL = a.hsURL
	}
	if a.hsToken != "" {
		cfg.Token = a.hsToken
	}
	return cfg
}

// resolveConfig resolves the hub configuration with flag overrides applied.
func (a *App) resolveConfig(logger *logging.Logger) config.Config {
	return a.applyFlagOverrides(config.Resolve(a.cfgFile, logger))
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// bindPFlag binds a flag to viper and logs an error if binding fails.
func bindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		log.Printf("warning: failed to bind flag %s: %v", key, err)
	}
}

// mustBindEnv binds an environment variable to a config key, panicking on error.
// viper.BindEnv only fails if the key is empty, which is a programming error.
func mustBindEnv(key string, envVars ...string) {
	if err := viper.BindEnv(append([]string{key}, envVars...)...); err != nil {
		panic(fmt.Sprintf("failed to bind env var for key %s: %v", key, err))
	}
}

func main() {
	app := NewApp()
	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the main server logic.
func (a *App) run(_ *cobra.Command, _ []string) error {
	// Setup logger with configured level
	logLevel, err := logging.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		log.Printf("Warning: invalid log level %q, using INFO", viper.GetString("logging.level"))
		logLevel = logging.LevelInfo
	}
	logger := logging.New(logLevel)
	logging.SetDefault(logger)

	port := viper.GetInt("server.port")
	logger.Info("Starting hs-mcp server", "port", port)
	logger.Info("Log level", "level", logging.LevelString(logLevel))

	// Resolve configuration once; the manager keeps the record cached and
	// supports explicit reloads.
	manager := config.NewManager(a.cfgFile, logger)
	cfg := a.applyFlagOverrides(manager.Get())

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received signal, shutting down...", "signal", sig)
		cancel()
	}()

	// The hub client holds no connection state; construction cannot fail.
	hsClient := homeseer.NewRESTClient(cfg, logger)

	// Initialize MCP registry and register all tools
	registry := mcp.NewRegistry()
	handlers.RegisterAllTools(registry)

	logger.Info("Registered MCP tools", "count", registry.ToolCount())
	registry.LogRegisteredTools(logger)

	mcpServer := mcp.NewServer(hsClient, registry, port, logger)

	// Start MCP server in goroutine
	go func() {
		if err := mcpServer.Start(); err != nil {
			logger.Error("MCP server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := mcpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down MCP server", "error", err)
	}

	logger.Info("Shutdown complete")
	return nil
}
