// Package cmd implements the shelf command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/maloquacious/semver"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shelf/internal/config"
	"github.com/lepinkainen/shelf/internal/errors"
)

var version = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// CLI represents the complete command structure for the shelf application
type CLI struct {
	// Global flags
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Config  string `help:"Path to a config file (default ./config.yaml)" type:"path"`
	DataDir string `help:"Directory holding the record store"`
	Backend string `help:"Record store backend: fs, sqlite, postgres, memory"`

	Serve   ServeCmd   `cmd:"" help:"Serve the catalog HTTP API"`
	List    ListCmd    `cmd:"" help:"List and search records"`
	Get     GetCmd     `cmd:"" help:"Show one record"`
	Add     AddCmd     `cmd:"" help:"Create a record, completing it from an ISBN lookup"`
	Update  UpdateCmd  `cmd:"" help:"Update fields of a record"`
	Delete  DeleteCmd  `cmd:"" help:"Delete a record"`
	Import  ImportCmd  `cmd:"" help:"Preview or commit a CSV/JSON bulk import"`
	Lookup  LookupCmd  `cmd:"" help:"Look up book metadata by ISBN"`
	Covers  CoversCmd  `cmd:"" help:"Download remote covers and point records at the local files"`
	Export  ExportCmd  `cmd:"" help:"Export records to SQLite or Datasette"`
	Cache   CacheCmd   `cmd:"" help:"Manage the lookup cache"`
	Version VersionCmd `cmd:"" help:"Print the version"`
}

// newParser builds the kong parser. ctx is bound for commands whose Run
// takes a context.Context.
func newParser(cli *CLI, ctx context.Context, extra ...kong.Option) (*kong.Kong, error) {
	opts := []kong.Option{
		kong.Name("shelf"),
		kong.Description("A catalog for a physical book collection."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
	return kong.New(cli, append(opts, extra...)...)
}

// Execute runs the Kong-based CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser, err := newParser(&cli, ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	initLogging(cli.Verbose)
	if err := initConfig(&cli); err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	if err := kctx.Run(); err != nil {
		if errors.IsStopProcessingError(err) {
			slog.Info("Stopped", "reason", err.Error())
			return
		}
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// initConfig loads .env, the optional config file and the global flag
// overrides into the global viper instance.
func initConfig(cli *CLI) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	config.SetDefaults(viper.GetViper())

	if cli.Config != "" {
		viper.SetConfigFile(cli.Config)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cli.Config != "" {
			return fmt.Errorf("failed to read config: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment")
	}

	updateGlobalConfig(cli)
	return nil
}

func updateGlobalConfig(cli *CLI) {
	if cli.DataDir != "" {
		viper.Set("data_dir", cli.DataDir)
	}
	if cli.Backend != "" {
		viper.Set("store.backend", cli.Backend)
	}
}

func initLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if env := os.Getenv("SHELF_LOG_LEVEL"); env != "" {
		level = parseLogLevel(env)
	}

	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func userAgent() string {
	return "shelf/" + version.String()
}

// VersionCmd prints the version
type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	_, err := fmt.Fprintln(stdout, "shelf", version.String())
	return err
}
