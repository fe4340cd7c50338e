// Package main is the CLI entry point for evilyn.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/evilyn/internal/daemon"
	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/infra"
	"github.com/eliteGoblin/evilyn/internal/module"
	"github.com/eliteGoblin/evilyn/internal/state"
	"github.com/eliteGoblin/evilyn/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "evilyn",
	Short: "Annoyance daemon - small, randomly timed desktop pranks",
	Long: `evilyn runs in the background and, every now and then, swaps the
wallpaper, changes system sounds, slows the mouse down or tampers with
clipboard text. Every schedule is persisted under the home directory,
so restarts neither lose nor repeat a due action.

The annoyance level grows by one every three weeks. Level 0 suspends everything.`,
	Version:      Version,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler in the foreground",
	Long: `Runs the scheduler loop until interrupted (SIGINT/SIGTERM).
Only one instance may run per home directory.`,
	RunE: runRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	homeDir      string
	verbose      bool
	debugTimings bool
	jsonOutput   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", infra.DefaultHomeDir(), "Directory holding all persisted state (env "+infra.HomeEnv+")")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Development logging")
	rootCmd.PersistentFlags().BoolVar(&debugTimings, "debug-timings", false, "Use short module schedules (seconds instead of hours)")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	addStateCommands(rootCmd)
}

// app holds the components shared by every command.
type app struct {
	home   string
	logger *zap.Logger
	store  *infra.TOMLStore
	clock  infra.SystemClock
	base   *state.Base
}

func openApp(logger *zap.Logger) (*app, error) {
	home := infra.NewFileSystemManager().ExpandHome(homeDir)
	store := infra.NewTOMLStore(logger)
	clock := infra.SystemClock{}

	base, outcome, err := state.OpenBase(store, home, module.Names(), clock, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open base state: %w", err)
	}
	if outcome != state.OutcomeLoaded {
		logger.Info("base state initialized",
			zap.String("home", home),
			zap.Stringer("outcome", outcome))
	}

	return &app{home: home, logger: logger, store: store, clock: clock, base: base}, nil
}

func (a *app) env(journal domain.Journal) module.Env {
	timings := module.DefaultTimings()
	if debugTimings {
		timings = module.DebugTimings()
	}
	return module.Env{
		Base:    a.base,
		Store:   a.store,
		Clock:   a.clock,
		Rand:    infra.PRNG{},
		Journal: journal,
		Logger:  a.logger,
		Timings: timings,
	}
}

// modules builds the registry. OS bindings are logging stand-ins; the
// wallpaper one refuses to run without local images.
func (a *app) modules(journal domain.Journal) *module.Registry {
	payload := infra.NewLoggingPayload(a.logger)
	return module.Build(a.env(journal), module.Collaborators{
		Wallpaper: infra.NewAssetGuard(infra.NewFileSystemManager(), payload),
		SysSound:  payload,
		Mouse:     payload,
		Clipboard: infra.NewSystemClipboard(),
	})
}

func runRun(cmd *cobra.Command, args []string) error {
	home := infra.NewFileSystemManager().ExpandHome(homeDir)
	logger := createLogger(home)
	defer func() { _ = logger.Sync() }()

	lock := infra.NewInstanceLock(home, infra.NewProcessManager())
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release instance lock", zap.Error(err))
		}
	}()

	a, err := openApp(logger)
	if err != nil {
		return err
	}

	var journal domain.Journal = infra.NopJournal{}
	if j, err := infra.OpenSQLiteJournal(a.home); err != nil {
		logger.Warn("journal unavailable, firings will not be recorded", zap.Error(err))
	} else {
		journal = j
	}
	defer journal.Close()

	registry := a.modules(journal)
	scheduler := usecase.NewScheduler(a.base, registry, a.clock, logger)
	runner := daemon.NewRunner(daemon.DefaultConfig(), scheduler, a.base, infra.NewSystemTimer, logger)

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Info("evilyn starting",
		zap.String("version", Version),
		zap.String("home", a.home),
		zap.Int("pid", os.Getpid()),
		zap.Strings("modules", registry.Names()),
		zap.Bool("debug_timings", debugTimings))

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// createLogger writes JSON logs to <home>/evilyn.log.
func createLogger(home string) *zap.Logger {
	config := zap.NewProductionConfig()
	if verbose {
		config = zap.NewDevelopmentConfig()
	}
	config.OutputPaths = []string{filepath.Join(home, "evilyn.log")}
	config.ErrorOutputPaths = []string{filepath.Join(home, "evilyn.error.log")}
	if verbose {
		config.OutputPaths = append(config.OutputPaths, "stderr")
	}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if err := os.MkdirAll(home, 0755); err != nil {
		logger, _ := zap.NewProduction()
		return logger
	}

	logger, err := config.Build()
	if err != nil {
		// Fallback to stdout if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

// cliLogger reports warnings from one-shot commands on stderr.
func cliLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("evilyn %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
