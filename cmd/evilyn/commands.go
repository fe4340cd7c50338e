package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/infra"
	"github.com/eliteGoblin/evilyn/internal/module"
	"github.com/eliteGoblin/evilyn/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show annoyance level, module schedules and daemon state",
	Long: `Shows the persisted state under the home directory. Nothing is created:
modules without a document yet are reported as not initialized.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var enableCmd = &cobra.Command{
	Use:   "enable <module>",
	Short: "Enable a module",
	Long:  `Sets the global enable flag of a module. A running daemon picks it up on its next tick.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setModuleEnabled(args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <module>",
	Short: "Disable a module",
	Long:  `Clears the global enable flag of a module. A running daemon picks it up on its next tick.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setModuleEnabled(args[0], false)
	},
}

var levelCmd = &cobra.Command{
	Use:   "level <n>",
	Short: "Set the annoyance level (0 suspends every module)",
	Args:  cobra.ExactArgs(1),
	RunE:  runLevel,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent firings, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var transformsCmd = &cobra.Command{
	Use:   "transforms",
	Short: "List clipboard tamper actions",
	Long: `Lists the clipboard tamper actions in the order they are applied.
--enable/--disable toggle one action in the clipboard document; a running
daemon picks the change up when it restarts. --apply shows what every
transform does to the given text, in order.`,
	Args: cobra.NoArgs,
	RunE: runTransforms,
}

var (
	historyLimit     int
	applyText        string
	enableTransform  string
	disableTransform string
)

func addStateCommands(root *cobra.Command) {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of firings to show")
	transformsCmd.Flags().StringVar(&applyText, "apply", "", "Text to run through every transform")
	transformsCmd.Flags().StringVar(&enableTransform, "enable", "", "Tamper action to enable")
	transformsCmd.Flags().StringVar(&disableTransform, "disable", "", "Tamper action to disable")

	root.AddCommand(statusCmd)
	root.AddCommand(enableCmd)
	root.AddCommand(disableCmd)
	root.AddCommand(levelCmd)
	root.AddCommand(historyCmd)
	root.AddCommand(transformsCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := cliLogger()
	defer func() { _ = logger.Sync() }()

	home := infra.NewFileSystemManager().ExpandHome(homeDir)
	store := infra.NewTOMLStore(logger)

	snap, found, err := state.ReadBase(store, home, module.Names(), infra.SystemClock{})
	if err != nil {
		return err
	}
	statuses, err := module.Peek(store, home)
	if err != nil {
		return err
	}

	fmt.Println("\n=== evilyn Status ===")
	fmt.Printf("Home: %s\n", snap.HomeDir)

	lock := infra.NewInstanceLock(home, infra.NewProcessManager())
	if pid, alive := lock.Holder(); alive {
		fmt.Printf("Daemon: RUNNING (pid %d)\n", pid)
	} else {
		fmt.Println("Daemon: NOT RUNNING")
		fmt.Println("\nRun 'evilyn run' to start it.")
	}
	if !found {
		fmt.Println("No state yet, showing first-run defaults.")
	}

	if snap.AnnoyanceLevel == 0 {
		fmt.Println("Annoyance level: 0 (SUSPENDED)")
	} else {
		fmt.Printf("Annoyance level: %d\n", snap.AnnoyanceLevel)
	}
	fmt.Printf("Next increase: %s\n", humanize.Time(snap.NextAnnoyanceIncrease))
	fmt.Printf("Tick interval: %s\n", snap.TickInterval.Std())

	fmt.Println("\nModules:")
	for _, st := range statuses {
		fmt.Printf("  - %-10s global: %-3s module: %-3s", st.Name, onOff(snap.ModuleStatuses[st.Name]), onOff(st.Enabled))
		switch {
		case !st.Found:
			fmt.Println("  not initialized")
		case st.NextTrigger.IsZero():
			fmt.Println("  runs every tick")
		default:
			fmt.Printf("  next: %s\n", humanize.Time(st.NextTrigger))
		}
		for _, action := range st.Actions {
			fmt.Printf("      %-34s %-3s cooldown %s\n", action.Name, onOff(action.Enabled), action.Cooldown)
		}
	}
	fmt.Println("=====================")
	return nil
}

func setModuleEnabled(name string, enabled bool) error {
	if !slices.Contains(module.Names(), name) {
		return fmt.Errorf("%w: %s (known: %v)", domain.ErrUnknownModule, name, module.Names())
	}

	logger := cliLogger()
	defer func() { _ = logger.Sync() }()

	a, err := openApp(logger)
	if err != nil {
		return err
	}
	if err := a.base.SetModuleEnabled(name, enabled); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", name, onOff(enabled))
	return nil
}

func runLevel(cmd *cobra.Command, args []string) error {
	level, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return fmt.Errorf("level must be 0-255: %w", err)
	}

	logger := cliLogger()
	defer func() { _ = logger.Sync() }()

	a, err := openApp(logger)
	if err != nil {
		return err
	}
	if err := a.base.SetAnnoyanceLevel(uint8(level)); err != nil {
		return err
	}
	if level == 0 {
		fmt.Println("Annoyance level: 0 (all modules suspended)")
	} else {
		fmt.Printf("Annoyance level: %d\n", level)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	fs := infra.NewFileSystemManager()
	home := fs.ExpandHome(homeDir)
	if !fs.Exists(infra.JournalPath(home)) {
		fmt.Println("No firings recorded.")
		return nil
	}

	journal, err := infra.OpenSQLiteJournal(home)
	if err != nil {
		return err
	}
	defer journal.Close()

	firings, err := journal.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if len(firings) == 0 {
		fmt.Println("No firings recorded.")
		return nil
	}

	fmt.Printf("\n=== Last %d firings ===\n", len(firings))
	for _, f := range firings {
		line := fmt.Sprintf("  %-16s %-10s %-34s", humanize.Time(f.FiredAt), f.Module, f.Action)
		if f.Error != "" {
			line += "  error: " + f.Error
		}
		fmt.Println(line)
	}
	fmt.Println("=======================")
	return nil
}

func runTransforms(cmd *cobra.Command, args []string) error {
	logger := cliLogger()
	defer func() { _ = logger.Sync() }()

	a, err := openApp(logger)
	if err != nil {
		return err
	}
	clip, _, err := module.NewClipboard(a.env(infra.NopJournal{}), infra.NewSystemClipboard())
	if err != nil {
		return err
	}

	toggles := []struct {
		name    string
		enabled bool
	}{
		{enableTransform, true},
		{disableTransform, false},
	}
	for _, toggle := range toggles {
		if toggle.name == "" {
			continue
		}
		tr, err := module.ParseTransform(toggle.name)
		if err != nil {
			return err
		}
		if err := clip.SetActionEnabled(tr, toggle.enabled); err != nil {
			return err
		}
		logger.Debug("tamper action toggled",
			zap.String("action", toggle.name),
			zap.Bool("enabled", toggle.enabled))
	}

	fmt.Println("\n=== Clipboard tamper actions ===")
	fmt.Printf("Skip chance per pass: %.0f%%\n", clip.State().SkipThreshold*100)
	for _, action := range clip.Status().Actions {
		fmt.Printf("  - %-34s %-3s cooldown %s\n", action.Name, onOff(action.Enabled), action.Cooldown)
	}

	if applyText != "" {
		fmt.Printf("\nApplied in order to %q:\n", applyText)
		text := applyText
		for _, tr := range module.Transforms() {
			text = tr.Apply(text)
			fmt.Printf("  %-34s %q\n", tr, text)
		}
	}
	fmt.Println("================================")
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
