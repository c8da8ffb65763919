package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"gt-go/internal/app"
	"gt-go/internal/config"
	"gt-go/internal/gt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a GTApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "SetResin", "Watch").
func newApp(cmd *cobra.Command, operation string, args []string) (*app.GTApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewGTApp(cmd.Context(), cfg, operation, strings.Join(args, " "))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
// When stdin is not a terminal the first line of input is used.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

func intArg(args []string, i int, name string) (int, error) {
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %q", name, args[i])
	}
	return n, nil
}

var rootCmd = &cobra.Command{
	Use:          "gt",
	Short:        "Resin and reset tracker",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		profileID := uuid.New().String()
		cfg := config.NewConfig(profileID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", profileID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", cfg.ProfileID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Locale:     %s\n", cfg.Locale)
		fmt.Printf("Store:      %s %s\n", cfg.Store.Type, cfg.Store.DataDir)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		fmt.Printf("Display:    %s (%s)\n", cfg.Notifications.Display, cfg.Notifications.Permission)
		if cfg.Metrics.Enabled {
			fmt.Printf("Metrics:    %s\n", cfg.Metrics.Addr)
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the snapshot encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SetupKeys", args)
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		if term.IsTerminal(int(os.Stdin.Fd())) {
			confirm, err := readPassphrase("Confirm passphrase: ")
			if err != nil {
				return err
			}
			if confirm != passphrase {
				return fmt.Errorf("passphrases do not match")
			}
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Println("Snapshot keys generated.")
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show resin, resets, expeditions and notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Status", args)
		if err != nil {
			return err
		}
		defer a.Close()

		printStatus(os.Stdout, a.Status(), a.Service().Localizer())
		return nil
	},
}

// resin command
var resinCmd = &cobra.Command{
	Use:   "resin",
	Short: "Manage resin",
}

var resinSetCmd = &cobra.Command{
	Use:   "set AMOUNT",
	Short: "Set the resin amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := intArg(args, 0, "amount")
		if err != nil {
			return err
		}
		a, err := newApp(cmd, "SetResin", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetResin(n); err != nil {
			return err
		}
		fmt.Printf("Resin: %d/%d\n", a.Status().Resin.Amount, gt.ResinMax)
		return nil
	},
}

var resinAddCmd = &cobra.Command{
	Use:   "add DELTA",
	Short: "Add to (or spend, with a negative delta) the resin amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := intArg(args, 0, "delta")
		if err != nil {
			return err
		}
		a, err := newApp(cmd, "AddResin", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AddResin(n); err != nil {
			return err
		}
		fmt.Printf("Resin: %d/%d\n", a.Status().Resin.Amount, gt.ResinMax)
		return nil
	},
}

var resinResetCmd = &cobra.Command{
	Use:   "reset [AMOUNT]",
	Short: "Restart the regeneration timer, optionally setting the amount",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value *int
		if len(args) == 1 {
			n, err := intArg(args, 0, "amount")
			if err != nil {
				return err
			}
			value = &n
		}
		a, err := newApp(cmd, "ResetResinTimer", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ResetResinTimer(value); err != nil {
			return err
		}
		st := a.Status()
		fmt.Printf("Resin: %d/%d, next in %s\n", st.Resin.Amount, gt.ResinMax, a.Service().Localizer().FormatDuration(st.Resin.TimeToNext))
		return nil
	},
}

// boss command
var bossCmd = &cobra.Command{
	Use:   "boss",
	Short: "Track weekly boss clears",
}

var bossAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Record one weekly boss clear",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "AdvanceWeeklyBoss", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.AdvanceWeeklyBoss(); err != nil {
			return err
		}
		fmt.Printf("Weekly bosses: %s\n", cycleProgress(a.Status().WeeklyBoss))
		return nil
	},
}

var bossResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear this week's boss progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ResetWeeklyBoss", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ResetWeeklyBoss(); err != nil {
			return err
		}
		fmt.Printf("Weekly bosses: %s\n", cycleProgress(a.Status().WeeklyBoss))
		return nil
	},
}

// abyss and theater commands
var abyssCmd = &cobra.Command{
	Use:   "abyss",
	Short: "Track the Spiral Abyss",
}

var abyssToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle this cycle's Spiral Abyss completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ToggleAbyss", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ToggleAbyss(); err != nil {
			return err
		}
		fmt.Printf("Spiral Abyss: %s\n", cycleProgress(a.Status().Abyss))
		return nil
	},
}

var theaterCmd = &cobra.Command{
	Use:   "theater",
	Short: "Track the Imaginarium Theater",
}

var theaterToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle this month's Imaginarium Theater completion",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ToggleTheater", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ToggleTheater(); err != nil {
			return err
		}
		fmt.Printf("Imaginarium Theater: %s\n", cycleProgress(a.Status().Theater))
		return nil
	},
}

// expedition command
var expeditionCmd = &cobra.Command{
	Use:   "expedition",
	Short: "Track expeditions",
}

var expeditionStartCmd = &cobra.Command{
	Use:   "start SLOT HOURS",
	Short: "Dispatch an expedition (HOURS is 4, 8, 12 or 20)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := intArg(args, 0, "slot")
		if err != nil {
			return err
		}
		hours, err := intArg(args, 1, "hours")
		if err != nil {
			return err
		}
		a, err := newApp(cmd, "StartExpedition", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.StartExpedition(slot, hours); err != nil {
			return err
		}
		e := a.Status().Expeditions[slot-1]
		fmt.Printf("Expedition #%d: %s\n", e.ID, e.Label)
		return nil
	},
}

var expeditionCompleteCmd = &cobra.Command{
	Use:   "complete SLOT",
	Short: "Collect an expedition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slot, err := intArg(args, 0, "slot")
		if err != nil {
			return err
		}
		a, err := newApp(cmd, "CompleteExpedition", args)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.CompleteExpedition(slot); err != nil {
			return err
		}
		fmt.Printf("Expedition #%d collected\n", slot)
		return nil
	},
}

var expeditionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expedition slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListExpeditions", args)
		if err != nil {
			return err
		}
		defer a.Close()

		loc := a.Service().Localizer()
		for _, e := range a.Status().Expeditions {
			switch e.State {
			case gt.ExpeditionRunning:
				fmt.Printf("#%d  %s  %s left\n", e.ID, e.Label, loc.FormatDuration(e.TimeLeft))
			default:
				fmt.Printf("#%d  %s\n", e.ID, e.Label)
			}
		}
		return nil
	},
}

// notifications command
var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Manage notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListNotifications", args)
		if err != nil {
			return err
		}
		defer a.Close()

		printNotifications(os.Stdout, a.Notifications())
		return nil
	},
}

var notificationsResolveCmd = &cobra.Command{
	Use:   "resolve CATEGORY",
	Short: "Dismiss one notification (resin, expedition, weekly, abyss, theater)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ResolveNotification", args)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.ResolveNotification(args[0])
	},
}

var notificationsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Dismiss every notification",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ClearNotifications", args)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.ClearNotifications()
		if err != nil {
			return err
		}
		fmt.Printf("Cleared %d notification(s)\n", n)
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and import encrypted snapshots",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload an encrypted snapshot to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ExportSnapshot", args)
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.ExportSnapshot()
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("Exported %s (%d record(s), %d bytes)\n", info.ID, info.Entries, info.Size)
		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import ID",
	Short: "Restore a snapshot from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ImportSnapshot", args)
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		doc, err := a.ImportSnapshot(args[0], passphrase)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		fmt.Printf("Restored %d record(s) from %s\n", len(doc.Entries), doc.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListSnapshots", args)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.ListSnapshots()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No snapshots.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tick every second and raise alerts until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Watch", args)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		loc := a.Service().Localizer()
		err = a.Watch(ctx, func(st gt.Status) {
			fmt.Printf("\r\033[K%s", statusLine(st, loc))
		})
		fmt.Println()
		return err
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)

	resinCmd.AddCommand(resinSetCmd)
	resinCmd.AddCommand(resinAddCmd)
	resinCmd.AddCommand(resinResetCmd)

	bossCmd.AddCommand(bossAdvanceCmd)
	bossCmd.AddCommand(bossResetCmd)
	abyssCmd.AddCommand(abyssToggleCmd)
	theaterCmd.AddCommand(theaterToggleCmd)

	expeditionCmd.AddCommand(expeditionStartCmd)
	expeditionCmd.AddCommand(expeditionCompleteCmd)
	expeditionCmd.AddCommand(expeditionListCmd)

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsResolveCmd)
	notificationsCmd.AddCommand(notificationsClearCmd)

	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resinCmd)
	rootCmd.AddCommand(bossCmd)
	rootCmd.AddCommand(abyssCmd)
	rootCmd.AddCommand(theaterCmd)
	rootCmd.AddCommand(expeditionCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(watchCmd)
}
