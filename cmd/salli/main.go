package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"salli-go/internal/app"
	"salli-go/internal/config"
	"salli-go/internal/model"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the defaults.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a SalliApp. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Verify", "Upload").
func newApp(operation string) (*app.SalliApp, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// sourceFlag parses the --source flag; empty means all sources.
func sourceFlag(cmd *cobra.Command) (model.Source, error) {
	raw, _ := cmd.Flags().GetString("source")
	if raw == "" {
		return "", nil
	}
	return model.ParseSource(raw)
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "salli",
	Short: "Manual acquisition ledger and archive mirror",
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

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults.BaseDir)

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
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

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Host ID:     %s\n", cfg.HostID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Database:    %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		switch cfg.Store.Type {
		case "s3":
			fmt.Printf("Store:       s3://%s/%s\n", cfg.Store.S3Bucket, cfg.Store.S3Prefix)
		default:
			fmt.Printf("Store:       %s (%s)\n", cfg.Store.Type, cfg.Store.FSRoot)
		}
		if cfg.Store.MaxObjectSize != "" {
			fmt.Printf("Max object:  %s\n", cfg.Store.MaxObjectSize)
		}
		fmt.Printf("Encryption:  %s\n", cfg.Encryption.Type)
		fmt.Printf("Archive:     %s (upload %s)\n", cfg.Archive.Host, cfg.Archive.UploadEndpoint)
		fmt.Printf("Prober:      %.0f-%.0fs delay, %.0fs pause every %d\n",
			cfg.Prober.DelayMin, cfg.Prober.DelayMax, cfg.Prober.BatchPause, cfg.Prober.BatchSize)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}

		if err := app.SetupKeys(cfg, pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}
		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s (passphrase protected)\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage ledger snapshots",
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore [PATH]",
	Short: "Restore the ledger from the latest snapshot in the store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var dest string
		if len(args) > 0 {
			dest = args[0]
		} else if dest, err = app.LedgerPath(cfg); err != nil {
			return err
		}
		if _, err := os.Stat(dest); err == nil && !force {
			return fmt.Errorf("%s exists; use --force to replace it", dest)
		}

		var pass string
		needs, err := app.SnapshotNeedsPassphrase(cfg)
		if err != nil {
			return err
		}
		if needs {
			if pass, err = readPassphrase("Passphrase: "); err != nil {
				return err
			}
		}

		version, err := app.RestoreSnapshot(cfg, dest, pass)
		if err != nil {
			return err
		}
		fmt.Printf("Restored snapshot version %d to %s\n", version, dest)
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ledger statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceFlag(cmd)
		if err != nil {
			return err
		}

		a, err := newApp("Stats")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Stats(source)
		if err != nil {
			return err
		}

		l := r.Ledger
		fmt.Printf("Manuals:     %d\n", l.Total)
		fmt.Printf("Downloaded:  %d\n", l.Downloaded)
		fmt.Printf("Archived:    %d\n", l.Archived)
		fmt.Printf("Pending:     %d\n", l.Pending)
		fmt.Printf("Checks:      %d checkable, %d archived, %d checked, %d never checked\n",
			r.Checks.TotalCheckable, r.Checks.Archived, r.Checks.CheckedNotArchived, r.Checks.NeverChecked)
		fmt.Printf("Variants:    %d (%s)\n", r.Variants.Total, units.HumanSize(float64(r.Variants.TotalSize)))
		for kind, n := range r.Variants.ByType {
			fmt.Printf("  %-10s %d\n", kind, n)
		}
		fmt.Printf("Brands:      %d (%d indexed, %d pending)\n", r.Brands.Total, r.Brands.Indexed, r.Brands.Pending)

		if len(l.BySource) > 0 {
			fmt.Println("\nBy source:")
			for _, g := range l.BySource {
				fmt.Printf("  %-14s %6d total  %6d downloaded  %6d archived\n", g.Key, g.Total, g.Downloaded, g.Archived)
			}
		}
		if len(l.ByBrand) > 0 {
			fmt.Println("\nBy brand:")
			for _, g := range l.ByBrand {
				fmt.Printf("  %-20s %6d total  %6d downloaded  %6d archived\n", g.Key, g.Total, g.Downloaded, g.Archived)
			}
		}
		return nil
	},
}

// brands command
var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "Inspect discovered brands",
}

var brandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List brands",
	RunE: func(cmd *cobra.Command, args []string) error {
		indexedOnly, _ := cmd.Flags().GetBool("indexed")
		pendingOnly, _ := cmd.Flags().GetBool("pending")
		if indexedOnly && pendingOnly {
			return errors.New("--indexed and --pending are mutually exclusive")
		}
		var filter *bool
		if indexedOnly || pendingOnly {
			filter = &indexedOnly
		}

		a, err := newApp("ListBrands")
		if err != nil {
			return err
		}
		defer a.Close()

		brands, err := a.ListBrands(filter)
		if err != nil {
			return err
		}
		if len(brands) == 0 {
			fmt.Println("No brands recorded.")
			return nil
		}
		for _, b := range brands {
			state := "pending"
			if b.Indexed {
				state = "indexed"
			}
			fmt.Printf("%-30s  %-30s  %s\n", b.Name, b.Slug, state)
		}
		return nil
	},
}

// variants command
var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "Inspect and select stored renditions",
}

var variantsListCmd = &cobra.Command{
	Use:   "list ID",
	Short: "List a manual's stored renditions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid manual id %q", args[0])
		}

		a, err := newApp("ListVariants")
		if err != nil {
			return err
		}
		defer a.Close()

		variants, err := a.ListVariants(id)
		if err != nil {
			return err
		}
		if len(variants) == 0 {
			fmt.Println("No stored renditions.")
			return nil
		}
		for _, v := range variants {
			primary := ""
			if v.IsPrimary {
				primary = "  [primary]"
			}
			fmt.Printf("%-9s  %s  %8s  %s%s\n",
				v.VariantType, v.FileSha1[:12], units.HumanSize(float64(v.FileSize)), v.FilePath, primary)
		}
		return nil
	},
}

var variantsSetPrimaryCmd = &cobra.Command{
	Use:   "set-primary ID KIND",
	Short: "Choose which rendition a manual delivers",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid manual id %q", args[0])
		}
		kind := model.VariantKind(args[1])

		a, err := newApp("SetPrimaryVariant")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetPrimaryVariant(id, kind); err != nil {
			return err
		}
		fmt.Printf("Manual %d now delivers its %s rendition\n", id, kind)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := ""
			if r.FinishedAt.Valid {
				duration = r.FinishedAt.Time.Sub(r.StartedAt).Truncate(time.Second).String()
			}
			fmt.Printf("#%d  %-18s  %s  %-8s  %-8s  %s\n",
				r.ID,
				r.Operation,
				r.StartedAt.Format("2006-01-02 15:04:05"),
				r.Status,
				duration,
				r.Parameters,
			)
		}
		return nil
	},
}

// clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete ledger rows (stored files are kept)",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		brands, _ := cmd.Flags().GetBool("brands")
		source, err := sourceFlag(cmd)
		if err != nil {
			return err
		}

		scope := app.ClearScope{
			Source:  source,
			Manuals: all || source != "",
			Brands:  all || brands,
		}
		if !scope.Manuals && !scope.Brands {
			return errors.New("specify --source, --brands, or --all")
		}

		a, err := newApp("Clear")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Clear(scope)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d manual(s) and %d brand(s)\n", res.Manuals, res.Brands)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	keysCmd.AddCommand(keysInitCmd)

	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotRestoreCmd.Flags().Bool("force", false, "Replace an existing ledger file")

	brandsCmd.AddCommand(brandsListCmd)
	brandsListCmd.Flags().Bool("indexed", false, "Only brands whose catalog walk finished")
	brandsListCmd.Flags().Bool("pending", false, "Only brands not yet indexed")

	variantsCmd.AddCommand(variantsListCmd)
	variantsCmd.AddCommand(variantsSetPrimaryCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().String("source", "", "Only count manuals from this source")
	rootCmd.AddCommand(brandsCmd)
	rootCmd.AddCommand(variantsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().String("source", "", "Delete manuals from this source")
	clearCmd.Flags().Bool("brands", false, "Delete all brands")
	clearCmd.Flags().Bool("all", false, "Delete all manuals and brands")
}
