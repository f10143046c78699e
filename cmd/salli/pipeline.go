package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"salli-go/internal/app"
	"salli-go/internal/config"
	"salli-go/internal/model"
	"salli-go/internal/salli"

	"github.com/spf13/cobra"
)

// verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check pending manuals against the remote archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		if only, _ := cmd.Flags().GetBool("stats"); only {
			return printCheckStats()
		}

		a, err := newApp("Verify")
		if err != nil {
			return err
		}
		defer a.Close()

		// Flags override the config file only when given.
		pcfg := a.ProberConfig()
		flags := cmd.Flags()
		pcfg.Continuous, _ = flags.GetBool("continuous")
		pcfg.Limit, _ = flags.GetInt("limit")
		if flags.Changed("delay-min") {
			v, _ := flags.GetFloat64("delay-min")
			pcfg.DelayMin = config.Seconds(v)
		}
		if flags.Changed("delay-max") {
			v, _ := flags.GetFloat64("delay-max")
			pcfg.DelayMax = config.Seconds(v)
		}
		if flags.Changed("batch-size") {
			pcfg.BatchSize, _ = flags.GetInt("batch-size")
		}
		if flags.Changed("batch-pause") {
			v, _ := flags.GetFloat64("batch-pause")
			pcfg.BatchPause = config.Seconds(v)
		}
		if pcfg.DelayMax < pcfg.DelayMin {
			return fmt.Errorf("delay-max (%s) is below delay-min (%s)", pcfg.DelayMax, pcfg.DelayMin)
		}

		p, err := a.NewProber(pcfg)
		if err != nil {
			return err
		}

		type result struct {
			stats *model.ProbeStats
			err   error
		}
		done := make(chan result, 1)
		go func() {
			stats, err := p.Run()
			done <- result{stats, err}
		}()

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigs)

		select {
		case r := <-done:
			if r.stats != nil {
				printProbeStats(*r.stats)
			}
			return a.Fail(r.err)
		case sig := <-sigs:
			fmt.Fprintf(os.Stderr, "\nReceived %s, stopping.\n", sig)
			printProbeStats(p.Stats())
			if err := a.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "closing: %v\n", err)
			}
			os.Exit(0)
			return nil
		}
	},
}

func printCheckStats() error {
	a, err := newApp("CheckStats")
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.Stats("")
	if err != nil {
		return err
	}
	c := r.Checks
	fmt.Printf("Checkable:            %d\n", c.TotalCheckable)
	fmt.Printf("Already archived:     %d\n", c.Archived)
	fmt.Printf("Checked, not found:   %d\n", c.CheckedNotArchived)
	fmt.Printf("Never checked:        %d\n", c.NeverChecked)
	return nil
}

func printProbeStats(s model.ProbeStats) {
	fmt.Printf("Checked: %d  Found: %d  Errors: %d  Started: %s\n",
		s.Checked, s.Found, s.Errors, s.Started.Format("2006-01-02 15:04:05"))
}

// download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download pending manuals into the content store",
	RunE: func(cmd *cobra.Command, args []string) error {
		brand, _ := cmd.Flags().GetString("brand")
		includeArchived, _ := cmd.Flags().GetBool("include-archived")
		source, err := sourceFlag(cmd)
		if err != nil {
			return err
		}

		a, err := newApp("Download")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Download(model.DownloadFilter{
			Brand:           brand,
			Source:          source,
			IncludeArchived: includeArchived,
		})
		if stats != nil {
			fmt.Printf("Attempted: %d  Downloaded: %d  Deduplicated: %d  Failed: %d\n",
				stats.Attempted, stats.Downloaded, stats.Deduplicated, stats.Failed)
		}
		if errors.Is(err, salli.ErrCircuitOpen) {
			return fmt.Errorf("download aborted, source looks unavailable: %w", err)
		}
		return err
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load scraped manual and brand listings (CSV or JSONL) into the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		var paths app.ImportPaths
		paths.Manuals, _ = cmd.Flags().GetString("manuals")
		paths.Brands, _ = cmd.Flags().GetString("brands")
		if paths.Manuals == "" && paths.Brands == "" {
			return errors.New("specify --manuals, --brands, or both")
		}

		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Import(paths)
		if res != nil {
			printImportStats("Brands", res.Brands)
			printImportStats("Manuals", res.Manuals)
		}
		return err
	},
}

func printImportStats(label string, s *model.ImportStats) {
	if s == nil {
		return
	}
	fmt.Printf("%-8s %d rows: %d created, %d already present, %d skipped", label+":", s.Rows, s.Created, s.Existing, s.Skipped)
	if s.Indexed > 0 {
		fmt.Printf(", %d marked indexed", s.Indexed)
	}
	fmt.Println()
}

// ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest FILE",
	Short: "Record an already-fetched file as a manual's download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		if id <= 0 {
			return errors.New("--id is required")
		}
		name, _ := cmd.Flags().GetString("original-filename")

		a, err := newApp("Ingest")
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := a.Ingest(id, args[0], name)
		if err != nil {
			return err
		}
		fmt.Printf("Stored %s (%d bytes)\n", files.Final.Path, files.Final.Size)
		if files.Original != nil {
			fmt.Printf("Original kept at %s\n", files.Original.Path)
		}
		return nil
	},
}

// clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Produce stripped renditions of downloaded manuals",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("Clean")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Clean(limit)
		if stats != nil {
			fmt.Printf("Considered: %d  Produced: %d  Promoted: %d  Unchanged: %d  Failed: %d\n",
				stats.Considered, stats.Produced, stats.Promoted, stats.Unchanged, stats.Failed)
		}
		return err
	},
}

// upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload downloaded manuals to the remote archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		source, err := sourceFlag(cmd)
		if err != nil {
			return err
		}

		a, err := newApp("Upload")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Upload(source, limit, dryRun)
		if stats != nil {
			fmt.Printf("Considered: %d  Uploaded: %d  Already present: %d  Failed: %d  Skipped: %d\n",
				stats.Considered, stats.Uploaded, stats.AlreadyPresent, stats.Failed, stats.Skipped)
		}
		return err
	},
}

// audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Re-check archived manuals against the remote archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		fix, _ := cmd.Flags().GetBool("fix")

		a, err := newApp("Audit")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Audit(fix)
		if stats != nil {
			fmt.Printf("Checked: %d  Verified: %d  Missing: %d  Unmarked: %d\n",
				stats.Checked, stats.Verified, stats.Missing, stats.Unmarked)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Bool("continuous", false, "Keep polling for new manuals")
	verifyCmd.Flags().Int("limit", 0, "Maximum checks this run (0 for no limit)")
	verifyCmd.Flags().Float64("delay-min", 5, "Minimum seconds between checks")
	verifyCmd.Flags().Float64("delay-max", 15, "Maximum seconds between checks")
	verifyCmd.Flags().Int("batch-size", 50, "Checks between long pauses")
	verifyCmd.Flags().Float64("batch-pause", 60, "Seconds of each long pause")
	verifyCmd.Flags().Bool("stats", false, "Show check progress and exit")

	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().String("brand", "", "Only manuals of this brand")
	downloadCmd.Flags().String("source", "", "Only manuals from this source")
	downloadCmd.Flags().Bool("include-archived", false, "Also download manuals already in the archive")

	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("manuals", "", "Manual listing to import (.csv or .jsonl)")
	importCmd.Flags().String("brands", "", "Brand listing to import (.csv or .jsonl)")

	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().Int64("id", 0, "Manual id")
	ingestCmd.Flags().String("original-filename", "", "Filename reported by the source")

	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().Int("limit", 0, "Maximum manuals to clean (0 for all)")

	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().String("source", "", "Only manuals from this source")
	uploadCmd.Flags().Int("limit", 0, "Maximum manuals to upload (0 for all)")
	uploadCmd.Flags().Bool("dry-run", false, "Check and report without uploading")

	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().Bool("fix", false, "Return missing manuals to the upload queue")
}
