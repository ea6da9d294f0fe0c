package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/parkreport/park-report/internal/browser"
	"github.com/parkreport/park-report/internal/config"
	"github.com/parkreport/park-report/internal/logger"
	"github.com/parkreport/park-report/internal/planner"
	"github.com/parkreport/park-report/internal/scrape"
	"github.com/parkreport/park-report/internal/storage"
	"github.com/spf13/cobra"
)

var (
	flagEventID       string
	flagFrom          int
	flagTo            int
	flagLast          int
	flagAllowEventDay bool
	flagConfig        string
	flagDataDir       string
	flagFormat        string
	flagVerbose       bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "park-report",
		Short: "Build a historical results dataset for a parkrun event",
		Long: `Incrementally scrapes a parkrun event's public results pages into a CSV
dataset. Repeated runs only fetch event numbers not already collected in the
session, pace their page fetches, and refuse to run on event day (Saturday)
unless explicitly told otherwise.`,
		RunE: runScrape,
	}

	cmd.Flags().StringVar(&flagEventID, "event-id", "", "Event id as it appears in the parkrun URL (required)")
	cmd.Flags().IntVar(&flagFrom, "from", 0, "First event number of an explicit range")
	cmd.Flags().IntVar(&flagTo, "to", 0, "Last event number of an explicit range")
	cmd.Flags().IntVar(&flagLast, "last", 0, "Fetch the N most recent events (default from config, 12)")
	cmd.Flags().BoolVar(&flagAllowEventDay, "allow-event-day", false, "Scrape even if today is event day")
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "", "Data directory for datasets (overrides config)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.MarkFlagRequired("event-id")

	return cmd
}

// runScrape is the main command logic.
func runScrape(cmd *cobra.Command, args []string) error {
	eventID := strings.TrimSpace(flagEventID)
	if eventID == "" {
		return fmt.Errorf("--event-id is required")
	}

	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	cfg := config.Default()
	if flagConfig != "" {
		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return err
		}
	}

	dataDir := cfg.DataDir
	if flagDataDir != "" {
		dataDir = flagDataDir
	}
	store, err := storage.New(dataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	sess, err := scrape.New(cmd.Context(), eventID, scrape.Options{
		AllowEventDay: flagAllowEventDay,
		BaseURL:       cfg.BaseURL,
		PaceInterval:  cfg.Pace.Std(),
		Browser: browser.Options{
			Headless:   cfg.Browser.Headless,
			BinaryPath: cfg.Browser.BinaryPath,
			NavTimeout: cfg.Browser.NavTimeout.Std(),
			UserAgent:  cfg.Browser.UserAgent,
		},
	})
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	defer sess.Close()

	var req planner.Request
	if flagFrom > 0 && flagTo > 0 {
		req = planner.Between(flagFrom, flagTo)
	} else {
		last := flagLast
		if last <= 0 {
			last = cfg.LastEvents
		}
		req = planner.LastN(last)
	}

	// A mid-run failure still leaves the earlier events merged; persist
	// whatever was collected before reporting the error.
	fetchErr := sess.FetchResults(cmd.Context(), req)

	records := sess.Results()
	if len(records) > 0 {
		if err := store.SaveDataset(eventID, records); err != nil {
			return err
		}
		if err := store.SaveSummary(eventID, sess.Summary()); err != nil {
			return err
		}
	}

	summary := sess.Summary()
	out := &OutputResult{
		EventID:       eventID,
		EventName:     summary.EventName,
		LastEventNo:   summary.LastEventNo,
		FetchedEvents: sess.FetchedEvents(),
		RowCount:      len(records),
		Participants:  sess.ParticipantCounts(),
		DatasetPath:   store.DatasetPath(eventID),
	}
	if err := WriteOutput(os.Stdout, out, format); err != nil {
		return err
	}

	if fetchErr != nil {
		return fmt.Errorf("run stopped early: %w", fetchErr)
	}
	return nil
}
