package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bevalen/tune-energy-ocr-ui/internal/anomaly"
	"github.com/bevalen/tune-energy-ocr-ui/internal/batch"
	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
	"github.com/bevalen/tune-energy-ocr-ui/internal/ledger"
	"github.com/bevalen/tune-energy-ocr-ui/internal/llm/openai"
	"github.com/bevalen/tune-energy-ocr-ui/internal/notify"
	"github.com/bevalen/tune-energy-ocr-ui/internal/ocr"
	"github.com/bevalen/tune-energy-ocr-ui/internal/store"
)

// newRunCmd executes a single batch over a local directory store and a SQLite
// ledger, for reprocessing a folder of bills without the daemon.
func newRunCmd() *cobra.Command {
	var (
		dir      string
		dbPath   string
		customer string
		location string
		address  string
		email    string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one batch over a local directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			levelStr, _ := cmd.Flags().GetString("log-level")
			cfg := common.LoadConfig()
			logger, cleanup := common.SetupLogger(cfg.Batch.LogFile, common.ParseLogLevel(levelStr))
			defer func() { _ = cleanup() }()

			ctx := cmd.Context()

			st, err := store.NewLocal(dir)
			if err != nil {
				return err
			}
			led, err := ledger.OpenSQLite(ctx, dbPath, logger)
			if err != nil {
				return err
			}
			defer func() { _ = led.Close() }()

			ocrClient := ocr.NewClient(ocr.Config{
				SubmitURL:    cfg.OCR.SubmitURL,
				RetrieveURL:  cfg.OCR.RetrieveURL,
				APIKey:       cfg.OCR.APIKey,
				Timeout:      cfg.OCR.Timeout,
				PollInterval: cfg.OCR.PollInterval,
				MaxAttempts:  cfg.OCR.MaxAttempts,
			}, logger)
			extractor := openai.NewClient(openai.Config{
				APIKey:      cfg.LLM.APIKey,
				BaseURL:     cfg.LLM.BaseURL,
				Model:       cfg.LLM.Model,
				Temperature: cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout,
			}, logger)
			mailer := notify.NewClient(notify.Config{
				BaseURL: cfg.Mail.BaseURL,
				APIKey:  cfg.Mail.APIKey,
				From:    cfg.Mail.From,
				Timeout: cfg.Mail.Timeout,
			}, logger)
			detector := anomaly.NewDetector(cfg.Batch.AnomalyThreshold, logger)

			orch := batch.New(st, led, ocrClient, extractor, mailer, detector,
				batch.Config{FixedWait: cfg.OCR.FixedWait}, logger)

			summary, err := orch.Run(ctx, batch.Request{
				Customer:        customer,
				LocationID:      location,
				LocationAddress: address,
				Email:           email,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "./bills", "directory holding bill documents")
	cmd.Flags().StringVar(&dbPath, "db", "./bills.db", "path to the SQLite processing queue")
	cmd.Flags().StringVar(&customer, "customer", "", "customer name (required)")
	cmd.Flags().StringVar(&location, "location", "", "location/site id (required)")
	cmd.Flags().StringVar(&address, "address", "", "location address")
	cmd.Flags().StringVar(&email, "email", "", "report recipient (required)")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("location")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
