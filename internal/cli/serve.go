package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bevalen/tune-energy-ocr-ui/internal/anomaly"
	"github.com/bevalen/tune-energy-ocr-ui/internal/batch"
	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
	"github.com/bevalen/tune-energy-ocr-ui/internal/ledger"
	"github.com/bevalen/tune-energy-ocr-ui/internal/llm/openai"
	"github.com/bevalen/tune-energy-ocr-ui/internal/notify"
	"github.com/bevalen/tune-energy-ocr-ui/internal/ocr"
	"github.com/bevalen/tune-energy-ocr-ui/internal/server"
	"github.com/bevalen/tune-energy-ocr-ui/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP trigger server",
		RunE: func(cmd *cobra.Command, args []string) error {
			levelStr, _ := cmd.Flags().GetString("log-level")
			cfg := common.LoadConfig()
			logger, cleanup := common.SetupLogger(cfg.Batch.LogFile, common.ParseLogLevel(levelStr))
			defer func() { _ = cleanup() }()
			return Serve(cmd.Context(), cfg, logger)
		},
	}
}

// Serve wires the production dependencies and runs the HTTP server until the
// process receives an interrupt.
func Serve(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	led, err := ledger.OpenPostgres(ctx, cfg.Ledger, logger)
	if err != nil {
		return common.WrapError(err, "open ledger")
	}
	defer led.Close()
	if err := led.EnsureSchema(ctx); err != nil {
		return err
	}

	orch := buildOrchestrator(cfg, led, logger)
	srv := server.New(orch, logger)

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server.listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return common.WrapError(err, "http serve")
	case <-ctx.Done():
	}

	logger.Info("server.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown_error", "error", err)
	}
	// Let in-flight batches finish; their ledger writes matter.
	srv.Wait()
	logger.Info("server.stopped")
	return nil
}

func buildOrchestrator(cfg *common.Config, led ledger.Ledger, logger *slog.Logger) *batch.Orchestrator {
	st := store.NewClient(cfg.Storage.BaseURL, cfg.Storage.APIKey, cfg.Storage.Bucket, logger)
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

	return batch.New(st, led, ocrClient, extractor, mailer, detector,
		batch.Config{FixedWait: cfg.OCR.FixedWait}, logger)
}
