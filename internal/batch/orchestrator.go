// Package batch runs the bill-processing pipeline for one trigger:
// discover → filter → submit → wait → retrieve → extract → validate →
// report → notify → record status → cleanup.
//
// Per-file errors never abort the batch; they are captured into the
// processing log, the billing records, and the ledger. Only a failure to list
// the candidate set is fatal to a run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bevalen/tune-energy-ocr-ui/constants"
	"github.com/bevalen/tune-energy-ocr-ui/internal/anomaly"
	"github.com/bevalen/tune-energy-ocr-ui/internal/common"
	"github.com/bevalen/tune-energy-ocr-ui/internal/entity"
	"github.com/bevalen/tune-energy-ocr-ui/internal/ledger"
	"github.com/bevalen/tune-energy-ocr-ui/internal/llm"
	"github.com/bevalen/tune-energy-ocr-ui/internal/notify"
	"github.com/bevalen/tune-energy-ocr-ui/internal/report"
	"github.com/bevalen/tune-energy-ocr-ui/internal/store"
)

// OCRClient is the slice of the OCR service the orchestrator needs.
type OCRClient interface {
	Submit(ctx context.Context, filename string, data []byte) (string, error)
	Retrieve(ctx context.Context, handle string) (string, error)
}

// Config holds orchestrator tunables.
type Config struct {
	// FixedWait is the single sleep between the last submission and the first
	// retrieval. OCR turnaround is assumed roughly uniform across a batch.
	FixedWait time.Duration
}

// Summary is the batch outcome reported to logs and the CLI. The triggering
// HTTP caller never sees it; outcomes surface via email and the ledger.
type Summary struct {
	Message   string
	Files     int
	Records   int
	Failed    int
	EmailSent bool
}

// extractionJob pairs a filename with its OCR job handle for the batch's
// lifetime.
type extractionJob struct {
	filename string
	handle   string
}

type retrievedText struct {
	filename string
	text     string
	err      string
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	store     store.Store
	ledger    ledger.Ledger
	ocr       OCRClient
	extractor llm.Extractor
	mailer    notify.Mailer
	detector  *anomaly.Detector
	cfg       Config
	log       *slog.Logger
	sleep     func(context.Context, time.Duration) error
	now       func() time.Time
}

// New builds an orchestrator.
func New(st store.Store, led ledger.Ledger, ocr OCRClient, ex llm.Extractor, mailer notify.Mailer, det *anomaly.Detector, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if det == nil {
		det = anomaly.NewDetector(0, logger)
	}
	return &Orchestrator{
		store:     st,
		ledger:    led,
		ocr:       ocr,
		extractor: ex,
		mailer:    mailer,
		detector:  det,
		cfg:       cfg,
		log:       logger,
		sleep:     sleepCtx,
		now:       time.Now,
	}
}

// Run executes one batch to completion. It returns an error only when the
// initial candidate listing fails; every later failure is captured per file.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Summary, error) {
	if err := req.Validate(); err != nil {
		return Summary{}, err
	}

	batchID := uuid.New().String()
	ctx = common.WithBatchID(ctx, batchID)
	log := o.log.With("batch_id", batchID, "customer", req.Customer, "location_id", req.LocationID)
	start := o.now()

	// Step 1: candidate set = store objects minus in-flight ledger entries.
	objects, err := o.store.List(ctx)
	if err != nil {
		log.Error("batch.list_failed", "error", err)
		return Summary{}, common.WrapError(err, "list documents")
	}
	active, err := o.ledger.Active(ctx)
	if err != nil {
		log.Error("batch.queue_fetch_failed", "error", err)
		return Summary{}, common.WrapError(err, "fetch queue entries")
	}

	var candidates []store.Object
	for _, obj := range objects {
		if _, inFlight := active[obj.Name]; inFlight {
			log.Info("batch.skip_in_flight", "filename", obj.Name)
			continue
		}
		candidates = append(candidates, obj)
	}
	if len(candidates) == 0 {
		log.Info("batch.nothing_to_process")
		return Summary{Message: "No files to process"}, nil
	}

	// Step 2: partition by extension. Invalid files fail immediately.
	var valid []store.Object
	for _, obj := range candidates {
		if constants.ExtensionAllowed(obj.Name) {
			valid = append(valid, obj)
			continue
		}
		log.Warn("batch.invalid_extension", "filename", obj.Name)
		o.record(ctx, log, ledger.Entry{
			Filename: obj.Name,
			Status:   constants.StatusFailed,
			Error:    constants.ErrInvalidExtension,
		})
	}
	if len(valid) == 0 {
		log.Info("batch.no_valid_files")
		return Summary{Message: "No valid files to process"}, nil
	}

	// Step 3: claim, download, submit. Sequential; failures stay per-file.
	var jobs []extractionJob
	var processingLog []entity.LogEntry
	for _, obj := range valid {
		claimed, err := o.ledger.Claim(ctx, obj.Name)
		if err != nil {
			processingLog = append(processingLog, entity.LogEntry{Filename: obj.Name, Status: "failed", Error: err.Error()})
			continue
		}
		if !claimed {
			// Another run took it between the Active listing and now.
			log.Info("batch.claim_lost", "filename", obj.Name)
			continue
		}

		data, err := o.store.Download(ctx, obj.Name)
		if err != nil {
			processingLog = append(processingLog, entity.LogEntry{Filename: obj.Name, Status: "failed", Error: err.Error()})
			continue
		}
		handle, err := o.ocr.Submit(ctx, obj.Name, data)
		if err != nil {
			processingLog = append(processingLog, entity.LogEntry{Filename: obj.Name, Status: "failed", Error: err.Error()})
			continue
		}
		jobs = append(jobs, extractionJob{filename: obj.Name, handle: handle})
		processingLog = append(processingLog, entity.LogEntry{Filename: obj.Name, Status: "submitted"})
	}

	// Step 4: one fixed wait for the whole batch before retrieval.
	log.Info("batch.waiting_for_ocr", "wait", o.cfg.FixedWait.String(), "jobs", len(jobs))
	if err := o.sleep(ctx, o.cfg.FixedWait); err != nil {
		log.Warn("batch.wait_interrupted", "error", err)
	}

	// Step 5: retrieve text per job with the client's bounded retry.
	var texts []retrievedText
	for _, job := range jobs {
		text, err := o.ocr.Retrieve(ctx, job.handle)
		if err != nil {
			texts = append(texts, retrievedText{filename: job.filename, err: err.Error()})
			processingLog = append(processingLog, entity.LogEntry{Filename: job.filename, Status: "failed", Error: err.Error()})
			continue
		}
		texts = append(texts, retrievedText{filename: job.filename, text: text})
		processingLog = append(processingLog, entity.LogEntry{Filename: job.filename, Status: "retrieved"})
	}

	// Step 6: extract structured records per retrieved text.
	var records []*entity.BillingRecord
	seq := 0
	for _, tr := range texts {
		if tr.err != "" || tr.text == "" {
			msg := tr.err
			if msg == "" {
				msg = "No text extracted from OCR"
			}
			records = append(records, &entity.BillingRecord{Filename: tr.filename, SequenceIndex: seq, Error: msg})
			seq++
			continue
		}

		fields, _, err := o.extractor.Extract(ctx, tr.text, llm.ExtractOptions{})
		if err != nil {
			records = append(records, &entity.BillingRecord{
				Filename:      tr.filename,
				SequenceIndex: seq,
				Error:         fmt.Sprintf("extraction failed: %v", err),
			})
			seq++
			continue
		}
		for _, f := range fields {
			records = append(records, &entity.BillingRecord{
				Filename:      tr.filename,
				SequenceIndex: seq,
				MeterNumber:   f.MeterNumber,
				StartDate:     f.StartDate,
				EndDate:       f.EndDate,
				TotalKWH:      f.TotalKWH,
				TotalCharges:  f.TotalCharges,
				Adjustments:   f.Adjustments,
			})
			seq++
		}
	}

	// Step 7: anomaly pass mutates warnings in place.
	flags := o.detector.Detect(records)
	if len(flags) > 0 {
		log.Info("batch.anomalies_flagged", "count", len(flags))
	}

	// Step 8: build the report artifacts.
	resultsCSV, err := report.ResultsCSV(records)
	if err != nil {
		log.Error("batch.results_csv_failed", "error", err)
	}
	logCSV, err := report.LogCSV(processingLog)
	if err != nil {
		log.Error("batch.log_csv_failed", "error", err)
	}
	logHTML, err := report.HTMLTable(logCSV)
	if err != nil {
		log.Error("batch.log_html_failed", "error", err)
	}
	resultsXLSX, err := report.ResultsXLSX(records)
	if err != nil {
		// The CSV attachment stands alone when the workbook fails.
		log.Error("batch.results_xlsx_failed", "error", err)
		resultsXLSX = nil
	}

	// Step 9: best-effort email.
	emailSent := o.notifyByEmail(ctx, log, req, records, valid, resultsCSV, resultsXLSX, logHTML)

	// Step 10: terminal ledger entry per touched file.
	failures := make(map[string]string)
	touched := make(map[string]struct{})
	for _, r := range records {
		touched[r.Filename] = struct{}{}
		if r.Failed() {
			failures[r.Filename] = r.Error
		}
	}
	for _, e := range processingLog {
		if _, ok := touched[e.Filename]; ok {
			continue
		}
		touched[e.Filename] = struct{}{}
		if e.Status == "failed" {
			failures[e.Filename] = e.Error
		}
	}
	failed := 0
	for filename := range touched {
		entry := ledger.Entry{Filename: filename, Status: constants.StatusCompleted}
		if msg, ok := failures[filename]; ok {
			entry.Status = constants.StatusFailed
			entry.Error = msg
			failed++
		}
		o.record(ctx, log, entry)
	}

	// Step 11: full-bucket sweep. Not scoped to the files just processed;
	// uploads landing mid-batch are deleted too. Known hazard.
	o.cleanup(ctx, log)

	summary := Summary{
		Message:   fmt.Sprintf("Processed %d records from %d files", countOK(records), len(valid)),
		Files:     len(valid),
		Records:   len(records),
		Failed:    failed,
		EmailSent: emailSent,
	}
	log.Info("batch.complete",
		"files", summary.Files,
		"records", summary.Records,
		"failed", summary.Failed,
		"email_sent", summary.EmailSent,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

func (o *Orchestrator) notifyByEmail(ctx context.Context, log *slog.Logger, req Request, records []*entity.BillingRecord, valid []store.Object, resultsCSV string, resultsXLSX []byte, logHTML string) bool {
	date := o.now().UTC().Format("2006-01-02")
	attachmentName := fmt.Sprintf("%s_bill_analysis_%s.csv", req.Customer, date)

	body := fmt.Sprintf(`Hi there,<br><br>

Please find attached the extracted bill data from your uploaded files for:<br>
Customer: %s<br>
Site ID: %s<br>
Address: %s<br><br>

Processed %d records from %d files.<br><br>

Log:
%s<br>
--
This message was generated automatically by the bill-processing system.`,
		req.Customer, req.LocationID, req.LocationAddress, countOK(records), len(valid), logHTML)

	msg := notify.Message{
		To:      req.Email,
		Subject: fmt.Sprintf("Bill Analysis for %s, site %s", req.Customer, req.LocationID),
		HTML:    body,
		Attachments: []notify.Attachment{
			{Filename: attachmentName, Content: []byte(resultsCSV)},
		},
	}
	if len(resultsXLSX) > 0 {
		msg.Attachments = append(msg.Attachments, notify.Attachment{
			Filename: fmt.Sprintf("%s_bill_analysis_%s.xlsx", req.Customer, date),
			Content:  resultsXLSX,
		})
	}

	if err := o.mailer.Send(ctx, msg); err != nil {
		// Best-effort delivery; the ledger still records every outcome.
		log.Error("batch.email_failed", "error", err, "to", req.Email)
		return false
	}
	return true
}

func (o *Orchestrator) record(ctx context.Context, log *slog.Logger, entry ledger.Entry) {
	if err := o.ledger.Upsert(ctx, entry); err != nil {
		log.Error("batch.queue_update_failed", "filename", entry.Filename, "error", err)
	}
}

func (o *Orchestrator) cleanup(ctx context.Context, log *slog.Logger) {
	objects, err := o.store.List(ctx)
	if err != nil {
		log.Error("batch.cleanup_list_failed", "error", err)
		return
	}
	for _, obj := range objects {
		if err := o.store.Delete(ctx, obj.Name); err != nil {
			log.Error("batch.cleanup_delete_failed", "filename", obj.Name, "error", err)
			continue
		}
		log.Info("batch.cleanup_deleted", "filename", obj.Name)
	}
}

func countOK(records []*entity.BillingRecord) int {
	n := 0
	for _, r := range records {
		if !r.Failed() {
			n++
		}
	}
	return n
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
