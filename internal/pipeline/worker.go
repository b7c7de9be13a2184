package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/store"
	"github.com/dgallion1/careersync/internal/tabular"
)

// Worker processes a single replacement job.
type Worker struct {
	store  *store.FS
	stats  *DurationStats
	log    *slog.Logger
	policy catalog.CodePolicy

	backoff func(attempt int) time.Duration
	now     func() time.Time
}

func NewWorker(fs *store.FS, stats *DurationStats, log *slog.Logger, policy catalog.CodePolicy) *Worker {
	return &Worker{
		store:   fs,
		stats:   stats,
		log:     log,
		policy:  policy,
		backoff: Backoff,
		now:     time.Now,
	}
}

// Process reads both inputs, rebuilds the section and keeps the encoded
// document on the job. The output file is written only when the request
// asks for it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	start := time.Now()
	log := w.log.With("job_id", job.ID, "document", job.Document, "table", job.Table)

	fail := func(phase string, err error) {
		log.Error("job failed", "phase", phase, "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		if w.stats != nil {
			w.stats.RecordFailure()
		}
		job.SetStatus(StatusFailed, phase)
	}

	// Phase 1: Read
	job.SetStatus(StatusReading, "reading")
	req := job.req

	kind := req.Section
	if kind == "" {
		detected, err := catalog.DetectSectionKind(job.Table)
		if err != nil {
			fail("reading", err)
			return
		}
		kind = detected
	}
	job.SetSection(kind)

	doc, err := w.readDocument(req.Document)
	if err != nil {
		fail("reading", err)
		return
	}

	table, err := w.readTableWithRetry(ctx, log, job, req.Table)
	if err != nil {
		fail("reading", err)
		return
	}

	// Phase 2: Build
	job.SetStatus(StatusBuilding, "building")
	policy := req.CodePolicy
	if policy == "" {
		policy = w.policy
	}
	updated, report, err := catalog.Replace(doc, table.Records(), kind, catalog.WithCodePolicy(policy))
	if err != nil {
		fail("building", err)
		return
	}
	job.SetReport(report)
	log.Info("section rebuilt", "section", kind, "summary", report.Summary, "programs", report.Stats.Programs)

	data, err := updated.MarshalIndent()
	if err != nil {
		fail("building", err)
		return
	}

	// Phase 3: Write
	var outputPath string
	if req.WriteOutput {
		job.SetStatus(StatusWriting, "writing")
		source := req.Document.Path
		if source == "" {
			source = job.Document
		}
		if source == "" {
			source = "careers.json"
		}
		outputPath, err = w.store.WriteDocument(updated, source, w.now())
		if err != nil {
			fail("writing", err)
			return
		}
		log.Info("document written", "output", outputPath)
	}

	job.SetResult(data, outputPath)
	if w.stats != nil {
		w.stats.Record(time.Since(start))
	}
	job.SetStatus(StatusCompleted, "done")
}

// readDocument loads the base document. With no document at all the
// section is spliced into an empty one.
func (w *Worker) readDocument(src Source) (*catalog.Document, error) {
	switch {
	case src.Data != nil:
		return catalog.ParseDocument(src.Data)
	case src.Path != "":
		return w.store.ReadDocument(src.Path)
	}
	return catalog.NewDocument(), nil
}

// readTableWithRetry re-reads a path-backed table while it comes back empty.
func (w *Worker) readTableWithRetry(ctx context.Context, log *slog.Logger, job *Job, src Source) (*tabular.Table, error) {
	var lastErr error
	for attempt := range MaxRetries {
		data := src.Data
		if data == nil && src.Path != "" {
			b, err := os.ReadFile(src.Path)
			if err != nil {
				return nil, fmt.Errorf("read table: %w", err)
			}
			data = b
		}

		var table *tabular.Table
		table, lastErr = tabular.ReadFile(bytes.NewReader(data), sourceName(src))
		if lastErr == nil {
			job.SetContentHash(ContentHashHex(data))
			return table, nil
		}
		if !IsRetryable(lastErr) || src.Path == "" || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable read error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
