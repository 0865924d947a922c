// Command ingest loads clinical records from a JSON file (or stdin) and runs
// them through the anonymize-embed-store pipeline. Input is a JSON array of
// clinical records; -owner overrides the owner id on every record.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/app"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/models"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		file  = flag.String("file", "-", "path to a JSON array of clinical records, or - for stdin")
		owner = flag.String("owner", "", "override the owner id on every record")
	)
	flag.Parse()

	records, err := readRecords(*file)
	if err != nil {
		return err
	}

	if *owner != "" {
		for _, record := range records {
			record.OwnerID = *owner
		}
	}

	ctx := context.WithValue(context.Background(),
		observability.RequestIDKey, uuid.Must(uuid.NewV7()).String())

	deps, err := app.New(ctx)
	if err != nil {
		return err
	}

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		deps.Close(closeCtx)
	}()

	result := deps.NewIngestService().IngestBatch(ctx, records)

	slog.Info("batch done",
		"total", len(records),
		"ingested", len(result.Results),
		"failed", len(result.Errors),
	)

	for _, itemErr := range result.Errors {
		fmt.Fprintf(os.Stderr, "record %d: %v\n", itemErr.Index, itemErr.Err)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d of %d records failed", len(result.Errors), len(records))
	}

	return nil
}

func readRecords(path string) ([]*models.ClinicalRecord, error) {
	var reader io.Reader = os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}

		defer f.Close()

		reader = f
	}

	var records []*models.ClinicalRecord
	if err := json.NewDecoder(reader).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	return records, nil
}
