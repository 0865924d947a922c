// Command query runs a one-shot retrieval against an owner's stored records
// and prints the clinical response as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/app"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/observability"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/service"
	"github.com/Chitralekhayaduvanshi/Cyborg-care/pkg/cache"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	owner := flag.String("owner", "", "owner id whose records are searched")
	flag.Parse()

	question := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if *owner == "" || question == "" {
		return fmt.Errorf("usage: query -owner <id> <question>")
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

	generationClient, err := deps.NewGenerationClient()
	if err != nil {
		return err
	}

	queryCache, err := cache.NewLoaderCache[string, []float32](
		deps.Config.QueryCacheSize, func(k string) string { return k })
	if err != nil {
		return fmt.Errorf("query cache: %w", err)
	}

	retrieval := service.NewRetrievalService(service.RetrievalServiceParams{
		Detector:        deps.Detector,
		EmbeddingClient: deps.EmbeddingClient,
		Dimensions:      deps.Config.EmbeddingDimensions,
		EmbeddingStore:  deps.Embeddings,
		RecordStore:     deps.Records,
		Generation:      generationClient,
		TopK:            deps.Config.SearchTopK,
		MinThreshold:    deps.Config.SearchMinThreshold,
		QueryCache:      queryCache,
		AuditSink:       deps.Audit,
		Metrics:         deps.PipelineMetrics(),
		CacheMetrics:    deps.CacheMetrics(),
	})

	response, err := retrieval.Query(ctx, *owner, question)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(response); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
