package main

import (
	"context"
	"io"
	"log"
	"os"

	"chat-search-be/internal/bootstrap"
	"chat-search-be/internal/config"
	"chat-search-be/pkg/database"
	"chat-search-be/pkg/ingest"

	"github.com/fatih/color"
)

// indexer streams an NDJSON chat session export (one JSON session per line)
// into the corpus store. Usage:
//
//	indexer <file.ndjson>
//	cat file.ndjson | indexer
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	var input io.Reader = os.Stdin
	source := "stdin"
	if len(os.Args) > 1 {
		file, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatalf("Unable to open input file: %v", err)
		}
		defer file.Close()
		input = file
		source = os.Args[1]
	}

	pipeline, err := ingest.NewPipeline(
		container.ChatMessageRepository,
		container.EmbeddingProvider,
		ingest.WithBatchSize(cfg.Ingest.BatchSize),
		ingest.WithWorkers(cfg.Ingest.Workers),
		ingest.WithLogger(container.Logger),
	)
	if err != nil {
		log.Fatalf("Unable to create ingestion pipeline: %v", err)
	}
	defer pipeline.Release()

	log.Printf("Starting to stream and index: %s", source)

	summary, err := pipeline.Ingest(context.Background(), input)
	if err != nil {
		log.Fatalf("Ingestion aborted: %v", err)
	}

	color.Cyan("\n--- Indexing Complete ---")
	color.White("Total lines read: %d", summary.LinesRead)
	color.Green("Successfully indexed messages: %d", summary.Succeeded)
	if summary.Failed > 0 {
		color.Red("Failed messages: %d", summary.Failed)
	} else {
		color.White("Failed messages: %d", summary.Failed)
	}
	color.Cyan("-------------------------")
}
