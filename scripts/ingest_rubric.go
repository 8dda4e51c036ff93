package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"qahiring/cv-analyzer/internal/config"
	"qahiring/cv-analyzer/internal/rubric"
	"qahiring/cv-analyzer/internal/services"
)

// Indexes the reference rubric into Qdrant, plus any extra reference
// documents (pdf, docx, txt) given as arguments.
func main() {
	log.Println("🚀 Starting rubric ingestion...")

	cfg := config.Load()
	if !cfg.Qdrant.Enabled() {
		log.Fatal("❌ QDRANT_URL is not set")
	}
	if cfg.LLM.Provider != config.ProviderGemini {
		log.Fatalf("❌ Embeddings need the %s provider, got %s", config.ProviderGemini, cfg.LLM.Provider)
	}

	ctx := context.Background()

	provider, err := services.NewLLMProvider(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}
	embedder, ok := provider.(services.Embedder)
	if !ok {
		log.Fatalf("❌ %s provider cannot embed", provider.Name())
	}

	store, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	chunker := services.NewChunker(800, 100)

	count, err := services.IndexRubric(ctx, rubric.MustDefault(), embedder, store, chunker)
	if err != nil {
		log.Fatalf("❌ Failed to index rubric after %d chunks: %v", count, err)
	}

	extractor := services.NewTextExtractor()
	failCount := 0
	for _, path := range os.Args[1:] {
		log.Printf("📄 Processing: %s", path)
		n, err := ingestReference(ctx, path, extractor, embedder, store, chunker)
		if err != nil {
			log.Printf("   ❌ %v", err)
			failCount++
			continue
		}
		log.Printf("   ✅ Stored %d chunks", n)
		count += n
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary: %d chunks in %s", count, cfg.Qdrant.Collection)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		log.Printf("⚠️  %d reference documents failed to ingest", failCount)
		os.Exit(1)
	}
}

func ingestReference(ctx context.Context, path string, extractor services.TextExtractor, embedder services.Embedder, store services.QdrantService, chunker *services.Chunker) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	text := extractor.Extract(filepath.Base(path), data)
	if text == "" {
		return 0, fmt.Errorf("no text extracted")
	}

	docID := "reference_" + strings.ToLower(filepath.Base(path))
	if err := store.DeleteDocument(ctx, docID); err != nil {
		return 0, err
	}

	chunks := chunker.Chunk(text)
	for i, chunk := range chunks {
		embedding, err := embedder.Embed(ctx, chunk)
		if err != nil {
			return i, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		if err := store.UpsertChunk(ctx, docID, services.DocTypeRubric, i, chunk, embedding); err != nil {
			return i, err
		}
	}
	return len(chunks), nil
}
