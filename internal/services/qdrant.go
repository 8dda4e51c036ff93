package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"qahiring/cv-analyzer/internal/rubric"
)

const (
	// DocTypeRubric tags passages taken from the evaluation rubric.
	DocTypeRubric = "rubric"

	rubricDocID = "qa_engineer_rubric"

	// embeddingSize matches Gemini's text-embedding-004.
	embeddingSize = 768
)

type QdrantService interface {
	InitCollection(ctx context.Context) error
	UpsertChunk(ctx context.Context, docID, docType string, index int, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error)
	DeleteDocument(ctx context.Context, docID string) error
}

type SearchResult struct {
	ID      string
	Score   float32
	Text    string
	DocType string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port unless the URL names one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     embeddingSize,
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists\n", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunk implements QdrantService. Point IDs are derived from the
// document and chunk index, so re-indexing overwrites instead of duplicating.
func (q *qdrantService) UpsertChunk(ctx context.Context, docID, docType string, index int, text string, embedding []float32) error {
	pointID := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s#%d", docID, index)))

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"doc_id":      docID,
			"doc_type":    docType,
			"chunk_index": int64(index),
			"text":        text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements QdrantService.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, docType string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if docType != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("doc_type", docType),
			},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			ID:      payloadString(point.Payload, "doc_id"),
			Score:   point.Score,
			Text:    payloadString(point.Payload, "text"),
			DocType: payloadString(point.Payload, "doc_type"),
		})
	}

	return results, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}

// DeleteDocument implements QdrantService.
func (q *qdrantService) DeleteDocument(ctx context.Context, docID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", docID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

// RubricRetriever finds the rubric passages most relevant to a CV.
type RubricRetriever interface {
	Retrieve(ctx context.Context, cvText string) (string, error)
}

type rubricRetriever struct {
	embedder Embedder
	store    QdrantService
	topK     int
}

func NewRubricRetriever(embedder Embedder, store QdrantService, topK int) RubricRetriever {
	if topK <= 0 {
		topK = 4
	}
	return &rubricRetriever{embedder: embedder, store: store, topK: topK}
}

func (r *rubricRetriever) Retrieve(ctx context.Context, cvText string) (string, error) {
	embedding, err := r.embedder.Embed(ctx, cvText)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := r.store.SearchSimilar(ctx, embedding, DocTypeRubric, r.topK)
	if err != nil {
		return "", err
	}

	return FormatRAGContext(results), nil
}

// RubricPassages renders the rubric as the documents that get indexed: the
// criteria text, one passage per category, and the rules.
func RubricPassages(rb *rubric.Rubric) []string {
	passages := []string{rb.CriteriaText()}

	for _, category := range rb.Categories {
		passages = append(passages, fmt.Sprintf("%s (%s): %s", category.Title, category.Key, category.Description))
	}

	rules := "Pass rules:"
	for i, rule := range rb.PassRules {
		rules += fmt.Sprintf("\n%d. %s", i+1, rule)
	}
	passages = append(passages, rules)

	return passages
}

// IndexRubric replaces the indexed rubric with fresh chunks and returns how
// many were stored.
func IndexRubric(ctx context.Context, rb *rubric.Rubric, embedder Embedder, store QdrantService, chunker *Chunker) (int, error) {
	if err := store.InitCollection(ctx); err != nil {
		return 0, err
	}
	if err := store.DeleteDocument(ctx, rubricDocID); err != nil {
		return 0, err
	}

	count := 0
	for _, passage := range RubricPassages(rb) {
		for _, chunk := range chunker.Chunk(passage) {
			embedding, err := embedder.Embed(ctx, chunk)
			if err != nil {
				return count, fmt.Errorf("failed to embed chunk %d: %w", count, err)
			}
			if err := store.UpsertChunk(ctx, rubricDocID, DocTypeRubric, count, chunk, embedding); err != nil {
				return count, err
			}
			count++
		}
	}

	log.Printf("✅ Indexed %d rubric chunks\n", count)
	return count, nil
}
