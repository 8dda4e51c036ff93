package services

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"qahiring/cv-analyzer/internal/config"
)

// maxEmbeddingChars keeps embedding requests under the model's token limit.
const maxEmbeddingChars = 40000

type geminiProvider struct {
	client      *genai.Client
	modelName   string
	embedModel  string
	temperature float32
	maxTokens   int32
}

func NewGeminiProvider(ctx context.Context, cfg config.LLMConfig) (LLMProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiProvider{
		client:      client,
		modelName:   cfg.GeminiModel,
		embedModel:  cfg.EmbeddingModel,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
	}, nil
}

func (g *geminiProvider) Name() string {
	return "gemini"
}

// Embed implements Embedder.
func (g *geminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) > maxEmbeddingChars {
		text = text[:maxEmbeddingChars]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Generate implements LLMProvider.
func (g *geminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := g.temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  g.maxTokens,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		log.Printf("❌ Gemini returned no text content (%d candidates)\n", len(resp.Candidates))
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}
