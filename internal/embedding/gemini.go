package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/WiDayn/AutoTopicSum/internal/logger"
)

// DefaultModel is the default Gemini embedding model.
const DefaultModel = "gemini-embedding-001"

// DefaultDimensions is the requested output dimension (Matryoshka truncation).
const DefaultDimensions = int32(768)

// GeminiProvider generates embeddings through the Gemini API.
type GeminiProvider struct {
	client     *genai.Client
	model      string
	dimensions int32
}

// NewGeminiProvider creates a provider for the given API key. The provider is
// constructed once at startup and injected wherever similarity computation is
// needed; callers that cannot obtain a key should pass a nil Provider
// downstream instead of constructing one lazily.
func NewGeminiProvider(ctx context.Context, apiKey, model string, dimensions int32) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model, dimensions: dimensions}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string { return "gemini/" + p.model }

// Embed implements Provider. The whole batch goes through one EmbedContent
// call; the API returns one embedding per content in input order.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
			Role:  "user",
		}
	}

	dims := p.dimensions
	config := &genai.EmbedContentConfig{OutputDimensionality: &dims}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to embed batch of %d: %w", len(texts), err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding: expected %d embeddings, got %d", len(texts), respLen(resp))
	}

	vectors := make([][]float64, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("embedding: empty vector at index %d", i)
		}
		vec := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}

	logger.Debug("Embedded batch", "provider", p.Name(), "count", len(texts), "dims", len(vectors[0]))
	return vectors, nil
}

func respLen(resp *genai.EmbedContentResponse) int {
	if resp == nil {
		return 0
	}
	return len(resp.Embeddings)
}
