// Package profile builds structured media profiles for news sources and
// enriches article sets with them. Profile text fields are '/'-delimited
// keyword lists, later canonicalized by the keyword encoder.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/WiDayn/AutoTopicSum/internal/core"
)

// DefaultModel is the Gemini model used for profile generation.
const DefaultModel = "gemini-flash-lite-latest"

const profilePromptTemplate = `You are a media research assistant. Describe the news organization "%s" as a structured profile.

For each attribute, answer with short keywords. When several keywords apply, join them with "/" (for example "科技/财经"). Use the same language the organization primarily publishes in. If an attribute is unknown, use an empty string.

Attributes:
- ownership: who owns it (e.g. 国有, 民营, 外资)
- funding: how it is funded
- political_stance: editorial leaning (e.g. 官方, 中立, 左倾, 右倾)
- content_domain: main coverage areas
- location: country or region of operation
- target_audience: who it writes for
- category: what kind of outlet it is`

// profileSchema constrains the model output to the profile's JSON shape.
var profileSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"ownership":        {Type: genai.TypeString},
		"funding":          {Type: genai.TypeString},
		"political_stance": {Type: genai.TypeString},
		"content_domain":   {Type: genai.TypeString},
		"location":         {Type: genai.TypeString},
		"target_audience":  {Type: genai.TypeString},
		"category":         {Type: genai.TypeString},
	},
	Required: []string{"ownership", "political_stance", "content_domain", "location", "category"},
}

// Generator produces a profile for a named media source.
type Generator interface {
	Profile(ctx context.Context, source string) (core.MediaProfile, error)
}

// GeminiProfiler generates profiles with Gemini structured output.
type GeminiProfiler struct {
	client *genai.Client
	model  string
}

// NewGeminiProfiler creates a profiler. An empty model uses DefaultModel.
func NewGeminiProfiler(ctx context.Context, apiKey, model string) (*GeminiProfiler, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProfiler{client: client, model: model}, nil
}

// Profile asks the model to describe the source and decodes the structured
// response.
func (p *GeminiProfiler) Profile(ctx context.Context, source string) (core.MediaProfile, error) {
	if strings.TrimSpace(source) == "" {
		return core.MediaProfile{}, fmt.Errorf("source name cannot be empty")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: fmt.Sprintf(profilePromptTemplate, source)}},
		Role:  "user",
	}}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   profileSchema,
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return core.MediaProfile{}, fmt.Errorf("failed to generate profile for %q: %w", source, err)
	}
	text := resp.Text()
	if text == "" {
		return core.MediaProfile{}, fmt.Errorf("empty profile response for %q", source)
	}

	var profile core.MediaProfile
	if err := json.Unmarshal([]byte(text), &profile); err != nil {
		return core.MediaProfile{}, fmt.Errorf("failed to decode profile for %q: %w", source, err)
	}
	return profile, nil
}
