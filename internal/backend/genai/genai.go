// Package genai asks a Gemini model for the base colours of an image.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"
	"google.golang.org/genai"

	"github.com/jmylchreest/cwal/internal/backend"
	"github.com/jmylchreest/cwal/internal/colour"
	"github.com/jmylchreest/cwal/internal/quantize"
)

const (
	// Name is the registry name of the backend.
	Name = "genai"

	// APIKeyEnv holds the Gemini API key.
	APIKeyEnv = "GOOGLE_API_KEY"
	// ModelEnv overrides the model.
	ModelEnv = "CWAL_GENAI_MODEL"

	defaultModel = "gemini-2.5-flash"

	// Images are shrunk before upload.
	maxDimension = 512

	prompt = `Extract the 8 most representative colours of this image for a terminal colour scheme.
Include the darkest dominant colour, the lightest dominant colour and six distinct accent colours.
Respond only with JSON of the form {"colors": ["#rrggbb", ...]} containing exactly 8 hex colours.`
)

// contentGenerator is the part of *genai.Models the backend uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Backend sends a thumbnail to Gemini and parses the returned hex colours.
type Backend struct {
	model  string
	logger hclog.Logger

	// newClient is replaced in tests.
	newClient func(ctx context.Context) (contentGenerator, error)
	client    contentGenerator
}

// New creates the backend. The model comes from CWAL_GENAI_MODEL when set.
func New(logger hclog.Logger) *Backend {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	model := os.Getenv(ModelEnv)
	if model == "" {
		model = defaultModel
	}
	return &Backend{model: model, logger: logger, newClient: clientSetup}
}

// Name implements backend.Backend.
func (b *Backend) Name() string { return Name }

// Description implements backend.Describer.
func (b *Backend) Description() string {
	return "Google Gemini colour extraction (needs " + APIKeyEnv + ")"
}

// ExplicitOnly implements backend.ExplicitOnly. The image is uploaded to
// Gemini, so the backend only runs when selected with --backend genai.
func (b *Backend) ExplicitOnly() bool { return true }

// Init creates the API client. It fails when no API key is configured.
func (b *Backend) Init(ctx context.Context) error {
	if b.client != nil {
		return nil
	}
	client, err := b.newClient(ctx)
	if err != nil {
		return err
	}
	b.client = client
	return nil
}

// Terminate drops the client.
func (b *Backend) Terminate() error {
	b.client = nil
	return nil
}

// clientSetup creates a Gemini API client from the environment.
func clientSetup(ctx context.Context) (contentGenerator, error) {
	apiKey := os.Getenv(APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is required", APIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gen AI client: %w", err)
	}
	return client.Models, nil
}

// Generate implements backend.Backend.
func (b *Backend) Generate(ctx context.Context, src backend.Source) ([]colour.Color, error) {
	if b.client == nil {
		return nil, fmt.Errorf("client not initialised")
	}

	img, err := src.Decode()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(buf.Bytes(), "image/png"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	temperature := float32(0)
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}

	b.logger.Debug("requesting colours", "model", b.model, "bytes", buf.Len())

	resp, err := b.client.GenerateContent(ctx, b.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	colors, err := parseResponse(resp.Text())
	if err != nil {
		return nil, err
	}

	quantize.SortByLuminance(colors)
	return colors, nil
}

// parseResponse reads {"colors": ["#rrggbb", ...]}, tolerating a fenced code block.
func parseResponse(text string) ([]colour.Color, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var payload struct {
		Colors []string `json:"colors"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}

	colors := make([]colour.Color, 0, len(payload.Colors))
	for _, h := range payload.Colors {
		c, err := colour.ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("model returned %w", err)
		}
		colors = append(colors, c)
	}
	return colors, nil
}
