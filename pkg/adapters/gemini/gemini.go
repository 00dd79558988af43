// Package gemini implements the generative model and embedding ports with
// the Google Gen AI SDK, on either the Gemini API or Vertex AI.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/aretw0/querent/pkg/ports"
)

const (
	DefaultChatModel      = "gemini-2.0-flash-001"
	DefaultEmbeddingModel = "text-embedding-004"
	DefaultTemperature    = 0.1
)

// ErrEmptyResponse is returned when the model produced no candidates.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Config selects the backend and models.
type Config struct {
	// APIKey selects the Gemini API. When empty, Vertex AI is used with
	// Project and Location and application default credentials.
	APIKey   string
	Project  string
	Location string

	ChatModel      string
	EmbeddingModel string
	Temperature    float32

	// BaseURL overrides the service endpoint.
	BaseURL string
}

// Client implements ports.Generator and ports.Embedder.
type Client struct {
	client      *genai.Client
	chatModel   string
	embedModel  string
	temperature float32
}

// New creates a client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cc := &genai.ClientConfig{}
	if cfg.APIKey != "" {
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	} else {
		if cfg.Project == "" || cfg.Location == "" {
			return nil, fmt.Errorf("gemini: project and location are required without an API key")
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	c := &Client{
		client:      cli,
		chatModel:   cfg.ChatModel,
		embedModel:  cfg.EmbeddingModel,
		temperature: cfg.Temperature,
	}
	if c.chatModel == "" {
		c.chatModel = DefaultChatModel
	}
	if c.embedModel == "" {
		c.embedModel = DefaultEmbeddingModel
	}
	if c.temperature == 0 {
		c.temperature = DefaultTemperature
	}
	return c, nil
}

// Generate sends prompt as a single user turn and returns the text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.chatModel, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" && len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Embed returns the retrieval-query embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.Models.EmbedContent(ctx, c.embedModel, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Embeddings[0].Values, nil
}

var (
	_ ports.Generator = (*Client)(nil)
	_ ports.Embedder  = (*Client)(nil)
)
