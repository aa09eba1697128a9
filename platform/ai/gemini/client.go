// Package gemini implements the ai.Chat contract against the Gemini API.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Config for the Gemini client.
type Config struct {
	APIKey string
	Model  string
}

// Client wraps the genai SDK for single-turn completions.
type Client struct {
	config Config
	client *genai.Client
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{config: cfg, client: client}, nil
}

// Name identifies the backing model.
func (c *Client) Name() string {
	return c.config.Model
}

// Complete sends a system instruction plus user content and returns the
// model's text output. JSON output is requested; callers still must not
// trust the shape of the result.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.config.Model,
		genai.Text(user),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty response")
	}
	return text, nil
}
