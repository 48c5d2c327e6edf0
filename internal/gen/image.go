package gen

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"
)

// GeminiImage is a thin wrapper around the genai image models.
type GeminiImage struct {
	cli   *genai.Client
	model string
}

func NewGeminiImage(ctx context.Context, apiKey, model string) (*GeminiImage, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiImage{cli: cli, model: model}, nil
}

// Render implements story.ImageRenderer.
func (g *GeminiImage) Render(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.cli.Models.GenerateImages(ctx, g.model, prompt,
		&genai.GenerateImagesConfig{NumberOfImages: 1})
	if err != nil {
		return nil, fmt.Errorf("gen: generate image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("gen: image model %s returned no image", g.model)
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}
