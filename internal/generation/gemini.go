package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini 图片生成的固定参数
const (
	// GeminiModel 图片生成模型
	GeminiModel = "gemini-2.0-flash-exp-image-generation"

	geminiTemperature     = float32(1)
	geminiTopK            = float32(32)
	geminiTopP            = float32(1)
	geminiMaxOutputTokens = int32(2048)
)

// ModelClient 图片生成模型客户端接口
type ModelClient interface {
	// Generate 向模型发送提示词，按响应顺序返回文本与图片片段
	Generate(ctx context.Context, prompt string) ([]Part, error)
}

// GeminiClient Gemini API 客户端封装
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient 创建 Gemini 客户端
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  GeminiModel,
	}, nil
}

// Generate 实现 ModelClient
func (g *GeminiClient) Generate(ctx context.Context, prompt string) ([]Part, error) {
	config := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(geminiTemperature),
		TopK:               genai.Ptr(geminiTopK),
		TopP:               genai.Ptr(geminiTopP),
		MaxOutputTokens:    geminiMaxOutputTokens,
		ResponseModalities: []string{"Text", "Image"},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var parts []Part
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			parts = append(parts, TextPart{Text: part.Text})
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			parts = append(parts, ImagePart{MIMEType: mimeType, Data: part.InlineData.Data})
		}
	}
	return parts, nil
}
