package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/vision"
)

const maxTokens = 2048

// Client adapts the OpenAI chat completions API to the vision.Engine
// port. The image travels inline as a base64 data URL.
type Client struct {
	*openai.Client
}

func NewClient(apiKey string) *Client {
	return &Client{Client: openai.NewClient(apiKey)}
}

func (c *Client) Generate(ctx context.Context, req vision.Request) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		req.Image.MIMEType, base64.StdEncoding.EncodeToString(req.Image.Data))

	r := openai.ChatCompletionRequest{
		Model: req.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: openai.ImageURLDetailHigh,
					}},
				},
			},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(req.Model, "o1") || strings.HasPrefix(req.Model, "o3") || strings.HasPrefix(req.Model, "o4") || strings.HasPrefix(req.Model, "gpt-5") {
		r.MaxCompletionTokens = maxTokens
	} else {
		r.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, r)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "", vision.ErrQuotaExceeded
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response for model %s", req.Model)
	}
	return resp.Choices[0].Message.Content, nil
}
