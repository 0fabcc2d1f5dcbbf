package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
	anthropicMaxTokens      = 8192
	// AnthropicRoutineModel 是生成训练计划时固定使用的 Anthropic 模型。
	AnthropicRoutineModel = "claude-3-5-sonnet-latest"
)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type anthropicMessagesRequest struct {
	Model       string              `json:"model"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
	System      string              `json:"system,omitempty"`
	Messages    []anthropicMessage  `json:"messages"`
	Tools       []anthropicTool     `json:"tools"`
	ToolChoice  anthropicToolChoice `json:"tool_choice"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Name  string          `json:"name,omitempty"`
	Text  string          `json:"text,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type anthropicMessagesResponse struct {
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicBackend 通过强制调用单个工具的方式让模型按 Schema 输出。
type AnthropicBackend struct {
	client  *aiChatClient
	baseURL string
	model   string
}

// NewAnthropicBackend 构造默认指向官方 API 的 AnthropicBackend。
func NewAnthropicBackend() *AnthropicBackend {
	return &AnthropicBackend{
		client:  newAIChatClient("Anthropic"),
		baseURL: defaultAnthropicBaseURL,
		model:   AnthropicRoutineModel,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (b *AnthropicBackend) SetHTTPClient(client httpDoer) {
	b.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖 Anthropic API 的基础地址。
func (b *AnthropicBackend) SetBaseURL(base string) {
	b.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (b *AnthropicBackend) Name() string { return "Anthropic" }

func (b *AnthropicBackend) CredentialEnv() string { return "ANTHROPIC_API_KEY" }

func (b *AnthropicBackend) Complete(ctx context.Context, apiKey string, req StructuredRequest) (StructuredResponse, error) {
	payload := anthropicMessagesRequest{
		Model:       b.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: req.Temperature,
		System:      strings.TrimSpace(req.SystemPrompt),
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
		Tools: []anthropicTool{{
			Name:        req.SchemaName,
			Description: "Return the result using this exact structure.",
			InputSchema: req.Schema,
		}},
		ToolChoice: anthropicToolChoice{Type: "tool", Name: req.SchemaName},
	}

	var message anthropicMessagesResponse
	endpoint := joinEndpoint(b.baseURL, defaultAnthropicBaseURL, "/messages")
	headers := map[string]string{
		"x-api-key":         apiKey,
		"anthropic-version": anthropicAPIVersion,
	}
	if err := b.client.postJSON(ctx, endpoint, headers, payload, &message, func() string {
		return message.Error.Message
	}); err != nil {
		return StructuredResponse{}, err
	}

	for _, block := range message.Content {
		if block.Type != "tool_use" || block.Name != req.SchemaName {
			continue
		}
		if len(block.Input) == 0 {
			break
		}
		return StructuredResponse{
			Content:          []byte(block.Input),
			PromptTokens:     message.Usage.InputTokens,
			CompletionTokens: message.Usage.OutputTokens,
		}, nil
	}

	return StructuredResponse{}, fmt.Errorf("%w: Anthropic 未返回 %s 工具调用 (stop_reason=%s)", ErrSchemaViolation, req.SchemaName, message.StopReason)
}
