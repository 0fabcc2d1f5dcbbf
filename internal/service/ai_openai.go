package service

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	// OpenAIRoutineModel 是生成训练计划时固定使用的 OpenAI 模型。
	OpenAIRoutineModel = "gpt-4o"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIJSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type openAIResponseFormat struct {
	Type       string           `json:"type"`
	JSONSchema openAIJSONSchema `json:"json_schema"`
}

type chatCompletionRequest struct {
	Model          string               `json:"model"`
	Messages       []chatMessage        `json:"messages"`
	Temperature    float64              `json:"temperature"`
	ResponseFormat openAIResponseFormat `json:"response_format"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIBackend 通过 chat/completions 的 json_schema 响应格式获取结构化结果。
type OpenAIBackend struct {
	client  *aiChatClient
	baseURL string
	model   string
}

// NewOpenAIBackend 构造默认指向官方 API 的 OpenAIBackend。
func NewOpenAIBackend() *OpenAIBackend {
	return &OpenAIBackend{
		client:  newAIChatClient("OpenAI"),
		baseURL: defaultOpenAIBaseURL,
		model:   OpenAIRoutineModel,
	}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (b *OpenAIBackend) SetHTTPClient(client httpDoer) {
	b.client.SetHTTPClient(client)
}

// SetBaseURL 覆盖 OpenAI API 的基础地址，便于测试或自定义代理。
func (b *OpenAIBackend) SetBaseURL(base string) {
	b.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (b *OpenAIBackend) Name() string { return "OpenAI" }

func (b *OpenAIBackend) CredentialEnv() string { return "OPENAI_API_KEY" }

func (b *OpenAIBackend) Complete(ctx context.Context, apiKey string, req StructuredRequest) (StructuredResponse, error) {
	payload := chatCompletionRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: strings.TrimSpace(req.SystemPrompt)},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		ResponseFormat: openAIResponseFormat{
			Type: "json_schema",
			JSONSchema: openAIJSONSchema{
				Name:   req.SchemaName,
				Strict: true,
				Schema: req.Schema,
			},
		},
	}

	var completion chatCompletionResponse
	endpoint := joinEndpoint(b.baseURL, defaultOpenAIBaseURL, "/chat/completions")
	headers := map[string]string{"Authorization": "Bearer " + apiKey}
	if err := b.client.postJSON(ctx, endpoint, headers, payload, &completion, func() string {
		return completion.Error.Message
	}); err != nil {
		return StructuredResponse{}, err
	}

	if len(completion.Choices) == 0 {
		return StructuredResponse{}, fmt.Errorf("%w: OpenAI 接口未返回结果", ErrProviderFailure)
	}

	message := completion.Choices[0].Message
	if refusal := strings.TrimSpace(message.Refusal); refusal != "" {
		return StructuredResponse{}, fmt.Errorf("%w: OpenAI 拒绝生成：%s", ErrProviderFailure, refusal)
	}

	content := strings.TrimSpace(message.Content)
	if content == "" {
		return StructuredResponse{}, fmt.Errorf("%w: OpenAI 返回了空内容", ErrSchemaViolation)
	}

	return StructuredResponse{
		Content:          []byte(content),
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}
