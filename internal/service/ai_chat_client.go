package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StructuredRequest 描述一次带 JSON Schema 约束的对话请求。
type StructuredRequest struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       map[string]any
	Temperature  float64
}

// StructuredResponse 是模型返回的 JSON 文档及用量信息。
type StructuredResponse struct {
	Content          []byte
	PromptTokens     int
	CompletionTokens int
}

// StructuredBackend 抽象一个可以按 Schema 返回结构化结果的模型平台。
type StructuredBackend interface {
	// Name 返回平台的展示名称，例如 "OpenAI"。
	Name() string
	// CredentialEnv 返回保存该平台 API Key 的环境变量名。
	CredentialEnv() string
	Complete(ctx context.Context, apiKey string, req StructuredRequest) (StructuredResponse, error)
}

// aiChatClient 封装各平台共用的 HTTP 调用细节。
type aiChatClient struct {
	http      httpDoer
	label     string
	userAgent string
}

func newAIChatClient(label string) *aiChatClient {
	return &aiChatClient{
		http:      &http.Client{},
		label:     label,
		userAgent: "gym-buddy-ai/1.0",
	}
}

func (c *aiChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{}
		return
	}
	c.http = client
}

// postJSON 发送 JSON 请求并把响应体解码到 out。
// 状态码 >= 400 时通过 extractErr 提取平台返回的错误信息。
func (c *aiChatClient) postJSON(ctx context.Context, endpoint string, headers map[string]string, payload any, out any, extractErr func() string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("构造 %s 请求失败: %w", c.label, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: 创建 %s 请求失败: %v", ErrProviderFailure, c.label, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: 请求 %s 接口失败: %v", ErrProviderFailure, c.label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: 读取 %s 响应失败: %v", ErrProviderFailure, c.label, err)
	}

	decodeErr := json.Unmarshal(respBody, out)

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := ""
		if decodeErr == nil && extractErr != nil {
			errMsg = strings.TrimSpace(extractErr())
		}
		if errMsg == "" {
			errMsg = strings.TrimSpace(string(respBody))
		}
		if errMsg == "" {
			errMsg = resp.Status
		}
		return fmt.Errorf("%w: %s 接口返回错误：%s", ErrProviderFailure, c.label, errMsg)
	}

	if decodeErr != nil {
		return fmt.Errorf("%w: 解析 %s 响应失败: %v", ErrSchemaViolation, c.label, decodeErr)
	}

	return nil
}

func joinEndpoint(base, fallback, path string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		trimmed = fallback
	}
	return trimmed + path
}
