package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnknownProvider 表示请求的模型平台未注册。
	ErrUnknownProvider = errors.New("unknown model provider")
	// ErrMissingCredential 表示所选平台没有可用的 API Key。
	// Generate 遇到该情况时返回 nil 结果而不是错误，此错误仅用于日志与 GenerateDetailed。
	ErrMissingCredential = errors.New("model provider credential is missing")
	// ErrProviderFailure 表示网络错误或平台返回了错误响应。
	ErrProviderFailure = errors.New("model provider request failed")
	// ErrSchemaViolation 表示模型输出无法解析为合法的周计划。
	ErrSchemaViolation = errors.New("model output does not match weekly routine schema")
)

const (
	routineTemperature = 0.7
	routineSchemaName  = "weekly_routine"

	routineSystemPrompt = "You are an expert fitness trainer. You create personalized 7-day gym routines."
)

// RoutineProfile 是生成计划所需的用户数据，按原样拼入提示词。
type RoutineProfile struct {
	Age    int
	Weight float64
	Height float64
	Level  string
	Tenure string
}

// CredentialSource 根据环境变量名返回 API Key，默认读取进程环境。
type CredentialSource func(envKey string) string

// BackendRegistry 按名称（不区分大小写）索引可用的模型平台。
type BackendRegistry struct {
	backends map[string]StructuredBackend
}

// NewBackendRegistry 使用给定平台构造注册表。
func NewBackendRegistry(backends ...StructuredBackend) *BackendRegistry {
	r := &BackendRegistry{backends: make(map[string]StructuredBackend, len(backends))}
	for _, backend := range backends {
		r.Register(backend)
	}
	return r
}

// Register 注册或替换一个平台。
func (r *BackendRegistry) Register(backend StructuredBackend) {
	r.backends[normalizeProviderName(backend.Name())] = backend
}

// Lookup 按名称查找平台。
func (r *BackendRegistry) Lookup(name string) (StructuredBackend, bool) {
	backend, ok := r.backends[normalizeProviderName(name)]
	return backend, ok
}

// Names 返回已注册平台的展示名称，按字母排序。
func (r *BackendRegistry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for _, backend := range r.backends {
		names = append(names, backend.Name())
	}
	sort.Strings(names)
	return names
}

// RoutineResult 携带生成结果与本次请求的追踪信息。
type RoutineResult struct {
	RequestID        string
	Provider         string
	Routine          *WeeklyRoutine
	PromptTokens     int
	CompletionTokens int
}

// RoutineGenerator 调用所选模型平台生成 7 天训练计划。
type RoutineGenerator struct {
	registry        *BackendRegistry
	credentials     CredentialSource
	defaultProvider string
}

// NewRoutineGenerator 构造 RoutineGenerator，defaultProvider 用于未指定平台的请求。
func NewRoutineGenerator(registry *BackendRegistry, defaultProvider string) *RoutineGenerator {
	return &RoutineGenerator{
		registry:        registry,
		credentials:     os.Getenv,
		defaultProvider: strings.TrimSpace(defaultProvider),
	}
}

// NewDefaultRoutineGenerator 注册 OpenAI 与 Anthropic 两个平台并使用给定的基础地址。
func NewDefaultRoutineGenerator(defaultProvider, openAIBaseURL, anthropicBaseURL string) *RoutineGenerator {
	openAI := NewOpenAIBackend()
	openAI.SetBaseURL(openAIBaseURL)
	anthropic := NewAnthropicBackend()
	anthropic.SetBaseURL(anthropicBaseURL)
	return NewRoutineGenerator(NewBackendRegistry(openAI, anthropic), defaultProvider)
}

// SetCredentialSource 替换 API Key 的读取方式，传入 nil 时恢复为进程环境。
func (g *RoutineGenerator) SetCredentialSource(source CredentialSource) {
	if source == nil {
		g.credentials = os.Getenv
		return
	}
	g.credentials = source
}

// Providers 返回可选的平台名称。
func (g *RoutineGenerator) Providers() []string {
	return g.registry.Names()
}

// Generate 为给定档案生成周计划。
// 所选平台未配置 API Key 时返回 (nil, nil)，且不会发起网络请求。
func (g *RoutineGenerator) Generate(ctx context.Context, profile RoutineProfile, provider string) (*WeeklyRoutine, error) {
	result, err := g.GenerateDetailed(ctx, profile, provider, "")
	if err != nil {
		if errors.Is(err, ErrMissingCredential) {
			return nil, nil
		}
		return nil, err
	}
	return result.Routine, nil
}

// GenerateDetailed 与 Generate 相同，但 apiKey 非空时优先使用该 Key，
// 并以 ErrMissingCredential 明确报告缺少凭据的情况。
func (g *RoutineGenerator) GenerateDetailed(ctx context.Context, profile RoutineProfile, provider, apiKey string) (RoutineResult, error) {
	name := strings.TrimSpace(provider)
	if name == "" {
		name = g.defaultProvider
	}

	backend, ok := g.registry.Lookup(name)
	if !ok {
		return RoutineResult{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	requestID := uuid.NewString()

	key := strings.TrimSpace(apiKey)
	if key == "" && g.credentials != nil {
		key = strings.TrimSpace(g.credentials(backend.CredentialEnv()))
	}
	if key == "" {
		log.Printf("[AI ROUTINE %s] %s skipped: %s not set", requestID, backend.Name(), backend.CredentialEnv())
		return RoutineResult{RequestID: requestID, Provider: backend.Name()}, ErrMissingCredential
	}

	userPrompt := buildRoutinePrompt(profile)
	logAIExchange(requestID, "prompt", userPrompt)

	resp, err := backend.Complete(ctx, key, StructuredRequest{
		SystemPrompt: routineSystemPrompt,
		UserPrompt:   userPrompt,
		SchemaName:   routineSchemaName,
		Schema:       weeklyRoutineSchema(),
		Temperature:  routineTemperature,
	})
	if err != nil {
		log.Printf("[AI ROUTINE %s] %s failed: %v", requestID, backend.Name(), err)
		return RoutineResult{}, err
	}
	logAIExchange(requestID, "response", string(resp.Content))

	routine, err := decodeWeeklyRoutine(resp.Content)
	if err != nil {
		log.Printf("[AI ROUTINE %s] %s returned invalid routine: %v", requestID, backend.Name(), err)
		return RoutineResult{}, err
	}

	return RoutineResult{
		RequestID:        requestID,
		Provider:         backend.Name(),
		Routine:          routine,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
	}, nil
}

func buildRoutinePrompt(profile RoutineProfile) string {
	var builder strings.Builder
	builder.WriteString("Create a detailed one-week gym routine for a user with the following profile:\n")
	fmt.Fprintf(&builder, "- Age: %d\n", profile.Age)
	fmt.Fprintf(&builder, "- Weight: %v kg\n", profile.Weight)
	fmt.Fprintf(&builder, "- Height: %v cm\n", profile.Height)
	fmt.Fprintf(&builder, "- Experience Level: %s (Beginner, Regular, Expert)\n", profile.Level)
	fmt.Fprintf(&builder, "- Gym Tenure: %s\n", profile.Tenure)
	builder.WriteString("\nStructure the response as a weekly plan. ")
	builder.WriteString("For each exercise, include a YouTube search URL and a \"form_tip\" describing how to do it correctly.")
	return builder.String()
}

func normalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
