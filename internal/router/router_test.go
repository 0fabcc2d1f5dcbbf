package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gymbuddy/internal/db"
	"github.com/gymbuddy/internal/service"
	"gorm.io/gorm/logger"
)

type e2eSuite struct {
	handler       http.Handler
	public        httpClient
	member        httpClient
	baseURL       string
	dbPath        string
	providerCalls *atomic.Int32
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

func TestE2E_AllInterfaces(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("public endpoints", suite.testPublicEndpoints)
	t.Run("account flow", suite.testAccountFlow)
	t.Run("routine generation", suite.testRoutineGeneration)
}

// newFakeOpenAI 启动一个模拟 chat/completions 的本地服务，返回合法的 7 天计划。
func newFakeOpenAI(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	days := make([]map[string]any, 0, service.WeeklyDays)
	for i := 1; i <= service.WeeklyDays; i++ {
		days = append(days, map[string]any{
			"day": fmt.Sprintf("Day %d: Conditioning", i),
			"exercises": []map[string]any{{
				"name":        "Kettlebell Swing",
				"sets_reps":   "4 sets of 15 reps",
				"youtube_url": "https://www.youtube.com/results?search_query=kettlebell+swing",
				"form_tip":    "Hinge at the hips. Snap the hips forward to drive the bell.",
			}},
		})
	}
	content, err := json.Marshal(map[string]any{"days": days})
	if err != nil {
		t.Fatalf("failed to marshal routine: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer e2e-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": string(content)}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 20},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db.LogLevel = logger.Silent

	dbPath := filepath.Join(t.TempDir(), "gym_buddy.db")
	accounts := service.NewAccountService(dbPath)
	if err := accounts.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	calls := &atomic.Int32{}
	provider := newFakeOpenAI(t, calls)

	routines := service.NewDefaultRoutineGenerator("OpenAI", provider.URL+"/v1", provider.URL+"/v1")
	routines.SetCredentialSource(func(string) string { return "" })

	engine := SetupRouter("test-session-secret", dbPath, routines)

	return &e2eSuite{
		handler:       engine,
		public:        newLocalClient(engine, false),
		member:        newLocalClient(engine, true),
		baseURL:       "http://example.test",
		dbPath:        dbPath,
		providerCalls: calls,
	}
}

func (s *e2eSuite) testPublicEndpoints(t *testing.T) {
	resp := s.mustRequest(t, s.public, http.MethodGet, "/healthz", nil, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, `"status":"ok"`) {
		t.Fatalf("healthz: unexpected body %q", body)
	}

	resp = s.mustRequest(t, s.public, http.MethodGet, "/api/providers", nil, nil)
	defer resp.Body.Close()
	var providers struct {
		Providers []string `json:"providers"`
	}
	decodeJSON(t, resp, &providers)
	if strings.Join(providers.Providers, ",") != "Anthropic,OpenAI" {
		t.Fatalf("unexpected providers %v", providers.Providers)
	}

	for _, path := range []string{"/api/profile", "/api/routine/generate"} {
		method := http.MethodGet
		if strings.HasSuffix(path, "generate") {
			method = http.MethodPost
		}
		resp := s.mustRequest(t, s.public, method, path, nil, nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401 without session, got %d", path, resp.StatusCode)
		}
	}
}

func (s *e2eSuite) testAccountFlow(t *testing.T) {
	credentials := map[string]interface{}{"username": "e2e-lifter", "password": "e2e-secret"}

	resp := s.mustRequestJSON(t, s.public, http.MethodPost, "/api/auth/register", credentials)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register expected 201, got %d", resp.StatusCode)
	}

	resp = s.mustRequestJSON(t, s.public, http.MethodPost, "/api/auth/register", credentials)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register expected 409, got %d", resp.StatusCode)
	}

	resp = s.mustRequestJSON(t, s.member, http.MethodPost, "/api/auth/login", map[string]interface{}{"username": "e2e-lifter", "password": "wrong"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password expected 401, got %d", resp.StatusCode)
	}

	resp = s.mustRequestJSON(t, s.member, http.MethodPost, "/api/auth/login", credentials)
	var login struct {
		UserID uint `json:"userId"`
	}
	decodeJSON(t, resp, &login)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || login.UserID == 0 {
		t.Fatalf("login failed, status %d user %d", resp.StatusCode, login.UserID)
	}

	resp = s.mustRequest(t, s.member, http.MethodGet, "/api/profile", nil, nil)
	if body := readBody(t, resp); !strings.Contains(body, `"profile":null`) {
		t.Fatalf("expected empty profile, got %s", body)
	}
	resp.Body.Close()

	resp = s.mustRequestJSON(t, s.member, http.MethodPut, "/api/profile", map[string]interface{}{
		"age": 34, "weight": 77.5, "height": 172, "level": "Regular", "tenure": "18 months",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save profile expected 200, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.member, http.MethodGet, "/api/profile", nil, nil)
	var profile struct {
		Profile struct {
			Age    int     `json:"age"`
			Weight float64 `json:"weight"`
			Level  string  `json:"level"`
		} `json:"profile"`
	}
	decodeJSON(t, resp, &profile)
	resp.Body.Close()
	if profile.Profile.Age != 34 || profile.Profile.Weight != 77.5 || profile.Profile.Level != "Regular" {
		t.Fatalf("unexpected profile %+v", profile.Profile)
	}
}

func (s *e2eSuite) testRoutineGeneration(t *testing.T) {
	payload := map[string]interface{}{
		"age": 34, "weight": 77.5, "height": 172, "level": "Regular", "tenure": "18 months",
		"model_provider": "OpenAI",
	}

	before := s.providerCalls.Load()
	resp := s.mustRequestJSON(t, s.member, http.MethodPost, "/api/routine/generate", payload)
	body := readBody(t, resp)
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError || !strings.Contains(body, "Check your API key") {
		t.Fatalf("expected soft failure without key, got %d %s", resp.StatusCode, body)
	}
	if s.providerCalls.Load() != before {
		t.Fatal("provider must not be called without a credential")
	}

	payload["api_key"] = "bad-key"
	resp = s.mustRequestJSON(t, s.member, http.MethodPost, "/api/routine/generate", payload)
	body = readBody(t, resp)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway || !strings.Contains(body, "Incorrect API key provided") {
		t.Fatalf("expected provider error to surface, got %d %s", resp.StatusCode, body)
	}

	payload["api_key"] = "e2e-key"
	resp = s.mustRequestJSON(t, s.member, http.MethodPost, "/api/routine/generate?format=html", payload)
	var result struct {
		RequestID string                `json:"requestId"`
		Routine   service.WeeklyRoutine `json:"routine"`
		HTML      string                `json:"html"`
	}
	decodeJSON(t, resp, &result)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate expected 200, got %d", resp.StatusCode)
	}
	if result.RequestID == "" {
		t.Fatal("expected request id")
	}
	if len(result.Routine.Days) != service.WeeklyDays {
		t.Fatalf("expected %d days, got %d", service.WeeklyDays, len(result.Routine.Days))
	}
	for _, day := range result.Routine.Days {
		if len(day.Exercises) == 0 {
			t.Fatalf("day %q has no exercises", day.Day)
		}
	}
	if !strings.Contains(result.HTML, "Kettlebell Swing") {
		t.Fatalf("expected rendered html to include exercise, got %s", result.HTML)
	}

	payload["model_provider"] = "Gemini"
	resp = s.mustRequestJSON(t, s.member, http.MethodPost, "/api/routine/generate", payload)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown provider expected 400, got %d", resp.StatusCode)
	}

	resp = s.mustRequest(t, s.member, http.MethodPost, "/api/auth/logout", nil, nil)
	resp.Body.Close()
	resp = s.mustRequestJSON(t, s.member, http.MethodPost, "/api/routine/generate", payload)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func (s *e2eSuite) mustRequest(t *testing.T, client httpClient, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.baseURL+path, body)
	if err != nil {
		t.Fatalf("failed to build request %s %s: %v", method, path, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) mustRequestJSON(t *testing.T, client httpClient, method, path string, payload map[string]interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	headers := map[string]string{"Content-Type": "application/json"}
	return s.mustRequest(t, client, method, path, bytes.NewReader(data), headers)
}

func decodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	body := readBody(t, resp)
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		t.Fatalf("failed to decode json: %v\nbody=%s", err, body)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(data)
}
