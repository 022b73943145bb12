package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"counseling-ai-backend/internal/config"
	"counseling-ai-backend/internal/models"
	"counseling-ai-backend/internal/services"
)

// stubDB 與 stubStorage 只提供路由煙霧測試需要的最小行為。

type stubDB struct{}

func (stubDB) SaveAssessment(ctx context.Context, a *models.Assessment) error { return nil }
func (stubDB) GetAssessment(ctx context.Context, staff, filename string) (*models.Assessment, error) {
	return nil, nil
}
func (stubDB) HasAssessment(ctx context.Context, staff, filename string) (bool, error) {
	return false, nil
}
func (stubDB) ListAssessments(ctx context.Context, staff string) ([]models.Assessment, error) {
	return nil, nil
}
func (stubDB) DeleteAssessment(ctx context.Context, staff, filename string) error { return nil }
func (stubDB) Ping(ctx context.Context) error                                     { return nil }
func (stubDB) Close() error                                                       { return nil }

type stubStorage struct{}

func (stubStorage) Upload(staff, storedName string, data io.Reader, contentType string) (string, error) {
	return "", nil
}
func (stubStorage) List(staff string) ([]models.VideoObject, error)  { return nil, nil }
func (stubStorage) ListStaff() ([]string, error)                     { return nil, nil }
func (stubStorage) Download(staff, filename string) ([]byte, error)  { return nil, nil }
func (stubStorage) SignedURL(staff, filename string) (string, error) { return "", nil }
func (stubStorage) PublicURL(staff, filename string) string          { return "" }
func (stubStorage) Delete(staff, filename string) error              { return nil }

type stubAI struct{}

func (stubAI) Transcribe(ctx context.Context, mediaPath string) (string, error) { return "", nil }
func (stubAI) AnalyzeTranscript(ctx context.Context, systemPrompt, transcript string) (json.RawMessage, error) {
	return nil, nil
}
func (stubAI) MergeAnalyses(ctx context.Context, systemPrompt string, partials []json.RawMessage) (json.RawMessage, error) {
	return nil, nil
}
func (stubAI) ChatModel() string { return "stub" }

type stubPrompts struct{}

func (stubPrompts) AnalyzePrompt() string { return "prompt" }
func (stubPrompts) MergePrompt() string   { return "prompt" }
func (stubPrompts) Version() string       { return "v0" }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Supabase.SignedURLExpirySecs = 600
	cfg.Upload.AllowedExtensions = []string{".mp4"}
	cfg.Upload.MaxSizeMB = 1

	analyzeService, err := services.NewAnalyzeService(
		cfg, stubDB{}, stubStorage{}, stubAI{}, stubPrompts{},
		services.NewTaskRegistry(time.Minute),
	)
	if err != nil {
		t.Fatalf("NewAnalyzeService() error = %v", err)
	}
	return SetupRouter(cfg, stubDB{}, stubStorage{}, analyzeService)
}

func TestSetupRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/healthz", http.StatusOK},
		{"GET", "/list/alice", http.StatusOK},
		{"GET", "/results/alice", http.StatusOK},
		{"GET", "/analysis/alice/v.mp4", http.StatusNotFound},
		{"GET", "/task-status/alice/v.mp4", http.StatusNotFound},
		{"GET", "/signed-url/alice/v.mp4", http.StatusOK},
		{"DELETE", "/delete/alice/v.mp4", http.StatusOK},
		// 未註冊的路徑與方法
		{"GET", "/nope", http.StatusNotFound},
		{"PUT", "/list/alice", http.StatusMethodNotAllowed},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != c.want {
			t.Errorf("%s %s = %d, want %d", c.method, c.path, rec.Code, c.want)
		}
	}
}

func TestSetupRouterCORS(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/list/alice", nil)
	req.Header.Set("Origin", "https://frontend.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
