package services

import (
	"context"
	"encoding/json"

	"counseling-ai-backend/internal/models"
)

// VideoStorage 介面定義了分析流程需要的儲存桶操作
type VideoStorage interface {
	List(staff string) ([]models.VideoObject, error)
	ListStaff() ([]string, error)
	Download(staff, filename string) ([]byte, error)
}

// AIClient 介面定義了轉錄與評分操作
type AIClient interface {
	Transcribe(ctx context.Context, mediaPath string) (string, error)
	AnalyzeTranscript(ctx context.Context, systemPrompt, transcript string) (json.RawMessage, error)
	MergeAnalyses(ctx context.Context, systemPrompt string, partials []json.RawMessage) (json.RawMessage, error)
	ChatModel() string
}

// PromptSource 介面定義了系統 Prompt 的取得方式（實作支援熱更新）
type PromptSource interface {
	AnalyzePrompt() string
	MergePrompt() string
	Version() string
}
