package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"counseling-ai-backend/internal/config"
	"counseling-ai-backend/internal/models"
	"counseling-ai-backend/internal/web/handlers" // 為了 DBStore 介面
)

// 單段逐字稿送入 GPT 評分的長度上限（rune 數）。
// 超過時切段分析，再以合併 Prompt 整合。
const maxChunkRunes = 6000

// analysisTimeout 涵蓋下載、轉錄與評分的單任務時間上限。
const analysisTimeout = 20 * time.Minute

// AnalyzeService 負責諮商影片的完整分析流程：
// 下載 → Whisper 轉錄 → 切段 GPT 評分 → 合併 → 入庫。
type AnalyzeService struct {
	cfg     *config.Config
	db      handlers.DBStore
	storage VideoStorage
	ai      AIClient
	prompts PromptSource
	tasks   *TaskRegistry
}

// NewAnalyzeService 建立 AnalyzeService 實例。
func NewAnalyzeService(
	cfg *config.Config,
	db handlers.DBStore,
	storage VideoStorage,
	ai AIClient,
	prompts PromptSource,
	tasks *TaskRegistry,
) (*AnalyzeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("AnalyzeService：設定不得為空")
	}
	if db == nil {
		return nil, fmt.Errorf("AnalyzeService：DBStore 不得為空")
	}
	if storage == nil {
		return nil, fmt.Errorf("AnalyzeService：VideoStorage 不得為空")
	}
	if ai == nil {
		return nil, fmt.Errorf("AnalyzeService：AIClient 不得為空")
	}
	if prompts == nil {
		return nil, fmt.Errorf("AnalyzeService：PromptSource 不得為空")
	}
	if tasks == nil {
		return nil, fmt.Errorf("AnalyzeService：TaskRegistry 不得為空")
	}
	log.Println("資訊：AnalyzeService 初始化完成。")
	return &AnalyzeService{
		cfg:     cfg,
		db:      db,
		storage: storage,
		ai:      ai,
		prompts: prompts,
		tasks:   tasks,
	}, nil
}

// StartAnalysis 為 (staff, filename) 啟動一個背景分析任務。
// 同鍵任務執行中時不重複啟動，回傳現有任務與 false。
func (s *AnalyzeService) StartAnalysis(staff, filename string) (models.AnalysisTask, bool) {
	task, created := s.tasks.Begin(staff, filename)
	if !created {
		log.Printf("警告：[AnalyzeService] 影片 %s/%s 的分析任務已在進行中 (狀態: %s)。\n", staff, filename, task.Status)
		return task, false
	}
	log.Printf("資訊：[AnalyzeService] 已建立分析任務 %s (%s/%s)，準備於背景執行。\n", task.ID, staff, filename)
	go s.runAnalysis(staff, filename)
	return task, true
}

// GetTask 回傳任務快照，供 /task-status 輪詢。
func (s *AnalyzeService) GetTask(staff, filename string) (models.AnalysisTask, bool) {
	return s.tasks.Get(staff, filename)
}

// runAnalysis 執行單支影片的完整分析並更新任務狀態。
func (s *AnalyzeService) runAnalysis(staff, filename string) {
	s.tasks.MarkProcessing(staff, filename)

	ctx, cancel := context.WithTimeout(context.Background(), analysisTimeout)
	defer cancel()

	assessment, err := s.analyze(ctx, staff, filename)
	if err != nil {
		log.Printf("錯誤：[AnalyzeService] 影片 %s/%s 分析失敗: %v\n", staff, filename, err)
		s.tasks.MarkFailed(staff, filename, err.Error())
		return
	}
	if err := s.db.SaveAssessment(ctx, assessment); err != nil {
		log.Printf("錯誤：[AnalyzeService] 儲存影片 %s/%s 的評估結果失敗: %v\n", staff, filename, err)
		s.tasks.MarkFailed(staff, filename, "儲存評估結果失敗: "+err.Error())
		return
	}
	s.tasks.MarkCompleted(staff, filename)
	log.Printf("資訊：[AnalyzeService] 影片 %s/%s 分析完成。\n", staff, filename)
}

// analyze 下載影片、轉錄並評分，回傳待入庫的評估結果。
func (s *AnalyzeService) analyze(ctx context.Context, staff, filename string) (*models.Assessment, error) {
	data, err := s.storage.Download(staff, filename)
	if err != nil {
		return nil, fmt.Errorf("下載影片失敗: %w", err)
	}

	// Whisper API 需要實體檔案路徑，先落地為暫存檔
	tmpFile, err := os.CreateTemp("", "counseling-*"+filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("建立暫存檔失敗: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("寫入暫存檔 '%s' 失敗: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("關閉暫存檔 '%s' 失敗: %w", tmpPath, err)
	}

	transcript, err := s.ai.Transcribe(ctx, tmpPath)
	if err != nil {
		return nil, fmt.Errorf("轉錄失敗: %w", err)
	}

	analyzePrompt := s.prompts.AnalyzePrompt()
	if strings.TrimSpace(analyzePrompt) == "" {
		return nil, fmt.Errorf("分析系統 Prompt 為空，請確認 Prompt 檔案存在")
	}

	chunks := splitTranscript(transcript, maxChunkRunes)
	log.Printf("資訊：[AnalyzeService] 影片 %s/%s 逐字稿切為 %d 段進行評分。\n", staff, filename, len(chunks))

	partials := make([]json.RawMessage, 0, len(chunks))
	for i, chunk := range chunks {
		partial, err := s.ai.AnalyzeTranscript(ctx, analyzePrompt, chunk)
		if err != nil {
			return nil, fmt.Errorf("第 %d/%d 段評分失敗: %w", i+1, len(chunks), err)
		}
		partials = append(partials, partial)
	}

	merged := partials[0]
	if len(partials) > 1 {
		mergePrompt := s.prompts.MergePrompt()
		if strings.TrimSpace(mergePrompt) == "" {
			return nil, fmt.Errorf("合併系統 Prompt 為空，請確認 Prompt 檔案存在")
		}
		merged, err = s.ai.MergeAnalyses(ctx, mergePrompt, partials)
		if err != nil {
			return nil, fmt.Errorf("合併 %d 段評分失敗: %w", len(partials), err)
		}
	}

	now := time.Now()
	return &models.Assessment{
		Staff:         staff,
		Filename:      filename,
		Transcript:    models.NullStringFrom(transcript),
		Model:         s.ai.ChatModel(),
		Analysis:      merged,
		PromptVersion: s.prompts.Version(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// ExecuteAnalysisBacklog 掃描所有 staff 命名空間，
// 對沒有評估結果的影片依序執行分析（排程任務用）。
func (s *AnalyzeService) ExecuteAnalysisBacklog() error {
	log.Println("資訊：[AnalyzeService-Backlog] 開始掃描未分析影片...")
	staffs, err := s.storage.ListStaff()
	if err != nil {
		log.Printf("錯誤：[AnalyzeService-Backlog] 列出 staff 命名空間失敗: %v", err)
		return err
	}

	var successCount, failCount int
	for _, staff := range staffs {
		videos, err := s.storage.List(staff)
		if err != nil {
			log.Printf("錯誤：[AnalyzeService-Backlog] 列出 staff '%s' 的影片失敗: %v", staff, err)
			failCount++
			continue
		}
		for _, v := range videos {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			exists, err := s.db.HasAssessment(ctx, staff, v.Filename)
			cancel()
			if err != nil {
				log.Printf("錯誤：[AnalyzeService-Backlog] 檢查 %s/%s 的評估結果失敗: %v", staff, v.Filename, err)
				failCount++
				continue
			}
			if exists {
				continue
			}
			if _, created := s.tasks.Begin(staff, v.Filename); !created {
				log.Printf("資訊：[AnalyzeService-Backlog] %s/%s 已有任務在執行中，跳過。\n", staff, v.Filename)
				continue
			}
			log.Printf("資訊：[AnalyzeService-Backlog] 開始分析 %s/%s ...\n", staff, v.Filename)
			s.runAnalysis(staff, v.Filename)
			if task, ok := s.tasks.Get(staff, v.Filename); ok && task.Status == models.TaskCompleted {
				successCount++
			} else {
				failCount++
			}
		}
	}
	log.Printf("資訊：[AnalyzeService-Backlog] 掃描完成。成功: %d, 失敗: %d\n", successCount, failCount)
	return nil
}

// CleanupTasks 清除過期任務（排程任務用）。
func (s *AnalyzeService) CleanupTasks() error {
	s.tasks.Cleanup()
	return nil
}

// splitTranscript 將逐字稿依句界切為不超過 maxRunes 的區段。
// 找不到句界時以 rune 為單位硬切，確保不會產生超長區段。
func splitTranscript(transcript string, maxRunes int) []string {
	runes := []rune(strings.TrimSpace(transcript))
	if len(runes) == 0 {
		return []string{""}
	}
	if len(runes) <= maxRunes {
		return []string{string(runes)}
	}

	isBoundary := func(r rune) bool {
		switch r {
		case '。', '．', '！', '？', '.', '!', '?', '\n':
			return true
		}
		return false
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + maxRunes
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}
		// 從區段尾端往回找最近的句界
		cut := end
		for cut > start && !isBoundary(runes[cut-1]) {
			cut--
		}
		if cut == start {
			cut = end
		}
		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = cut
	}
	return chunks
}
