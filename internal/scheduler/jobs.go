package scheduler

import (
	"log"

	"counseling-ai-backend/internal/services"
)

// BacklogJob 是一個排程任務，用於分析尚無評估結果的影片
type BacklogJob struct {
	analyzeService *services.AnalyzeService
}

// NewBacklogJob 建立一個 BacklogJob
func NewBacklogJob(as *services.AnalyzeService) *BacklogJob {
	return &BacklogJob{analyzeService: as}
}

// Run 實現 cron.Job 介面 (github.com/robfig/cron/v3)
func (j *BacklogJob) Run() {
	log.Println("資訊：執行排程任務 - 未分析影片掃描...")
	if err := j.analyzeService.ExecuteAnalysisBacklog(); err != nil {
		log.Printf("錯誤：未分析影片掃描排程任務執行失敗: %v", err)
	} else {
		log.Println("資訊：未分析影片掃描排程任務執行完成。")
	}
}

// CleanupJob 是一個排程任務，用於清除過期的分析任務記錄
type CleanupJob struct {
	analyzeService *services.AnalyzeService
}

// NewCleanupJob 建立一個 CleanupJob
func NewCleanupJob(as *services.AnalyzeService) *CleanupJob {
	return &CleanupJob{analyzeService: as}
}

// Run 實現 cron.Job 介面
func (j *CleanupJob) Run() {
	if err := j.analyzeService.CleanupTasks(); err != nil {
		log.Printf("錯誤：任務清理排程任務執行失敗: %v", err)
	}
}
