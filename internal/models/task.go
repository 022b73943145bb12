package models

import "time"

// TaskStatus 定義分析任務狀態
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"    // 任務已建立，等待執行
	TaskProcessing TaskStatus = "processing" // 轉錄/分析進行中
	TaskCompleted  TaskStatus = "completed"  // 分析完成，結果已入庫
	TaskFailed     TaskStatus = "failed"     // 任一階段失敗
)

// Finished 回報任務是否已結束（完成或失敗）。
func (s TaskStatus) Finished() bool {
	return s == TaskCompleted || s == TaskFailed
}

// AnalysisTask 是 /analyze 觸發的背景任務快照，
// 供前端以固定間隔輪詢 /task-status 使用。
type AnalysisTask struct {
	ID        string     `json:"task_id"`
	Staff     string     `json:"staff"`
	Filename  string     `json:"filename"`
	Status    TaskStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
