package services

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"counseling-ai-backend/internal/models"
)

// TaskRegistry 是分析任務的記憶體註冊表，以 staff/filename 為鍵。
// 前端以固定間隔輪詢任務狀態，讀到的是 mutex 保護下的快照。
// 已結束的任務保留一段時間後由清理任務移除。
type TaskRegistry struct {
	mu        sync.Mutex
	tasks     map[string]*models.AnalysisTask
	retention time.Duration
}

// NewTaskRegistry 建立 TaskRegistry 實例。
func NewTaskRegistry(retention time.Duration) *TaskRegistry {
	if retention <= 0 {
		retention = 30 * time.Minute
	}
	return &TaskRegistry{
		tasks:     make(map[string]*models.AnalysisTask),
		retention: retention,
	}
}

func taskKey(staff, filename string) string {
	return staff + "/" + filename
}

// Begin 為 (staff, filename) 建立一個 pending 任務。
// 若同鍵任務仍在執行中則不建立，回傳現有任務快照與 false。
func (r *TaskRegistry) Begin(staff, filename string) (models.AnalysisTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := taskKey(staff, filename)
	if existing, ok := r.tasks[key]; ok && !existing.Status.Finished() {
		return *existing, false
	}

	now := time.Now()
	task := &models.AnalysisTask{
		ID:        uuid.New().String(),
		Staff:     staff,
		Filename:  filename,
		Status:    models.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.tasks[key] = task
	return *task, true
}

// Get 回傳任務快照，不存在時回傳 false。
func (r *TaskRegistry) Get(staff, filename string) (models.AnalysisTask, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskKey(staff, filename)]
	if !ok {
		return models.AnalysisTask{}, false
	}
	return *task, true
}

// MarkProcessing 將任務標記為執行中。
func (r *TaskRegistry) MarkProcessing(staff, filename string) {
	r.setStatus(staff, filename, models.TaskProcessing, "")
}

// MarkCompleted 將任務標記為完成。
func (r *TaskRegistry) MarkCompleted(staff, filename string) {
	r.setStatus(staff, filename, models.TaskCompleted, "")
}

// MarkFailed 將任務標記為失敗並記錄錯誤訊息。
func (r *TaskRegistry) MarkFailed(staff, filename string, errMsg string) {
	r.setStatus(staff, filename, models.TaskFailed, errMsg)
}

func (r *TaskRegistry) setStatus(staff, filename string, status models.TaskStatus, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[taskKey(staff, filename)]
	if !ok {
		log.Printf("警告：[TaskRegistry] 嘗試更新不存在的任務狀態 (%s/%s -> %s)\n", staff, filename, status)
		return
	}
	task.Status = status
	task.Error = errMsg
	task.UpdatedAt = time.Now()
}

// Cleanup 移除已結束且超過保留期限的任務，回傳移除數量。
func (r *TaskRegistry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.retention)
	var removed int
	for key, task := range r.tasks {
		if task.Status.Finished() && task.UpdatedAt.Before(cutoff) {
			delete(r.tasks, key)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("資訊：[TaskRegistry] 已清除 %d 個過期任務。\n", removed)
	}
	return removed
}
