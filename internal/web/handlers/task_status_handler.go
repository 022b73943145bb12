package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"counseling-ai-backend/internal/models"
)

// TaskSource 定義了任務狀態的查詢方式
type TaskSource interface {
	GetTask(staff, filename string) (models.AnalysisTask, bool)
}

// TaskStatusHandler 負責回報分析任務進度 (GET /task-status/{staff}/{filename})。
// 前端以固定間隔輪詢此端點直到任務結束。
type TaskStatusHandler struct {
	tasks TaskSource
}

// NewTaskStatusHandler 建立一個 TaskStatusHandler 實例。
func NewTaskStatusHandler(tasks TaskSource) *TaskStatusHandler {
	if tasks == nil {
		log.Panicln("TaskStatusHandler：TaskSource 不得為空")
	}
	return &TaskStatusHandler{tasks: tasks}
}

// ServeHTTP 實現 http.Handler 介面
func (h *TaskStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	filename := chi.URLParam(r, "filename")
	if staff == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "staff and filename are required")
		return
	}

	task, ok := h.tasks.GetTask(staff, filename)
	if !ok {
		writeError(w, http.StatusNotFound, "no analysis task found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}
