package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"counseling-ai-backend/internal/models"
)

// AnalysisStarter 定義了分析任務啟動者需要的方法
type AnalysisStarter interface {
	StartAnalysis(staff, filename string) (models.AnalysisTask, bool)
}

// AnalyzeHandler 負責觸發影片分析 (POST /analyze/{staff}/{filename}?force=)。
// 已有評估結果且未指定 force 時直接回傳既有結果；
// 同鍵任務執行中時回傳 409。
type AnalyzeHandler struct {
	starter AnalysisStarter
	db      DBStore
}

// NewAnalyzeHandler 建立一個 AnalyzeHandler 實例。
func NewAnalyzeHandler(starter AnalysisStarter, db DBStore) *AnalyzeHandler {
	if starter == nil || db == nil {
		log.Panicln("AnalyzeHandler：AnalysisStarter 和 DBStore 不得為空")
	}
	return &AnalyzeHandler{starter: starter, db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	filename := chi.URLParam(r, "filename")
	log.Printf("資訊：[AnalyzeHandler] 收到分析請求 (%s/%s) 來自 %s\n", staff, filename, r.RemoteAddr)
	if staff == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "staff and filename are required")
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	if !force {
		existing, err := h.db.GetAssessment(r.Context(), staff, filename)
		if err != nil {
			log.Printf("錯誤：[AnalyzeHandler] 查詢 %s/%s 的既有評估結果失敗: %v\n", staff, filename, err)
			writeError(w, http.StatusInternalServerError, "failed to check existing analysis")
			return
		}
		if existing != nil {
			log.Printf("資訊：[AnalyzeHandler] %s/%s 已有評估結果，未指定 force，直接回傳。\n", staff, filename)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"message":      "analysis already exists",
				"task_started": false,
				"analysis":     existing,
			})
			return
		}
	}

	task, started := h.starter.StartAnalysis(staff, filename)
	if !started {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error": "analysis task already running",
			"task":  task,
		})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":      "analysis started",
		"task_started": true,
		"task":         task,
	})
}
