package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"counseling-ai-backend/internal/models"
)

// ResultsHandler 負責列出 staff 的所有評估結果 (GET /results/{staff})。
type ResultsHandler struct {
	db DBStore
}

// NewResultsHandler 建立一個 ResultsHandler 實例。
func NewResultsHandler(db DBStore) *ResultsHandler {
	if db == nil {
		log.Panicln("ResultsHandler：DBStore 不得為空")
	}
	return &ResultsHandler{db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	if staff == "" {
		writeError(w, http.StatusBadRequest, "staff is required")
		return
	}

	assessments, err := h.db.ListAssessments(r.Context(), staff)
	if err != nil {
		log.Printf("錯誤：[ResultsHandler] 查詢 staff '%s' 的評估結果失敗: %v\n", staff, err)
		writeError(w, http.StatusInternalServerError, "failed to load results")
		return
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"staff":   staff,
		"results": assessments,
		"count":   len(assessments),
	})
}
