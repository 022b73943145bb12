package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AnalysisHandler 負責查詢單筆評估結果 (GET /analysis/{staff}/{filename})。
type AnalysisHandler struct {
	db DBStore
}

// NewAnalysisHandler 建立一個 AnalysisHandler 實例。
func NewAnalysisHandler(db DBStore) *AnalysisHandler {
	if db == nil {
		log.Panicln("AnalysisHandler：DBStore 不得為空")
	}
	return &AnalysisHandler{db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	filename := chi.URLParam(r, "filename")
	if staff == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "staff and filename are required")
		return
	}

	assessment, err := h.db.GetAssessment(r.Context(), staff, filename)
	if err != nil {
		log.Printf("錯誤：[AnalysisHandler] 查詢 %s/%s 的評估結果失敗: %v\n", staff, filename, err)
		writeError(w, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	if assessment == nil {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}
