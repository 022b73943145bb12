package handlers

import (
	"log"
	"net/http"
)

// HealthHandler 負責健康檢查 (GET /healthz)。
type HealthHandler struct {
	db DBStore
}

// NewHealthHandler 建立一個 HealthHandler 實例。
func NewHealthHandler(db DBStore) *HealthHandler {
	if db == nil {
		log.Panicln("HealthHandler：DBStore 不得為空")
	}
	return &HealthHandler{db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		log.Printf("錯誤：[HealthHandler] 資料庫 ping 失敗: %v\n", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
