package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// writeJSON 以指定狀態碼輸出 JSON 回應。
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("錯誤：寫入 JSON 回應失敗: %v", err)
	}
}

// writeError 輸出統一格式的錯誤回應 {"error": "..."}，供前端顯示訊息橫幅。
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
