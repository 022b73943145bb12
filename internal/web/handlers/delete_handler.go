package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// DeleteHandler 負責刪除影片 (DELETE /delete/{staff}/{filename})。
// 影片物件與對應的評估結果一併刪除。
type DeleteHandler struct {
	storage VideoStorage
	db      DBStore
}

// NewDeleteHandler 建立一個 DeleteHandler 實例。
func NewDeleteHandler(storage VideoStorage, db DBStore) *DeleteHandler {
	if storage == nil || db == nil {
		log.Panicln("DeleteHandler：VideoStorage 和 DBStore 不得為空")
	}
	return &DeleteHandler{storage: storage, db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	filename := chi.URLParam(r, "filename")
	log.Printf("資訊：[DeleteHandler] 收到刪除請求 (%s/%s) 來自 %s\n", staff, filename, r.RemoteAddr)
	if staff == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "staff and filename are required")
		return
	}

	if err := h.storage.Delete(staff, filename); err != nil {
		log.Printf("錯誤：[DeleteHandler] 刪除影片 %s/%s 失敗: %v\n", staff, filename, err)
		writeError(w, http.StatusBadGateway, "failed to delete file")
		return
	}

	if err := h.db.DeleteAssessment(r.Context(), staff, filename); err != nil {
		// 影片已刪除；評估結果殘留只記錄警告，不回報失敗
		log.Printf("警告：[DeleteHandler] 刪除 %s/%s 的評估結果失敗: %v\n", staff, filename, err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Delete successful",
		"filename": filename,
	})
}
