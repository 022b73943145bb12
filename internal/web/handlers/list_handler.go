package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListHandler 負責列出 staff 的影片 (GET /list/{staff})，
// 附帶簽名播放 URL 與是否已有評估結果。
type ListHandler struct {
	storage VideoStorage
	db      DBStore
}

// NewListHandler 建立一個 ListHandler 實例。
func NewListHandler(storage VideoStorage, db DBStore) *ListHandler {
	if storage == nil || db == nil {
		log.Panicln("ListHandler：VideoStorage 和 DBStore 不得為空")
	}
	return &ListHandler{storage: storage, db: db}
}

// ServeHTTP 實現 http.Handler 介面
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	if staff == "" {
		writeError(w, http.StatusBadRequest, "staff is required")
		return
	}

	objects, err := h.storage.List(staff)
	if err != nil {
		log.Printf("錯誤：[ListHandler] 列出 staff '%s' 的影片失敗: %v\n", staff, err)
		writeError(w, http.StatusBadGateway, "failed to list videos")
		return
	}

	for i := range objects {
		signedURL, err := h.storage.SignedURL(staff, objects[i].Filename)
		if err != nil {
			log.Printf("警告：[ListHandler] 產生 %s/%s 的簽名 URL 失敗: %v\n", staff, objects[i].Filename, err)
		} else {
			objects[i].SignedURL = signedURL
		}
		exists, err := h.db.HasAssessment(r.Context(), staff, objects[i].Filename)
		if err != nil {
			log.Printf("警告：[ListHandler] 檢查 %s/%s 的評估結果失敗: %v\n", staff, objects[i].Filename, err)
			continue
		}
		objects[i].HasAssessment = exists
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"staff": staff,
		"files": objects,
		"count": len(objects),
	})
}
