package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SignedURLHandler 負責產生時間限制的播放連結 (GET /signed-url/{staff}/{filename})。
type SignedURLHandler struct {
	storage    VideoStorage
	expirySecs int
}

// NewSignedURLHandler 建立一個 SignedURLHandler 實例。
func NewSignedURLHandler(storage VideoStorage, expirySecs int) *SignedURLHandler {
	if storage == nil {
		log.Panicln("SignedURLHandler：VideoStorage 不得為空")
	}
	if expirySecs <= 0 {
		expirySecs = 3600
	}
	return &SignedURLHandler{storage: storage, expirySecs: expirySecs}
}

// ServeHTTP 實現 http.Handler 介面
func (h *SignedURLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	filename := chi.URLParam(r, "filename")
	if staff == "" || filename == "" {
		writeError(w, http.StatusBadRequest, "staff and filename are required")
		return
	}

	signedURL, err := h.storage.SignedURL(staff, filename)
	if err != nil {
		log.Printf("錯誤：[SignedURLHandler] 產生 %s/%s 的簽名 URL 失敗: %v\n", staff, filename, err)
		writeError(w, http.StatusBadGateway, "failed to create signed url")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename":   filename,
		"signed_url": signedURL,
		"expires_in": h.expirySecs,
	})
}
