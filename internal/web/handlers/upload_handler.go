package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"counseling-ai-backend/internal/config"
)

// UploadHandler 負責處理影片上傳 (POST /upload/{staff})。
// 儲存名稱為 {UTC時間戳}_{原始檔名}，避免同名覆蓋並保留上傳順序。
type UploadHandler struct {
	storage     VideoStorage
	maxSize     int64
	allowedExts map[string]bool
}

// NewUploadHandler 建立一個 UploadHandler 實例。
func NewUploadHandler(storage VideoStorage, uploadCfg config.UploadConfig) *UploadHandler {
	if storage == nil {
		log.Panicln("UploadHandler：VideoStorage 不得為空")
	}
	allowed := make(map[string]bool)
	for _, ext := range uploadCfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	maxSize := uploadCfg.MaxSizeMB * 1024 * 1024
	if maxSize <= 0 {
		maxSize = 500 * 1024 * 1024
	}
	return &UploadHandler{
		storage:     storage,
		maxSize:     maxSize,
		allowedExts: allowed,
	}
}

// ServeHTTP 實現 http.Handler 介面
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	staff := chi.URLParam(r, "staff")
	log.Printf("資訊：[UploadHandler] 收到上傳請求 (staff: %s) 來自 %s\n", staff, r.RemoteAddr)
	if staff == "" {
		writeError(w, http.StatusBadRequest, "staff is required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Printf("警告：[UploadHandler] 解析 multipart 表單失敗 (staff: %s): %v\n", staff, err)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("file too large (limit: %d MB)", h.maxSize/(1024*1024)))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "form field 'file' is required")
		return
	}
	defer file.Close()

	originalName := sanitizeFilename(header.Filename)
	ext := strings.ToLower(filepath.Ext(originalName))
	if !h.allowedExts[ext] {
		log.Printf("警告：[UploadHandler] 拒絕不支援的副檔名 '%s' (staff: %s)\n", ext, staff)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", ext))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = "video/mp4"
	}

	stored := storedName(originalName, time.Now().UTC())
	publicURL, err := h.storage.Upload(staff, stored, file, contentType)
	if err != nil {
		log.Printf("錯誤：[UploadHandler] 上傳影片 %s/%s 失敗: %v\n", staff, stored, err)
		writeError(w, http.StatusBadGateway, "failed to store file")
		return
	}

	log.Printf("資訊：[UploadHandler] 影片上傳成功 (%s/%s, %d bytes)\n", staff, stored, header.Size)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Upload successful",
		"filename":   originalName,
		"stored_as":  stored,
		"public_url": publicURL,
	})
}

// storedName 產生桶內儲存名稱：{YYYYMMDD-HHMMSS}_{原始檔名}。
func storedName(originalName string, now time.Time) string {
	return now.Format("20060102-150405") + "_" + originalName
}

// sanitizeFilename 去除路徑成分並將路徑分隔符與空白替換為安全字元。
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == ".." || base == "/" {
		return "unnamed"
	}
	return base
}
