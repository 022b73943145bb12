package supabase

import (
	"fmt"
	"io"
	"log"
	"strings"

	storage_go "github.com/supabase-community/storage-go"

	"counseling-ai-backend/internal/config"
	"counseling-ai-backend/internal/models"
)

// Storage 封裝 Supabase Storage 桶的物件操作。
// 影片以 {staff}/{storedName} 為鍵，staff 子資料夾即員工命名空間。
type Storage struct {
	client     *storage_go.Client
	bucket     string
	expirySecs int
}

// NewStorage 建立 Supabase Storage 客戶端。
func NewStorage(cfg config.SupabaseConfig) (*Storage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("Supabase 設定中的 url 不得為空")
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("Supabase 設定中的 key 不得為空")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("Supabase 設定中的 bucket 不得為空")
	}

	baseURL := strings.TrimSuffix(cfg.URL, "/")
	if !strings.HasSuffix(baseURL, "/storage/v1") {
		baseURL += "/storage/v1"
	}
	client := storage_go.NewClient(baseURL, cfg.Key, nil)

	expiry := cfg.SignedURLExpirySecs
	if expiry <= 0 {
		expiry = 3600
	}
	log.Printf("資訊：[SupabaseStorage] 初始化成功 (bucket: %s, 簽名 URL 有效期: %d 秒)\n", cfg.Bucket, expiry)
	return &Storage{client: client, bucket: cfg.Bucket, expirySecs: expiry}, nil
}

// objectPath 組合並驗證物件路徑，拒絕空值與路徑遍歷。
func objectPath(staff, filename string) (string, error) {
	if staff == "" || filename == "" {
		return "", fmt.Errorf("staff 和 filename 不得為空")
	}
	for _, part := range []string{staff, filename} {
		if strings.Contains(part, "..") || strings.ContainsAny(part, "/\\") {
			return "", fmt.Errorf("無效的路徑片段: %q", part)
		}
	}
	return staff + "/" + filename, nil
}

// Upload 上傳影片並回傳公開 URL。同名物件允許覆寫。
func (s *Storage) Upload(staff, storedName string, data io.Reader, contentType string) (string, error) {
	path, err := objectPath(staff, storedName)
	if err != nil {
		return "", err
	}
	upsert := true
	opts := storage_go.FileOptions{Upsert: &upsert}
	if contentType != "" {
		opts.ContentType = &contentType
	}
	if _, err := s.client.UploadFile(s.bucket, path, data, opts); err != nil {
		return "", fmt.Errorf("上傳物件 '%s' 到桶 '%s' 失敗: %w", path, s.bucket, err)
	}
	log.Printf("資訊：[SupabaseStorage] 物件 '%s' 上傳成功。\n", path)
	return s.client.GetPublicUrl(s.bucket, path).SignedURL, nil
}

// List 列出指定 staff 底下的影片物件（不含子資料夾與占位檔）。
func (s *Storage) List(staff string) ([]models.VideoObject, error) {
	if staff == "" {
		return nil, fmt.Errorf("staff 不得為空")
	}
	files, err := s.client.ListFiles(s.bucket, staff, storage_go.FileSearchOptions{
		Limit: 1000,
		SortByOptions: storage_go.SortBy{
			Column: "created_at",
			Order:  "desc",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("列出 staff '%s' 的物件失敗: %w", staff, err)
	}

	var objects []models.VideoObject
	for _, f := range files {
		// 子資料夾項目沒有物件 Id，占位檔由 Supabase 自動產生
		if f.Id == "" || f.Name == ".emptyFolderPlaceholder" {
			continue
		}
		objects = append(objects, models.VideoObject{
			Filename:    f.Name,
			Size:        objectSize(f.Metadata),
			ContentType: objectMime(f.Metadata),
			CreatedAt:   f.CreatedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	log.Printf("資訊：[SupabaseStorage] staff '%s' 底下共 %d 個影片物件。\n", staff, len(objects))
	return objects, nil
}

// ListStaff 列出桶根目錄下的所有 staff 命名空間（即子資料夾）。
func (s *Storage) ListStaff() ([]string, error) {
	files, err := s.client.ListFiles(s.bucket, "", storage_go.FileSearchOptions{Limit: 1000})
	if err != nil {
		return nil, fmt.Errorf("列出桶根目錄失敗: %w", err)
	}
	var staffs []string
	for _, f := range files {
		if f.Id != "" {
			continue // 根目錄下的散檔不屬於任何 staff
		}
		if f.Name == ".emptyFolderPlaceholder" {
			continue
		}
		staffs = append(staffs, f.Name)
	}
	return staffs, nil
}

// SignedURL 產生時間限制的簽名播放 URL。
func (s *Storage) SignedURL(staff, filename string) (string, error) {
	path, err := objectPath(staff, filename)
	if err != nil {
		return "", err
	}
	resp, err := s.client.CreateSignedUrl(s.bucket, path, s.expirySecs)
	if err != nil {
		return "", fmt.Errorf("產生物件 '%s' 的簽名 URL 失敗: %w", path, err)
	}
	return resp.SignedURL, nil
}

// PublicURL 回傳物件的公開 URL（桶為 public 時可直接播放）。
func (s *Storage) PublicURL(staff, filename string) string {
	path, err := objectPath(staff, filename)
	if err != nil {
		return ""
	}
	return s.client.GetPublicUrl(s.bucket, path).SignedURL
}

// Delete 刪除影片物件。
func (s *Storage) Delete(staff, filename string) error {
	path, err := objectPath(staff, filename)
	if err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{path}); err != nil {
		return fmt.Errorf("刪除物件 '%s' 失敗: %w", path, err)
	}
	log.Printf("資訊：[SupabaseStorage] 物件 '%s' 刪除成功。\n", path)
	return nil
}

// Download 下載影片內容，供轉錄流程使用。
func (s *Storage) Download(staff, filename string) ([]byte, error) {
	path, err := objectPath(staff, filename)
	if err != nil {
		return nil, err
	}
	data, err := s.client.DownloadFile(s.bucket, path)
	if err != nil {
		return nil, fmt.Errorf("下載物件 '%s' 失敗: %w", path, err)
	}
	log.Printf("資訊：[SupabaseStorage] 物件 '%s' 下載成功 (%d bytes)。\n", path, len(data))
	return data, nil
}

// objectSize 從列表 API 的 metadata 取出物件大小。
func objectSize(metadata interface{}) int64 {
	m, ok := metadata.(map[string]interface{})
	if !ok {
		return 0
	}
	switch v := m["size"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}

// objectMime 從列表 API 的 metadata 取出 MIME 類型。
func objectMime(metadata interface{}) string {
	m, ok := metadata.(map[string]interface{})
	if !ok {
		return ""
	}
	mime, _ := m["mimetype"].(string)
	return mime
}
