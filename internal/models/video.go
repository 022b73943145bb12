package models

// VideoObject 是儲存桶中一個影片物件的列表項目。
// 時間戳為儲存桶列表 API 回傳的原始字串。
type VideoObject struct {
	Filename      string `json:"filename"`
	Size          int64  `json:"size"`
	ContentType   string `json:"content_type,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	SignedURL     string `json:"signed_url,omitempty"`
	HasAssessment bool   `json:"has_assessment"`
}
