package handlers

import (
	"context"
	"io"

	"counseling-ai-backend/internal/models"
)

// DBStore 定義了應用程式需要的資料庫操作介面
type DBStore interface {
	SaveAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessment(ctx context.Context, staff, filename string) (*models.Assessment, error)
	HasAssessment(ctx context.Context, staff, filename string) (bool, error)
	ListAssessments(ctx context.Context, staff string) ([]models.Assessment, error)
	DeleteAssessment(ctx context.Context, staff, filename string) error
	Ping(ctx context.Context) error
	Close() error
}

// VideoStorage 定義了 HTTP 層需要的儲存桶操作介面
type VideoStorage interface {
	Upload(staff, storedName string, data io.Reader, contentType string) (string, error)
	List(staff string) ([]models.VideoObject, error)
	SignedURL(staff, filename string) (string, error)
	PublicURL(staff, filename string) string
	Delete(staff, filename string) error
}
