package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"counseling-ai-backend/internal/config"
	"counseling-ai-backend/internal/models"
)

// PostgresStore 封裝 assessments 資料表的存取 (Supabase 後端即 PostgreSQL)。
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 建立連線池並驗證連線。
func NewPostgresStore(dbCfg config.DatabaseConfig) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbCfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("建立資料庫連線池失敗: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("無法連線到資料庫 (ping 失敗): %w", err)
	}
	log.Println("資訊：成功連線到 PostgreSQL 資料庫。")
	return &PostgresStore{pool: pool}, nil
}

// Close 關閉連線池。
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		log.Println("資訊：正在關閉 PostgreSQL 資料庫連線...")
		s.pool.Close()
	}
	return nil
}

// Ping 供 /healthz 檢查資料庫連線。
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// SaveAssessment 以 (staff, filename) 為鍵 upsert 評估結果（重新分析即覆寫）。
func (s *PostgresStore) SaveAssessment(ctx context.Context, a *models.Assessment) error {
	if a == nil || a.Staff == "" || a.Filename == "" {
		return fmt.Errorf("無效的評估結果或 staff/filename 為空")
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := a.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	toNullString := func(jns *models.JsonNullString) sql.NullString {
		if jns != nil {
			return jns.NullString
		}
		return sql.NullString{}
	}

	query := `
		INSERT INTO assessments (
			staff, filename, transcript, model, analysis, error_message,
			prompt_version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (staff, filename) DO UPDATE SET
			transcript = EXCLUDED.transcript,
			model = EXCLUDED.model,
			analysis = EXCLUDED.analysis,
			error_message = EXCLUDED.error_message,
			prompt_version = EXCLUDED.prompt_version,
			updated_at = EXCLUDED.updated_at;`

	_, err := s.pool.Exec(ctx, query,
		a.Staff,
		a.Filename,
		toNullString(a.Transcript),
		a.Model,
		a.Analysis,
		toNullString(a.ErrorMessage),
		nullIfEmpty(a.PromptVersion),
		createdAt,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("儲存評估結果到資料庫失敗 (%s/%s): %w", a.Staff, a.Filename, err)
	}
	log.Printf("資訊：評估結果成功儲存到資料庫 (%s/%s, 模型: %s)\n", a.Staff, a.Filename, a.Model)
	return nil
}

// GetAssessment 查詢單筆評估結果，不存在時回傳 (nil, nil)。
func (s *PostgresStore) GetAssessment(ctx context.Context, staff, filename string) (*models.Assessment, error) {
	if staff == "" || filename == "" {
		return nil, fmt.Errorf("staff 和 filename 不得為空")
	}
	query := `
		SELECT id, staff, filename, transcript, model, analysis, error_message,
		       prompt_version, created_at, updated_at
		FROM assessments
		WHERE staff = $1 AND filename = $2;`

	a, err := scanAssessment(s.pool.QueryRow(ctx, query, staff, filename))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查詢評估結果失敗 (%s/%s): %w", staff, filename, err)
	}
	return a, nil
}

// HasAssessment 檢查 (staff, filename) 是否已有評估結果。
func (s *PostgresStore) HasAssessment(ctx context.Context, staff, filename string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM assessments WHERE staff = $1 AND filename = $2);`
	if err := s.pool.QueryRow(ctx, query, staff, filename).Scan(&exists); err != nil {
		return false, fmt.Errorf("檢查評估結果是否存在失敗 (%s/%s): %w", staff, filename, err)
	}
	return exists, nil
}

// ListAssessments 回傳指定 staff 的所有評估結果，新者在前。
func (s *PostgresStore) ListAssessments(ctx context.Context, staff string) ([]models.Assessment, error) {
	if staff == "" {
		return nil, fmt.Errorf("staff 不得為空")
	}
	query := `
		SELECT id, staff, filename, transcript, model, analysis, error_message,
		       prompt_version, created_at, updated_at
		FROM assessments
		WHERE staff = $1
		ORDER BY updated_at DESC;`

	rows, err := s.pool.Query(ctx, query, staff)
	if err != nil {
		return nil, fmt.Errorf("查詢 staff '%s' 的評估結果失敗: %w", staff, err)
	}
	defer rows.Close()

	var assessments []models.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			log.Printf("錯誤：掃描評估結果查詢行失敗: %v", err)
			continue
		}
		assessments = append(assessments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("處理評估結果查詢結果集時發生錯誤: %w", err)
	}
	log.Printf("資訊：查詢到 staff '%s' 的 %d 筆評估結果。\n", staff, len(assessments))
	return assessments, nil
}

// DeleteAssessment 刪除評估結果。對應影片被刪除時呼叫；不存在不視為錯誤。
func (s *PostgresStore) DeleteAssessment(ctx context.Context, staff, filename string) error {
	query := `DELETE FROM assessments WHERE staff = $1 AND filename = $2;`
	tag, err := s.pool.Exec(ctx, query, staff, filename)
	if err != nil {
		return fmt.Errorf("刪除評估結果失敗 (%s/%s): %w", staff, filename, err)
	}
	if tag.RowsAffected() > 0 {
		log.Printf("資訊：已刪除評估結果 (%s/%s)。\n", staff, filename)
	}
	return nil
}

func scanAssessment(row pgx.Row) (*models.Assessment, error) {
	var a models.Assessment
	var transcript, errorMessage, promptVersion sql.NullString
	err := row.Scan(
		&a.ID, &a.Staff, &a.Filename, &transcript, &a.Model, &a.Analysis,
		&errorMessage, &promptVersion, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if transcript.Valid {
		a.Transcript = &models.JsonNullString{NullString: transcript}
	}
	if errorMessage.Valid {
		a.ErrorMessage = &models.JsonNullString{NullString: errorMessage}
	}
	a.PromptVersion = promptVersion.String
	return &a, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
