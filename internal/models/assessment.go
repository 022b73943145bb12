package models

import (
	"encoding/json"
	"time"
)

// Assessment 對應 assessments 資料表，以 (staff, filename) 為唯一鍵。
// 重新分析時採 upsert（覆寫舊結果）。
type Assessment struct {
	ID            int64           `json:"-"`
	Staff         string          `json:"staff"`
	Filename      string          `json:"filename"`
	Transcript    *JsonNullString `json:"transcript,omitempty"`
	Model         string          `json:"model"`
	Analysis      json.RawMessage `json:"analysis,omitempty"`
	ErrorMessage  *JsonNullString `json:"error_message,omitempty"`
	PromptVersion string          `json:"prompt_version,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AnalysisPayload 是 GPT 評分回應的結構化內容，存入 assessments.analysis (JSONB)。
type AnalysisPayload struct {
	Summary        string         `json:"summary"`
	Strengths      []string       `json:"strengths"`
	Improvements   []string       `json:"improvements"`
	RiskFlags      []string       `json:"risk_flags"`
	Scores         AnalysisScores `json:"scores"`
	OverallComment string         `json:"overall_comment"`
}

// AnalysisScores 各評分項目為 1-5 的整數。
type AnalysisScores struct {
	Empathy     int `json:"empathy"`
	Listening   int `json:"listening"`
	Questioning int `json:"questioning"`
	Structure   int `json:"structure"`
}
