package prompts

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"counseling-ai-backend/internal/config"
)

// 占位符：在分析/合併 Prompt 中會被對應檔案內容取代。
const (
	placeholderCompanyValues = "{{company_values}}"
	placeholderEducationPlan = "{{education_plan}}"
)

// Manager 負責載入外部 Prompt 檔案（Markdown），
// 以 mtime 快取實現熱更新：編輯檔案即生效，無需重啟服務。
type Manager struct {
	cfg config.PromptConfig

	mu     sync.Mutex
	cache  map[string]string
	mtimes map[string]time.Time
}

// NewManager 建立 Manager 實例。檔案此時不需存在，首次存取才載入。
func NewManager(cfg config.PromptConfig) *Manager {
	log.Printf("資訊：[PromptManager] 初始化完成 (analyze: %s, merge: %s)\n", cfg.AnalyzePath, cfg.MergePath)
	return &Manager{
		cfg:    cfg,
		cache:  make(map[string]string),
		mtimes: make(map[string]time.Time),
	}
}

// Version 回傳設定檔中宣告的 Prompt 版本字串，隨評估結果入庫。
func (m *Manager) Version() string {
	return m.cfg.Version
}

// AnalyzePrompt 回傳分析系統 Prompt，占位符已被取代。
func (m *Manager) AnalyzePrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompt := m.load(m.cfg.AnalyzePath, "analyze_prompt")
	return m.substitute(prompt)
}

// MergePrompt 回傳合併系統 Prompt，占位符已被取代。
func (m *Manager) MergePrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	prompt := m.load(m.cfg.MergePath, "merge_prompt")
	return m.substitute(prompt)
}

// load 讀取 Prompt 檔案並快取；mtime 改變時重新載入。
// 呼叫者必須持有 m.mu。
func (m *Manager) load(path string, cacheKey string) string {
	currentMtime := fileMtime(path)
	cachedMtime, cached := m.mtimes[cacheKey]

	if !cached || !currentMtime.Equal(cachedMtime) {
		content := readFile(path)
		m.cache[cacheKey] = content
		m.mtimes[cacheKey] = currentMtime
		if cached {
			log.Printf("資訊：[PromptManager] Prompt 檔案 '%s' 已變更，重新載入。\n", path)
		}
	}
	return m.cache[cacheKey]
}

// substitute 將 {{company_values}} 與 {{education_plan}} 替換為對應檔案內容。
// 呼叫者必須持有 m.mu。
func (m *Manager) substitute(prompt string) string {
	if strings.Contains(prompt, placeholderCompanyValues) {
		values := m.load(m.cfg.CompanyValuesPath, "company_values")
		prompt = strings.ReplaceAll(prompt, placeholderCompanyValues, values)
	}
	if strings.Contains(prompt, placeholderEducationPlan) {
		plan := m.load(m.cfg.EducationPlanPath, "education_plan")
		prompt = strings.ReplaceAll(prompt, placeholderEducationPlan, plan)
	}
	return prompt
}

// readFile 讀取檔案內容，檔案不存在或讀取失敗時回傳空字串。
func readFile(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("警告：[PromptManager] 讀取 Prompt 檔案 '%s' 失敗: %v\n", path, err)
		}
		return ""
	}
	return string(data)
}

// fileMtime 取得檔案修改時間，檔案不存在時回傳零值。
func fileMtime(path string) time.Time {
	if path == "" {
		return time.Time{}
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
